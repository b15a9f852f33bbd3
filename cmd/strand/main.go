// Command strand is the Strand CLI.
package main

import (
	"fmt"
	"os"

	"github.com/go-strand/strand/cmd/strand/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
