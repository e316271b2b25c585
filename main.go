// depscope traces a focus file's import dependencies across languages
// and classifies known bug patterns in everything it reaches.
package main

import (
	"fmt"
	"os"

	"github.com/phobologic/depscope/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
