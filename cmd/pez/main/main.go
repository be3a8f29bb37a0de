package main

import (
	"fmt"
	"os"

	"github.com/arthur-debert/pez/cmd/pez"
	"github.com/arthur-debert/pez/pkg/ui/styles"
)

func main() {
	rootCmd := pez.NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		// Print the error in red
		errorStyle := styles.Get("Error")
		fmt.Fprintln(os.Stderr, errorStyle.Render(fmt.Sprintf("Error: %v", err)))
		os.Exit(1)
	}
}
