// Package main is the entry point of the wapdec WAP binary protocol decoder.
package main

import (
	"fmt"
	"os"

	"firestige.xyz/wapdec/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
