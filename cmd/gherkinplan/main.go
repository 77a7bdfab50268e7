package main

import (
	"fmt"
	"os"

	"github.com/tomatool/gherkinplan/command"
)

func main() {
	if err := command.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
