package main

import (
	"os"

	"github.com/debemdeboas/inkwell/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
