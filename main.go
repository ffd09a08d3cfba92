package main

import (
	"os"

	"github.com/runlens/runlens/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
