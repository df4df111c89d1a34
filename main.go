package main

import (
	"os"

	"github.com/dockship/dockship/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
