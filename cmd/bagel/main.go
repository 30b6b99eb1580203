package main

import (
	"os"

	"github.com/bagelcount/bagelcount/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
