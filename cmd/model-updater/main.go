package main

import (
	"os"

	"github.com/beanscan/model-updater/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
