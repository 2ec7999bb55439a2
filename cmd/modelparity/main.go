package main

import (
	"os"

	"github.com/modelparity/modelparity/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
