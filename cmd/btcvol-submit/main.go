package main

import (
	"os"

	"github.com/jberros/btcvol-cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
