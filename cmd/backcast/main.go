package main

import (
	"os"

	"backcast/cmd/backcast/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
