package main

import (
	"os"

	"github.com/kerala-navigator/navigator/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
