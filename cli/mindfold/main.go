package main

import (
	"os"

	mindfoldcmder "github.com/mindfoldco/mindfold/cmd/mindfold"
)

func main() {
	cmd := mindfoldcmder.NewMindfoldCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
