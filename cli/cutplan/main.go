package main

import (
	"os"

	cutplancmder "github.com/cutplanco/cutplan/cmd/cutplan"
)

func main() {
	cmd := cutplancmder.NewCutplanCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
