package main

import (
	"os"

	"github.com/CharlesDeJager/dprof/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
