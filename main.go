package main

import (
	"os"

	"github.com/blockhost/vmlease/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
