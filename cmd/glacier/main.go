package main

import (
	"os"

	"github.com/gear6io/glacier/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
