package main

import (
	"os"

	"github.com/expectation-labs/gxctl/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
