package main

import (
	"os"

	"github.com/svetsed/gosh/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
