package main

import (
	"os"

	"vllmsup/internal/cli"
)

func main() {
	os.Exit(cli.Main())
}
