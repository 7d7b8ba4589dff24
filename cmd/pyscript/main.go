package main

import (
	"os"

	"pyscript/internal/ui/cli"
)

func main() {
	os.Exit(cli.Run(os.Args[1:]))
}
