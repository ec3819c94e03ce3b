package main

import (
	"os"

	"lspcli/cmd/lsp/commands"
)

func main() {
	os.Exit(commands.Execute())
}
