package main

import (
	"os"

	"github.com/medopaw/ai-cli/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
