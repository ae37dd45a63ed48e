package main

import (
	"os"

	"github.com/gperojohn83-art/Construction/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
