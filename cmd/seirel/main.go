package main

import (
	"os"

	"github.com/augustosouza8/aplicativos-sei/internal/cli"
)

func main() {
	os.Exit(cli.Execute(os.Args[1:]))
}
