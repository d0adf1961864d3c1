package main

import (
	"os"

	"github.com/malbeclabs/farms/tools/farms/internal/cli"
)

func main() {
	os.Exit(int(cli.Run()))
}
