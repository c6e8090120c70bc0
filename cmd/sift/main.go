package main

import (
	"os"

	"github.com/siftql/sift/internal/cli"
)

func main() {
	os.Exit(cli.Run())
}
