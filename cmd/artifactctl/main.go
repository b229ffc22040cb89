package main

import (
	"fmt"
	"os"

	"github.com/electric-coding/artifactstore/internal/cli"
)

func main() {
	if err := cli.Run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "artifactctl: %v\n", err)
		os.Exit(1)
	}
}
