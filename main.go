package main

import (
	"fmt"
	"os"

	"github.com/thomcc/radix-sorter/cli"
)

func main() {
	if err := cli.App.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "radix-sorter:", err)
		os.Exit(1)
	}
}
