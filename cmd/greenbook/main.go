package main

import (
	"fmt"
	"os"

	"github.com/tmorrow/greenbook/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "greenbook: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}
