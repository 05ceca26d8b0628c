package main

import (
	"fmt"
	"os"

	"github.com/mmynk/limbo/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "limboctl:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
