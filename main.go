package main

import (
	"fmt"
	"os"

	"plugup.dev/cli/internal/interfaces/cli"
	"plugup.dev/cli/internal/interfaces/di"
)

func main() {
	container, err := di.NewContainer()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize application: %v\n", err)
		os.Exit(1)
	}
	defer container.Close()

	cli.Execute(container.CLI)
}
