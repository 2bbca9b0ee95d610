package main

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/urfave/cli/v3"
)

//go:embed example_config.toml
var exampleConfig string

func exampleConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "example-config",
		Usage: "print an example reconstruct.toml",
		Description: "Print a commented reconstruct.toml covering every setting.\n\n" +
			"Examples:\n" +
			"  reconstruct example-config > reconstruct.toml",
		Action: func(_ context.Context, _ *cli.Command) error {
			fmt.Print(exampleConfig)
			return nil
		},
	}
}
