package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/hdtickets/admission/cmd/app/commands"
	"github.com/hdtickets/admission/internal/app"
	"github.com/hdtickets/admission/internal/config"
)

func getSystemCommands(version string) []*cli.Command {
	return []*cli.Command{
		{
			Name:  "server",
			Usage: "Start the HTTP server",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return commands.RunServer(ctx, version)
			},
		},
		{
			Name:  "validate-catalog",
			Usage: "Check the permission catalog for structural defects",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "format",
					Aliases: []string{"f"},
					Value:   "text",
					Usage:   "Output format: 'text' or 'json'",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				resolverUseCase, err := container.ResolverUseCase()
				if err != nil {
					return err
				}

				return commands.RunValidateCatalog(
					resolverUseCase,
					container.Logger(),
					cmd.String("format"),
					commands.DefaultIO(),
				)
			},
		},
	}
}
