package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/hdtickets/admission/cmd/app/commands"
	"github.com/hdtickets/admission/internal/app"
	"github.com/hdtickets/admission/internal/config"
)

func getTokenCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "revoke-token",
			Usage: "Revoke a session token before its natural expiry",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "jti",
					Aliases:  []string{"j"},
					Required: true,
					Usage:    "Token ID (jti claim) to revoke",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				tokenUseCase, err := container.TokenUseCase()
				if err != nil {
					return err
				}

				return commands.RunRevokeToken(
					ctx,
					tokenUseCase,
					container.Logger(),
					cmd.String("jti"),
					commands.DefaultIO(),
				)
			},
		},
	}
}
