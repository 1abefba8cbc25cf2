package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/hdtickets/admission/cmd/app/commands"
	"github.com/hdtickets/admission/internal/app"
	"github.com/hdtickets/admission/internal/config"
)

func getKeyCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "issue-api-key",
			Usage: "Issue a new API key for a user",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "user-id",
					Aliases:  []string{"u"},
					Required: true,
					Usage:    "User ID (UUID) the key belongs to",
				},
				&cli.StringFlag{
					Name:    "role",
					Aliases: []string{"r"},
					Value:   "customer",
					Usage:   "Role registered for the user in the local directory",
				},
				&cli.StringFlag{
					Name:     "name",
					Aliases:  []string{"n"},
					Required: true,
					Usage:    "Human-readable key name",
				},
				&cli.StringSliceFlag{
					Name:    "scope",
					Aliases: []string{"s"},
					Value:   []string{"*"},
					Usage:   "Scope granted to the key (repeatable)",
				},
				&cli.StringFlag{
					Name:    "tier",
					Aliases: []string{"t"},
					Value:   "standard",
					Usage:   "Rate limit tier: standard, premium, or internal",
				},
				&cli.StringSliceFlag{
					Name:    "ip",
					Aliases: []string{"i"},
					Usage:   "IP whitelist entry: exact IP, CIDR, or wildcard pattern (repeatable)",
				},
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

				credentialUseCase, err := container.CredentialUseCase()
				if err != nil {
					return err
				}

				return commands.RunIssueAPIKey(
					ctx,
					credentialUseCase,
					container.UserDirectory(),
					container.Logger(),
					commands.IssueAPIKeyParams{
						UserID:      cmd.String("user-id"),
						Role:        cmd.String("role"),
						Name:        cmd.String("name"),
						Scopes:      cmd.StringSlice("scope"),
						Tier:        cmd.String("tier"),
						IPWhitelist: cmd.StringSlice("ip"),
						Format:      cmd.String("format"),
					},
					commands.DefaultIO(),
				)
			},
		},
		{
			Name:  "rotate-api-key",
			Usage: "Replace the secret of an existing API key",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "user-id",
					Aliases:  []string{"u"},
					Required: true,
					Usage:    "User ID (UUID) that owns the key",
				},
				&cli.StringFlag{
					Name:     "id",
					Aliases:  []string{"i"},
					Required: true,
					Usage:    "Credential ID (UUID) to rotate",
				},
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

				credentialUseCase, err := container.CredentialUseCase()
				if err != nil {
					return err
				}

				return commands.RunRotateAPIKey(
					ctx,
					credentialUseCase,
					container.Logger(),
					cmd.String("user-id"),
					cmd.String("id"),
					cmd.String("format"),
					commands.DefaultIO(),
				)
			},
		},
		{
			Name:  "revoke-api-key",
			Usage: "Deactivate an API key",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "user-id",
					Aliases:  []string{"u"},
					Required: true,
					Usage:    "User ID (UUID) that owns the key",
				},
				&cli.StringFlag{
					Name:     "id",
					Aliases:  []string{"i"},
					Required: true,
					Usage:    "Credential ID (UUID) to revoke",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				credentialUseCase, err := container.CredentialUseCase()
				if err != nil {
					return err
				}

				return commands.RunRevokeAPIKey(
					ctx,
					credentialUseCase,
					container.Logger(),
					cmd.String("user-id"),
					cmd.String("id"),
					commands.DefaultIO(),
				)
			},
		},
	}
}
