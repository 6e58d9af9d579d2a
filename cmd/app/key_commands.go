package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/squareconnect/cmd/app/commands"
	"github.com/allisson/squareconnect/internal/app"
	"github.com/allisson/squareconnect/internal/config"
)

func getKeyCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "generate-key",
			Usage: "Generate a token encryption key, optionally wrapped by a KMS key",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "algorithm",
					Aliases: []string{"alg"},
					Value:   "aes-gcm",
					Usage:   "Encryption algorithm to use (aes-gcm or chacha20-poly1305)",
				},
				&cli.StringFlag{
					Name:    "kms-key-uri",
					Sources: cli.EnvVars("KMS_KEY_URI"),
					Usage:   "KMS key URI used to wrap the generated key (e.g., gcpkms://..., base64key://...)",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				container := app.NewContainer(config.Load())
				defer func() { _ = container.Shutdown(ctx) }()

				return commands.RunGenerateKey(
					ctx,
					container.KMSService(),
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("algorithm"),
					cmd.String("kms-key-uri"),
				)
			},
		},
		{
			Name:  "wrap-key",
			Usage: "Wrap an existing token encryption key with a KMS key",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "kms-key-uri",
					Sources:  cli.EnvVars("KMS_KEY_URI"),
					Required: true,
					Usage:    "KMS key URI used to wrap the key",
				},
				&cli.StringFlag{
					Name:     "key",
					Aliases:  []string{"k"},
					Sources:  cli.EnvVars("TOKEN_ENCRYPTION_KEY"),
					Required: true,
					Usage:    "Base64 encoded 32-byte token encryption key",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				container := app.NewContainer(config.Load())
				defer func() { _ = container.Shutdown(ctx) }()

				return commands.RunWrapKey(
					ctx,
					container.KMSService(),
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("kms-key-uri"),
					cmd.String("key"),
				)
			},
		},
	}
}
