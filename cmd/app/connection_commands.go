package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/urfave/cli/v3"

	"github.com/allisson/squareconnect/cmd/app/commands"
	"github.com/allisson/squareconnect/internal/app"
	"github.com/allisson/squareconnect/internal/config"
)

func idTokenFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "id-token",
		Sources: cli.EnvVars("SQUARECONNECT_ID_TOKEN"),
		Usage:   "Firebase ID token of the signed-in user",
	}
}

func formatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Value:   "text",
		Usage:   "Output format: 'text' or 'json'",
	}
}

func getConnectionCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "connect",
			Usage: "Connect a Square account through the OAuth authorize flow",
			Flags: []cli.Flag{
				idTokenFlag(),
				&cli.StringFlag{
					Name:    "business-type",
					Aliases: []string{"b"},
					Usage:   "Onboarding business type (e.g., salon, cafe_restaurant_takeaway)",
				},
				&cli.StringSliceFlag{
					Name:    "service",
					Aliases: []string{"s"},
					Usage:   "Selected onboarding service; repeat for several",
				},
				&cli.BoolFlag{
					Name:  "force",
					Usage: "Start a new connection even if one is already confirmed",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				logger := container.Logger()
				defer func() { _ = container.Shutdown(context.Background()) }()

				warnOnRedirectMismatch(cfg, logger)

				handshake, err := container.NewHandshake(uuid.Must(uuid.NewV7()).String())
				if err != nil {
					return err
				}

				listener, err := net.Listen("tcp", cfg.HandshakeCallbackAddr)
				if err != nil {
					return fmt.Errorf("failed to listen on %s: %w", cfg.HandshakeCallbackAddr, err)
				}

				ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
				defer cancel()

				return commands.RunConnect(
					ctx,
					handshake,
					container.MarkerReconciler(),
					listener,
					nil,
					logger,
					commands.DefaultIO().Writer,
					commands.ConnectOptions{
						IDToken:      cmd.String("id-token"),
						BusinessType: cmd.String("business-type"),
						Services:     cmd.StringSlice("service"),
						Force:        cmd.Bool("force"),
						Timeout:      cfg.HandshakeStateTTL,
					},
				)
			},
		},
		{
			Name:  "status",
			Usage: "Show the local Square connection, re-verified with the server",
			Flags: []cli.Flag{idTokenFlag(), formatFlag()},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				container := app.NewContainer(config.Load())
				defer func() { _ = container.Shutdown(ctx) }()

				return commands.RunStatus(
					ctx,
					container.MarkerReconciler(),
					commands.DefaultIO().Writer,
					cmd.String("id-token"),
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "connections",
			Usage: "List the Square merchants connected by a caller",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "caller-id",
					Aliases:  []string{"c"},
					Required: true,
					Usage:    "Caller (Firebase user) id",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				container := app.NewContainer(config.Load())
				defer func() { _ = container.Shutdown(ctx) }()

				connectionUseCase, err := container.ConnectionUseCase()
				if err != nil {
					return err
				}

				return commands.RunListConnections(
					ctx,
					connectionUseCase,
					commands.DefaultIO().Writer,
					cmd.String("caller-id"),
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "disconnect",
			Usage: "Delete a caller's stored Square tokens for a merchant",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "caller-id",
					Aliases:  []string{"c"},
					Required: true,
					Usage:    "Caller (Firebase user) id",
				},
				&cli.StringFlag{
					Name:     "merchant-id",
					Aliases:  []string{"m"},
					Required: true,
					Usage:    "Square merchant id",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				container := app.NewContainer(config.Load())
				defer func() { _ = container.Shutdown(ctx) }()

				connectionUseCase, err := container.ConnectionUseCase()
				if err != nil {
					return err
				}

				return commands.RunDisconnect(
					ctx,
					connectionUseCase,
					container.MarkerStore(),
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("caller-id"),
					cmd.String("merchant-id"),
				)
			},
		},
	}
}

// warnOnRedirectMismatch flags a redirect URI that will not reach the local callback listener.
func warnOnRedirectMismatch(cfg *config.Config, logger *slog.Logger) {
	redirect, err := url.Parse(cfg.SquareRedirectURI())
	if err != nil || redirect.Host != cfg.HandshakeCallbackAddr {
		logger.Warn("square redirect URI does not point at the callback listener; set APP_URL accordingly",
			slog.String("redirect_uri", cfg.SquareRedirectURI()),
			slog.String("callback_addr", cfg.HandshakeCallbackAddr))
	}
}
