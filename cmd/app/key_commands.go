package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/healo/piiguard/cmd/app/commands"
	cryptoService "github.com/healo/piiguard/internal/crypto/service"
)

func getKeyCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "create-pii-key",
			Usage: "Generate PII key material for field encryption",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "key-version",
					Aliases: []string{"k"},
					Value:   "",
					Usage:   "Key version tag (e.g., pii-2026-10)",
				},
				&cli.StringFlag{
					Name:  "kms-key-uri",
					Value: "",
					Usage: "KMS key URI used to wrap the key (e.g., base64key://, gcpkms://projects/.../cryptoKeys/...)",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

				return commands.RunCreatePIIKey(
					ctx,
					cryptoService.NewKMSService(),
					logger,
					commands.DefaultIO().Writer,
					cmd.String("key-version"),
					cmd.String("kms-key-uri"),
				)
			},
		},
	}
}
