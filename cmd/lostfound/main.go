package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/ShinobiWonKnobi/LostAndFound-Official/internal/config"
)

// Version information (set via ldflags during build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	config.LoadDotEnv()

	if err := newApp().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:    "lostfound",
		Usage:   "College lost and found service",
		Version: fmt.Sprintf("%s (built %s)", Version, BuildTime),
		Flags:   append([]cli.Flag{config.ConfigFlag()}, config.Flags()...),
		Action:  runServe,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Start the API and web server (default)",
				Action: runServe,
			},
			{
				Name:  "create-admin",
				Usage: "Create an admin account, or promote an existing one",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "email",
						Usage:    "Admin email address",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "password",
						Usage: "Password for a new account (default: generated and printed)",
					},
				},
				Action: runCreateAdmin,
			},
		},
	}
}
