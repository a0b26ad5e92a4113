package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/contactbook/contactbook-go/internal/client"
)

// Main parses global flags, builds the API client and runs the command in args.
func Main(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer, getenv func(string) string) int {
	fs := flag.NewFlagSet("contacts", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { fmt.Fprint(stderr, usage) }
	baseURL := fs.String("base-url", "", "API server address (overrides "+EnvBaseURL+")")
	configPath := fs.String("config", "", "config file (default $XDG_CONFIG_HOME/contacts/config.yaml)")
	credsPath := fs.String("credentials", "", "credentials file (default $XDG_CONFIG_HOME/contacts/credentials.json)")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	dir, err := DefaultDir()
	if err != nil && (*configPath == "" || *credsPath == "") {
		fmt.Fprintln(stderr, "Error:", err)
		return 1
	}
	if *configPath == "" {
		*configPath = filepath.Join(dir, "config.yaml")
	}

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return 1
	}

	if *credsPath == "" {
		*credsPath = cfg.CredentialsFile
	}
	if *credsPath == "" {
		*credsPath = filepath.Join(dir, "credentials.json")
	}

	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	c := client.New(
		client.NewFileStore(*credsPath),
		client.WithBaseURL(ResolveBaseURL(*baseURL, getenv, cfg)),
		client.WithLogger(logger),
		client.WithOnSessionExpired(func() {
			logger.Debug("stored session cleared", "credentials", *credsPath)
		}),
	)

	return NewApp(c, stdin, stdout, stderr).Run(ctx, fs.Args())
}
