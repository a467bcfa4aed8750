package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"

	icli "invoicer/internal/cli"
	"invoicer/internal/config"
	"invoicer/internal/log"
)

func main() {
	if err := newApp().RunContext(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "invoicer:", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "invoicer",
		Usage: "manage invoices, contacts and the company profile on this machine",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "env-file", Value: ".env", Usage: "optional dotenv file loaded before configuration"},
			&cli.StringFlag{Name: "backend", Usage: "storage backend: file, sqlite or memory (overrides DATA_BACKEND)"},
			&cli.StringFlag{Name: "data-dir", Usage: "data directory (overrides DATA_DIR)"},
			&cli.StringFlag{Name: "log-level", Usage: "debug, info, warn or error (overrides LOG_LEVEL)"},
		},
		Commands: []*cli.Command{
			initCommand(),
			invoiceCommand(),
			contactCommand(),
			companyCommand(),
			backupCommand(),
			pdfCommand(),
			serveCommand(),
		},
	}
}

// loadConfig reads the environment, applies global flag overrides and validates.
func loadConfig(c *cli.Context) (*config.Config, error) {
	icli.LoadEnvFile(c.String("env-file"))
	cfg := config.Load()
	if v := c.String("backend"); v != "" {
		cfg.DataBackend = v
	}
	if v := c.String("data-dir"); v != "" {
		cfg.DataDir = v
		if os.Getenv("SQLITE_DB_PATH") == "" {
			cfg.SQLiteDBPath = filepath.Join(v, "invoicer.db")
		}
	}
	if v := c.String("log-level"); v != "" {
		cfg.LogLevel = v
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// withApp opens the store for the duration of one command.
func withApp(action func(c *cli.Context, app *icli.App) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		cfg, err := loadConfig(c)
		if err != nil {
			return err
		}
		logger := icli.SetupLogger(cfg.LogLevel, c.App.ErrWriter).WithComponent(log.ComponentCLI)

		app, err := icli.NewApp(c.Context, cfg, logger)
		if err != nil {
			return err
		}
		defer func() {
			if err := app.Close(); err != nil {
				logger.Error("Failed to close store", log.FieldError, err)
			}
		}()
		return action(c, app)
	}
}

func out(c *cli.Context) io.Writer {
	if c.App.Writer != nil {
		return c.App.Writer
	}
	return os.Stdout
}

func initCommand() *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "create empty collections for keys that do not exist yet",
		Action: withApp(func(c *cli.Context, app *icli.App) error {
			fmt.Fprintf(out(c), "storage ready (%s backend)\n", app.Config.DataBackend)
			return nil
		}),
	}
}
