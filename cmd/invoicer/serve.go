package main

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/urfave/cli/v2"

	icli "invoicer/internal/cli"
	apphttp "invoicer/internal/http"
	"invoicer/internal/log"
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the JSON API until interrupted",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "host", Value: "127.0.0.1", Usage: "interface to listen on"},
			&cli.StringFlag{Name: "port", Usage: "port to listen on (overrides PORT)"},
		},
		Action: withApp(serve),
	}
}

func serve(c *cli.Context, app *icli.App) error {
	port := app.Config.Port
	if p := c.String("port"); p != "" {
		port = p
	}
	logger := app.Logger.WithComponent(log.ComponentApp)

	srv := apphttp.NewServer(net.JoinHostPort(c.String("host"), port), apphttp.Deps{
		Invoices: app.Invoices,
		Contacts: app.Contacts,
		Company:  app.Company,
		Backup:   app.Backup,
		Exporter: app.Exporter,
		Logger:   app.Logger,
	})

	ctx, done := icli.GracefulShutdown(logger, app.Config.ShutdownTimeout, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
	})

	logger.Info("Starting server",
		"addr", srv.Addr,
		"backend", app.Config.DataBackend,
		"export_dir", app.Config.ExportDir)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	icli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
	return nil
}
