package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	icli "invoicer/internal/cli"
	"invoicer/internal/core"
	"invoicer/internal/pdf"
)

func pdfCommand() *cli.Command {
	return &cli.Command{
		Name:      "pdf",
		Usage:     "export invoices as invoice-<number>.pdf",
		ArgsUsage: "ID...",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "all", Usage: "export every stored invoice"},
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "target directory (overrides EXPORT_DIR)"},
		},
		Action: withApp(exportPDFs),
	}
}

func exportPDFs(c *cli.Context, app *icli.App) error {
	var invoices []core.Invoice
	if c.Bool("all") {
		invoices, _ = app.Invoices.List(c.Context, core.InvoiceFilter{})
	} else {
		if c.NArg() == 0 {
			return cli.Exit("pass invoice IDs or --all", 2)
		}
		for _, id := range c.Args().Slice() {
			inv, err := app.Invoices.Get(c.Context, id)
			if err != nil {
				return fmt.Errorf("%s: %w", id, err)
			}
			invoices = append(invoices, inv)
		}
	}
	if len(invoices) == 0 {
		fmt.Fprintln(out(c), "nothing to export")
		return nil
	}

	exporter := app.Exporter
	if dir := c.String("out"); dir != "" {
		exporter = pdf.NewExporter(pdf.NewFPDFRenderer(), dir,
			pdf.WithLogger(app.Logger), pdf.WithWorkers(app.Config.PDFExportWorkers))
	}
	paths, err := exporter.ExportAll(c.Context, invoices)
	if err != nil {
		return err
	}
	for _, p := range paths {
		fmt.Fprintln(out(c), p)
	}
	return nil
}
