package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"invoicer/internal/backup"
	icli "invoicer/internal/cli"
)

func backupCommand() *cli.Command {
	return &cli.Command{
		Name:  "backup",
		Usage: "export or restore every collection as one JSON document",
		Subcommands: []*cli.Command{
			{
				Name:  "export",
				Usage: "write a backup file into a directory, or to stdout with --out -",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Value: ".", Usage: "target directory, - for stdout"},
				},
				Action: withApp(func(c *cli.Context, app *icli.App) error {
					if c.String("out") == "-" {
						_, err := app.Backup.Export(c.Context).WriteTo(out(c))
						return err
					}
					path, err := app.Backup.ExportFile(c.Context, c.String("out"))
					if err != nil {
						return err
					}
					fmt.Fprintln(out(c), path)
					return nil
				}),
			},
			{
				Name:      "import",
				Usage:     "replace ALL stored data with the contents of a backup file",
				ArgsUsage: "FILE",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "do not ask for confirmation"},
				},
				Action: withApp(importBackup),
			},
			{
				Name:  "schema",
				Usage: "print the JSON Schema of the backup document",
				Action: func(c *cli.Context) error {
					b, err := backup.Schema()
					if err != nil {
						return err
					}
					_, err = fmt.Fprintln(out(c), string(b))
					return err
				},
			},
		},
	}
}

func importBackup(c *cli.Context, app *icli.App) error {
	path, err := requireArg(c, "FILE")
	if err != nil {
		return err
	}
	doc, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	confirm := backup.Confirmed
	if !c.Bool("yes") {
		in := c.App.Reader
		if in == nil {
			in = os.Stdin
		}
		confirm = promptConfirmer(in, out(c))
	}

	sum, err := app.Backup.Import(c.Context, doc, confirm)
	if err != nil {
		return err
	}
	fmt.Fprintf(out(c), "imported %d invoice(s) and %d client(s)\n", sum.Invoices, sum.Clients)
	return nil
}

// promptConfirmer asks on w and reads a y/N answer from r. Anything but yes declines.
func promptConfirmer(r io.Reader, w io.Writer) backup.Confirmer {
	return backup.ConfirmFunc(func(_ context.Context, s backup.Summary) (bool, error) {
		company := "no company profile"
		if s.HasCompany {
			company = "a company profile"
		}
		fmt.Fprintf(w, "Backup from %s contains %d invoice(s), %d client(s) and %s.\n",
			s.ExportDate.Format("2006-01-02"), s.Invoices, s.Clients, company)
		fmt.Fprint(w, "This will replace all current data. Continue? [y/N] ")

		line, err := bufio.NewReader(r).ReadString('\n')
		if err != nil && err != io.EOF {
			return false, err
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true, nil
		}
		return false, nil
	})
}
