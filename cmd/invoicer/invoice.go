package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/urfave/cli/v2"

	icli "invoicer/internal/cli"
	"invoicer/internal/core"
	apphttp "invoicer/internal/http"
)

func invoiceCommand() *cli.Command {
	return &cli.Command{
		Name:    "invoice",
		Aliases: []string{"inv"},
		Usage:   "list, edit and manage invoices",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "list invoices, optionally filtered",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "search", Usage: "client name or invoice number"},
					&cli.StringFlag{Name: "status", Usage: "draft, sent, paid or overdue"},
					&cli.StringFlag{Name: "from", Usage: "issued on or after YYYY-MM-DD"},
					&cli.StringFlag{Name: "to", Usage: "issued on or before YYYY-MM-DD"},
					&cli.BoolFlag{Name: "json", Usage: "print JSON instead of a table"},
				},
				Action: withApp(listInvoices),
			},
			{
				Name:      "show",
				Usage:     "print one invoice as JSON",
				ArgsUsage: "ID",
				Action: withApp(func(c *cli.Context, app *icli.App) error {
					id, err := requireArg(c, "ID")
					if err != nil {
						return err
					}
					inv, err := app.Invoices.Get(c.Context, id)
					if err != nil {
						return err
					}
					return printJSON(c, inv)
				}),
			},
			{
				Name:  "new",
				Usage: "print a pre-filled draft to edit and pass to 'invoice save'",
				Action: withApp(func(c *cli.Context, app *icli.App) error {
					return printJSON(c, app.Invoices.NewInvoiceDefaults(c.Context))
				}),
			},
			{
				Name:  "save",
				Usage: "create or update an invoice from JSON",
				Flags: []cli.Flag{
					fileFlag,
					&cli.StringFlag{Name: "client-id", Usage: "bill a saved contact instead of the JSON client"},
				},
				Action: withApp(saveInvoice),
			},
			{
				Name:      "delete",
				Usage:     "delete an invoice",
				ArgsUsage: "ID",
				Action: withApp(func(c *cli.Context, app *icli.App) error {
					id, err := requireArg(c, "ID")
					if err != nil {
						return err
					}
					if err := app.Invoices.Delete(c.Context, id); err != nil {
						return err
					}
					fmt.Fprintf(out(c), "deleted %s\n", id)
					return nil
				}),
			},
			{
				Name:      "duplicate",
				Usage:     "copy an invoice as a new draft dated today",
				ArgsUsage: "ID",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "due", Usage: "due date YYYY-MM-DD for the copy"},
					&cli.BoolFlag{Name: "save", Usage: "save the copy instead of printing it"},
				},
				Action: withApp(duplicateInvoice),
			},
			{
				Name:      "status",
				Usage:     "change the status of an invoice",
				ArgsUsage: "ID STATUS",
				Action: withApp(func(c *cli.Context, app *icli.App) error {
					if c.NArg() != 2 {
						return cli.Exit("usage: invoicer invoice status ID STATUS", 2)
					}
					st, err := core.ParseStatus(c.Args().Get(1))
					if err != nil {
						return err
					}
					inv, err := app.Invoices.SetStatus(c.Context, c.Args().Get(0), st)
					if err != nil {
						return err
					}
					fmt.Fprintf(out(c), "%s is now %s\n", inv.InvoiceNumber, inv.Status)
					return nil
				}),
			},
			{
				Name:  "next-number",
				Usage: "print the number the next new invoice would get",
				Action: withApp(func(c *cli.Context, app *icli.App) error {
					fmt.Fprintln(out(c), app.Invoices.NextNumber(c.Context))
					return nil
				}),
			},
		},
	}
}

func listInvoices(c *cli.Context, app *icli.App) error {
	q := map[string][]string{}
	for _, name := range []string{"search", "status", "from", "to"} {
		if v := c.String(name); v != "" {
			q[name] = []string{v}
		}
	}
	f, err := apphttp.ParseInvoiceFilter(q)
	if err != nil {
		return err
	}
	invoices, sum := app.Invoices.List(c.Context, f)
	if c.Bool("json") {
		return printJSON(c, invoices)
	}

	tw := tabwriter.NewWriter(out(c), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NUMBER\tDATE\tDUE\tCLIENT\tSTATUS\tTOTAL\tID")
	for _, inv := range invoices {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			inv.InvoiceNumber, inv.Date, inv.DueDate, inv.Client.Name, inv.Status,
			core.FormatCurrency(inv.Total, inv.Currency), inv.ID)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(out(c), "%d invoice(s), total %s\n", sum.Count, core.FormatCurrency(sum.Total, sum.Currency))
	return nil
}

func saveInvoice(c *cli.Context, app *icli.App) error {
	var inv core.Invoice
	if err := decodeInput(c, c.String("file"), &inv); err != nil {
		return err
	}
	if inv.Company.Name == "" {
		if p, err := app.Company.Get(c.Context); err == nil {
			inv.Company = p
		}
	}
	if id := c.String("client-id"); id != "" {
		contact, err := app.Contacts.Get(c.Context, id)
		if err != nil {
			return err
		}
		inv.Client = contact.Snapshot()
	}
	saved, err := app.Invoices.Save(c.Context, inv)
	if err != nil {
		return err
	}
	fmt.Fprintf(out(c), "saved %s (%s) total %s\n",
		saved.InvoiceNumber, saved.ID, core.FormatCurrency(saved.Total, saved.Currency))
	return nil
}

func duplicateInvoice(c *cli.Context, app *icli.App) error {
	id, err := requireArg(c, "ID")
	if err != nil {
		return err
	}
	dup, err := app.Invoices.Duplicate(c.Context, id)
	if err != nil {
		return err
	}
	if v := c.String("due"); v != "" {
		if dup.DueDate, err = core.ParseDate(v); err != nil {
			return err
		}
	}
	if !c.Bool("save") {
		return printJSON(c, dup)
	}
	saved, err := app.Invoices.Save(c.Context, dup)
	if err != nil {
		return err
	}
	fmt.Fprintf(out(c), "saved %s (%s)\n", saved.InvoiceNumber, saved.ID)
	return nil
}
