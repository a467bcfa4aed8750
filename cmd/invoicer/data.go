package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/urfave/cli/v2"

	icli "invoicer/internal/cli"
	"invoicer/internal/core"
)

func contactCommand() *cli.Command {
	return &cli.Command{
		Name:    "contact",
		Aliases: []string{"client"},
		Usage:   "manage saved clients",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "list saved contacts",
				Flags: []cli.Flag{&cli.BoolFlag{Name: "json"}},
				Action: withApp(func(c *cli.Context, app *icli.App) error {
					contacts := app.Contacts.List(c.Context)
					if c.Bool("json") {
						return printJSON(c, contacts)
					}
					tw := tabwriter.NewWriter(out(c), 0, 4, 2, ' ', 0)
					fmt.Fprintln(tw, "NAME\tEMAIL\tPHONE\tTYPE\tID")
					for _, ct := range contacts {
						fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", ct.Name, ct.Email, ct.Phone, ct.Type, ct.ID)
					}
					return tw.Flush()
				}),
			},
			{
				Name:      "show",
				ArgsUsage: "ID",
				Action: withApp(func(c *cli.Context, app *icli.App) error {
					id, err := requireArg(c, "ID")
					if err != nil {
						return err
					}
					ct, err := app.Contacts.Get(c.Context, id)
					if err != nil {
						return err
					}
					return printJSON(c, ct)
				}),
			},
			{
				Name:  "save",
				Usage: "create or update a contact from JSON",
				Flags: []cli.Flag{fileFlag},
				Action: withApp(func(c *cli.Context, app *icli.App) error {
					var ct core.Contact
					if err := decodeInput(c, c.String("file"), &ct); err != nil {
						return err
					}
					saved, err := app.Contacts.Save(c.Context, ct)
					if err != nil {
						return err
					}
					fmt.Fprintf(out(c), "saved contact %s (%s)\n", saved.Name, saved.ID)
					return nil
				}),
			},
			{
				Name:      "delete",
				ArgsUsage: "ID",
				Action: withApp(func(c *cli.Context, app *icli.App) error {
					id, err := requireArg(c, "ID")
					if err != nil {
						return err
					}
					if err := app.Contacts.Delete(c.Context, id); err != nil {
						return err
					}
					fmt.Fprintf(out(c), "deleted %s\n", id)
					return nil
				}),
			},
		},
	}
}

func companyCommand() *cli.Command {
	return &cli.Command{
		Name:  "company",
		Usage: "show or replace the company profile",
		Subcommands: []*cli.Command{
			{
				Name: "show",
				Action: withApp(func(c *cli.Context, app *icli.App) error {
					p, err := app.Company.Get(c.Context)
					if err != nil {
						return err
					}
					return printJSON(c, p)
				}),
			},
			{
				Name:  "save",
				Usage: "replace the company profile from JSON",
				Flags: []cli.Flag{fileFlag},
				Action: withApp(func(c *cli.Context, app *icli.App) error {
					var p core.CompanyProfile
					if err := decodeInput(c, c.String("file"), &p); err != nil {
						return err
					}
					saved, err := app.Company.Save(c.Context, p)
					if err != nil {
						return err
					}
					fmt.Fprintf(out(c), "saved company profile for %s\n", saved.Name)
					return nil
				}),
			},
		},
	}
}
