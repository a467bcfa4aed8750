package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"
)

// readInput returns the contents of path, or of stdin when path is "-".
func readInput(c *cli.Context, path string) ([]byte, error) {
	if path == "" {
		return nil, fmt.Errorf("missing --file (use - for stdin)")
	}
	if path == "-" {
		r := c.App.Reader
		if r == nil {
			r = os.Stdin
		}
		return io.ReadAll(r)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return b, nil
}

func decodeInput(c *cli.Context, path string, dst any) error {
	b, err := readInput(c, path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func printJSON(c *cli.Context, v any) error {
	enc := json.NewEncoder(out(c))
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

var fileFlag = &cli.StringFlag{Name: "file", Aliases: []string{"f"}, Usage: "JSON input file, - for stdin"}

func requireArg(c *cli.Context, name string) (string, error) {
	v := c.Args().First()
	if v == "" {
		return "", cli.Exit(fmt.Sprintf("missing %s argument", name), 2)
	}
	return v, nil
}
