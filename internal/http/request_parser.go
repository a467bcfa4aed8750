package http

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"invoicer/internal/core"
)

// ParseInvoiceFilter reads search, status, from and to from query parameters.
// Empty values leave the criterion unset.
func ParseInvoiceFilter(q url.Values) (core.InvoiceFilter, error) {
	f := core.InvoiceFilter{Search: sanitizeInput(q.Get("search"))}

	if v := strings.TrimSpace(q.Get("status")); v != "" && v != "all" {
		st, err := core.ParseStatus(v)
		if err != nil {
			return core.InvoiceFilter{}, err
		}
		f.Status = st
	}
	for _, p := range []struct {
		name string
		dst  *core.Date
	}{{"from", &f.StartDate}, {"to", &f.EndDate}} {
		v := strings.TrimSpace(q.Get(p.name))
		if v == "" {
			continue
		}
		d, err := core.ParseDate(v)
		if err != nil {
			return core.InvoiceFilter{}, fmt.Errorf("%s: %w", p.name, err)
		}
		*p.dst = d
	}
	return f, nil
}

// ParseBool reads a boolean query flag; anything unparseable is false.
func ParseBool(q url.Values, name string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(q.Get(name)))
	return err == nil && b
}
