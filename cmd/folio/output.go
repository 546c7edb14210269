package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/xraph/folio/id"
	"github.com/xraph/folio/types"
)

const dateLayout = "2006-01-02"

func jsonOutput(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("json")
	return v
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// table writes tab-separated rows aligned into columns.
type table struct {
	tw *tabwriter.Writer
}

func newTable(w io.Writer, headers ...string) *table {
	t := &table{tw: tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)}
	t.row(anySlice(headers)...)
	return t
}

func (t *table) row(cols ...any) {
	parts := make([]string, len(cols))
	for i, c := range cols {
		parts[i] = fmt.Sprint(c)
	}
	fmt.Fprintln(t.tw, strings.Join(parts, "\t"))
}

func (t *table) flush() error { return t.tw.Flush() }

func anySlice(s []string) []any {
	out := make([]any, len(s))
	for i, v := range s {
		out[i] = v
	}
	return out
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format(dateLayout)
}

func formatDatePtr(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return formatDate(*t)
}

// parseDate accepts YYYY-MM-DD or RFC 3339. Empty yields the zero time.
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, use YYYY-MM-DD", s)
	}
	return t.UTC(), nil
}

func dateFlag(cmd *cobra.Command, name string) (time.Time, error) {
	s, _ := cmd.Flags().GetString(name)
	t, err := parseDate(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("--%s: %w", name, err)
	}
	return t, nil
}

func moneyFlag(cmd *cobra.Command, name, currency string) (types.Money, error) {
	s, _ := cmd.Flags().GetString(name)
	if s == "" {
		return types.Zero(currency), nil
	}
	m, err := types.Parse(s, currency)
	if err != nil {
		return types.Money{}, fmt.Errorf("--%s: %w", name, err)
	}
	return m, nil
}

func decimalFlag(cmd *cobra.Command, name string) (*decimal.Decimal, error) {
	s, _ := cmd.Flags().GetString(name)
	if s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("--%s: %w", name, err)
	}
	return &d, nil
}

// idFlag parses an optional prefixed ID flag. Empty yields the nil ID.
func idFlag(cmd *cobra.Command, name string, prefix id.Prefix) (id.ID, error) {
	s, _ := cmd.Flags().GetString(name)
	if s == "" {
		return id.Nil, nil
	}
	v, err := id.ParseWithPrefix(s, prefix)
	if err != nil {
		return id.Nil, fmt.Errorf("--%s: %w", name, err)
	}
	return v, nil
}
