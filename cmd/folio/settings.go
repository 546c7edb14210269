package main

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/xraph/folio/settings"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change the company settings",
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the settings",
	Args:  cobra.NoArgs,
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set key=value...",
	Short: "Change one or more settings",
	Long: `Change settings by their JSON names, for example company_name,
invoice_prefix, default_tax_rate or payment_term_days.

The invoice counter only moves forward: a lower invoice_next_number is ignored.`,
	Example: `  folio settings set company_name="Acme Trading" default_tax_rate=15 invoice_prefix=ACME-`,
	Args:    cobra.MinimumNArgs(1),
	RunE:    runSettingsSet,
}

func init() {
	rootCmd.AddCommand(settingsCmd)
	settingsCmd.AddCommand(settingsShowCmd, settingsSetCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	engine, err := cli.open(ctx)
	if err != nil {
		return err
	}
	cfg, err := engine.GetSettings(ctx)
	if err != nil {
		return err
	}
	if jsonOutput(cmd) {
		return printJSON(cli.out, cfg)
	}
	fields, err := settingsFields(cfg)
	if err != nil {
		return err
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	t := newTable(cli.out, "KEY", "VALUE")
	for _, k := range keys {
		t.row(k, strings.ReplaceAll(fmt.Sprint(fields[k]), "\n", `\n`))
	}
	return t.flush()
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	engine, err := cli.open(ctx)
	if err != nil {
		return err
	}
	cfg, err := engine.GetSettings(ctx)
	if err != nil {
		return err
	}
	next, err := applySettings(cfg, args)
	if err != nil {
		return err
	}
	if err := engine.UpdateSettings(ctx, next); err != nil {
		return err
	}
	if jsonOutput(cmd) {
		return printJSON(cli.out, next)
	}
	fmt.Fprintf(cli.out, "Updated %d setting(s)\n", len(args))
	return nil
}

func settingsFields(cfg *settings.Settings) (map[string]any, error) {
	raw, err := json.Marshal(cfg)
	if err != nil {
		return nil, err
	}
	fields := make(map[string]any)
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

// applySettings returns a copy of cfg with each key=value pair applied.
// Keys are the JSON field names. String fields take the value verbatim;
// other fields are parsed as YAML scalars.
func applySettings(cfg *settings.Settings, pairs []string) (*settings.Settings, error) {
	fields, err := settingsFields(cfg)
	if err != nil {
		return nil, err
	}
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("setting %q: want key=value", pair)
		}
		current, known := fields[key]
		if !known || key == "updated_at" {
			return nil, fmt.Errorf("setting %q: unknown key", key)
		}
		if _, isString := current.(string); isString {
			fields[key] = strings.ReplaceAll(value, `\n`, "\n")
			continue
		}
		var v any
		if err := yaml.Unmarshal([]byte(value), &v); err != nil {
			return nil, fmt.Errorf("setting %q: %w", key, err)
		}
		fields[key] = v
	}

	raw, err := json.Marshal(fields)
	if err != nil {
		return nil, err
	}
	next := cfg.Clone()
	if err := json.Unmarshal(raw, next); err != nil {
		return nil, fmt.Errorf("settings: %w", err)
	}
	return next, nil
}
