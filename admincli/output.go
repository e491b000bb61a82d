// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package admincli

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/AlexKsun/celebration/models"
)

// output writes command results as JSON or aligned text
type output struct {
	format string
	w      io.Writer
}

func (o *output) json(v any) error {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// fields prints name/value pairs, one per line
func (o *output) fields(pairs ...string) {
	width := 0
	for i := 0; i < len(pairs); i += 2 {
		width = max(width, len(pairs[i]))
	}
	for i := 0; i+1 < len(pairs); i += 2 {
		fmt.Fprintf(o.w, "%-*s  %s\n", width, pairs[i], pairs[i+1])
	}
}

func (o *output) config(cfg models.ConfigResponse) error {
	if o.format == FormatJSON {
		return o.json(cfg)
	}

	endpoint := cfg.EndpointURL
	if cfg.EndpointError != "" {
		endpoint = "(" + cfg.EndpointError + ")"
	}
	o.fields(
		"endpoint", endpoint,
		"override", yesNo(cfg.EndpointOverride),
		"development", yesNo(cfg.Development),
		"console log", yesNo(cfg.ConsoleLog),
		"app version", cfg.AppVersion,
		"schema version", cfg.SchemaVersion,
	)

	keys := make([]string, 0, len(cfg.Env))
	for k := range cfg.Env {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	if len(keys) > 0 {
		fmt.Fprintln(o.w, "env:")
		for _, k := range keys {
			fmt.Fprintf(o.w, "  %s=%s\n", k, cfg.Env[k])
		}
	}
	return nil
}

func (o *output) probe(p models.ProbeResponse) error {
	if o.format == FormatJSON {
		return o.json(p)
	}

	status := "ok"
	if p.Error != "" {
		status = "FAILED: " + p.Error
	}
	o.fields(
		"endpoint", p.Endpoint,
		"status", status,
		"http status", fmt.Sprint(p.StatusCode),
		"json body", yesNo(p.JSON),
	)
	return nil
}

func (o *output) diagnose(d models.DiagnoseResponse) error {
	if o.format == FormatJSON {
		return o.json(d)
	}

	if err := o.config(d.Config); err != nil {
		return err
	}
	fmt.Fprintln(o.w, strings.Repeat("-", 32))
	catalogStatus := "unavailable"
	if d.CatalogOK {
		catalogStatus = fmt.Sprintf("%d products", d.CatalogSize)
	}
	o.fields(
		"env file", yesNo(d.EnvFile),
		"catalog", catalogStatus,
	)
	fmt.Fprintln(o.w, strings.Repeat("-", 32))
	return o.probe(d.Probe)
}

func (o *output) reset(r models.ResetGuestResponse) error {
	if o.format == FormatJSON {
		return o.json(r)
	}
	fmt.Fprintf(o.w, "guest %s reset, %d keys removed\n", r.GuestID, r.Removed)
	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
