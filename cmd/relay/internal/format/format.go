// Copyright 2025 Vulntor Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

// Package format renders command results for relay. Text mode is meant for a
// terminal; JSON mode keeps stdout machine readable so `relay pipe -o json`
// and `relay bench -o json` can feed other tools, with summaries moved to stderr.
package format

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
)

// OutputMode selects how a command renders its result. It mirrors the
// output.format configuration key.
type OutputMode string

const (
	ModeJSON OutputMode = "json"
	ModeText OutputMode = "text"
)

// Formatter is what relay commands print through. Event sinks write to Out
// directly; tables, summaries and errors go through the Print methods.
type Formatter interface {
	// PrintJSON writes data as indented JSON to stdout.
	PrintJSON(data any) error

	// PrintTable writes metric style rows, e.g. router stats. In JSON mode
	// each row becomes an object keyed by header.
	PrintTable(headers []string, rows [][]string) error

	// PrintSummary writes a closing line such as "3 events emitted".
	// Quiet mode drops it; JSON mode sends it to stderr.
	PrintSummary(message string) error

	PrintError(err error) error

	IsJSON() bool
	Color() bool

	// Out is where event sinks write, normally the command's stdout.
	Out() io.Writer
}

type formatter struct {
	stdout io.Writer
	stderr io.Writer
	mode   OutputMode
	quiet  bool
	color  bool
}

// New returns a Formatter writing results to stdout and diagnostics to stderr.
func New(stdout, stderr io.Writer, mode OutputMode, quiet, color bool) Formatter {
	return &formatter{
		stdout: stdout,
		stderr: stderr,
		mode:   mode,
		quiet:  quiet,
		color:  color,
	}
}

func (f *formatter) IsJSON() bool   { return f.mode == ModeJSON }
func (f *formatter) Color() bool    { return f.color }
func (f *formatter) Out() io.Writer { return f.stdout }

func (f *formatter) PrintJSON(data any) error {
	enc := json.NewEncoder(f.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func (f *formatter) PrintTable(headers []string, rows [][]string) error {
	if f.IsJSON() {
		return f.PrintJSON(rowObjects(headers, rows))
	}

	head := headers
	if f.color {
		bold := color.New(color.Bold)
		head = make([]string, len(headers))
		for i, h := range headers {
			head[i] = bold.Sprint(strings.ToUpper(h))
		}
	}

	tw := tabwriter.NewWriter(f.stdout, 0, 0, 2, ' ', 0)
	for _, line := range append([][]string{head}, rows...) {
		if _, err := fmt.Fprintln(tw, strings.Join(line, "\t")); err != nil {
			return err
		}
	}
	return tw.Flush()
}

// rowObjects turns table rows into objects keyed by header. Missing cells
// are left out.
func rowObjects(headers []string, rows [][]string) []map[string]string {
	objs := make([]map[string]string, 0, len(rows))
	for _, row := range rows {
		obj := make(map[string]string, len(headers))
		for i := 0; i < len(headers) && i < len(row); i++ {
			obj[headers[i]] = row[i]
		}
		objs = append(objs, obj)
	}
	return objs
}

func (f *formatter) PrintSummary(message string) error {
	switch {
	case f.quiet:
		return nil
	case f.IsJSON():
		return f.line(f.stderr, nil, message)
	default:
		return f.line(f.stdout, color.New(color.FgGreen), message)
	}
}

func (f *formatter) PrintError(err error) error {
	if err == nil {
		return nil
	}
	if f.IsJSON() {
		return f.PrintJSON(map[string]any{
			"success": false,
			"error":   err.Error(),
		})
	}
	return f.line(f.stderr, color.New(color.FgRed), "Error: "+err.Error())
}

// line writes msg to w, colored with c when color is on and c is set.
func (f *formatter) line(w io.Writer, c *color.Color, msg string) error {
	if f.color && c != nil {
		_, err := c.Fprintln(w, msg)
		return err
	}
	_, err := fmt.Fprintln(w, msg)
	return err
}

// ValidateMode checks an --output value. "table" is accepted as an alias of
// text for scripts written against older flags.
func ValidateMode(mode string) error {
	switch OutputMode(strings.ToLower(mode)) {
	case ModeJSON, ModeText, "table":
		return nil
	default:
		return fmt.Errorf("invalid output mode: %s (must be 'text' or 'json')", mode)
	}
}

// ParseMode maps an --output or output.format value to a mode; anything but
// json is text.
func ParseMode(mode string) OutputMode {
	if strings.ToLower(mode) == "json" {
		return ModeJSON
	}
	return ModeText
}
