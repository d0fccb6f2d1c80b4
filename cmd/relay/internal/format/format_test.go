// Copyright 2025 Vulntor Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package format

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPrintJSON(t *testing.T) {
	var stdout, stderr bytes.Buffer
	f := New(&stdout, &stderr, ModeJSON, false, false)

	require.NoError(t, f.PrintJSON(map[string]int{"published": 3}))
	require.Equal(t, "{\n  \"published\": 3\n}\n", stdout.String())
	require.Empty(t, stderr.String())
}

func TestPrintTable(t *testing.T) {
	headers := []string{"Metric", "Value"}
	rows := [][]string{
		{"published", "10"},
		{"delivered", "20"},
	}

	t.Run("text mode", func(t *testing.T) {
		var stdout, stderr bytes.Buffer
		f := New(&stdout, &stderr, ModeText, false, false)

		require.NoError(t, f.PrintTable(headers, rows))
		out := stdout.String()
		for _, s := range []string{"Metric", "Value", "published", "20"} {
			require.Contains(t, out, s)
		}
	})

	t.Run("json mode", func(t *testing.T) {
		var stdout, stderr bytes.Buffer
		f := New(&stdout, &stderr, ModeJSON, false, false)

		require.NoError(t, f.PrintTable(headers, rows))
		var items []map[string]string
		require.NoError(t, json.Unmarshal(stdout.Bytes(), &items))
		require.Len(t, items, 2)
		require.Equal(t, "delivered", items[1]["Metric"])
	})

	t.Run("color headers", func(t *testing.T) {
		var stdout, stderr bytes.Buffer
		f := New(&stdout, &stderr, ModeText, false, true)

		require.NoError(t, f.PrintTable(headers, rows))
		require.Contains(t, stdout.String(), "METRIC")
	})
}

func TestPrintSummary(t *testing.T) {
	tests := []struct {
		name         string
		mode         OutputMode
		quiet        bool
		expectStdout bool
		expectStderr bool
	}{
		{"text mode", ModeText, false, true, false},
		{"text mode quiet", ModeText, true, false, false},
		{"json mode", ModeJSON, false, false, true},
		{"json mode quiet", ModeJSON, true, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			f := New(&stdout, &stderr, tt.mode, tt.quiet, false)

			require.NoError(t, f.PrintSummary("12 events emitted"))

			if tt.expectStdout {
				require.Contains(t, stdout.String(), "12 events emitted")
			} else {
				require.Empty(t, stdout.String())
			}
			if tt.expectStderr {
				require.Contains(t, stderr.String(), "12 events emitted")
			} else {
				require.Empty(t, stderr.String())
			}
		})
	}
}

func TestPrintError(t *testing.T) {
	t.Run("text mode", func(t *testing.T) {
		var stdout, stderr bytes.Buffer
		f := New(&stdout, &stderr, ModeText, false, false)

		require.NoError(t, f.PrintError(errors.New("operation failed")))
		require.Empty(t, stdout.String())
		require.Equal(t, "Error: operation failed\n", stderr.String())
	})

	t.Run("json mode", func(t *testing.T) {
		var stdout, stderr bytes.Buffer
		f := New(&stdout, &stderr, ModeJSON, false, false)

		require.NoError(t, f.PrintError(errors.New("operation failed")))
		var result map[string]any
		require.NoError(t, json.Unmarshal(stdout.Bytes(), &result))
		require.Equal(t, false, result["success"])
		require.Equal(t, "operation failed", result["error"])
	})

	t.Run("nil error", func(t *testing.T) {
		var stdout, stderr bytes.Buffer
		f := New(&stdout, &stderr, ModeJSON, false, false)

		require.NoError(t, f.PrintError(nil))
		require.Empty(t, stdout.String())
		require.Empty(t, stderr.String())
	})
}

func TestValidateMode(t *testing.T) {
	for _, mode := range []string{"json", "text", "table", "JSON"} {
		require.NoError(t, ValidateMode(mode), mode)
	}
	for _, mode := range []string{"xml", ""} {
		err := ValidateMode(mode)
		require.Error(t, err)
		require.Contains(t, err.Error(), "invalid output mode")
	}
}

func TestParseMode(t *testing.T) {
	require.Equal(t, ModeJSON, ParseMode("json"))
	require.Equal(t, ModeJSON, ParseMode("JSON"))
	require.Equal(t, ModeText, ParseMode("text"))
	require.Equal(t, ModeText, ParseMode("table"))
	require.Equal(t, ModeText, ParseMode(""))
}

func TestRowObjects_ShortRows(t *testing.T) {
	objs := rowObjects([]string{"Metric", "Value"}, [][]string{{"published", "3"}, {"dropped"}})
	require.Equal(t, []map[string]string{
		{"Metric": "published", "Value": "3"},
		{"Metric": "dropped"},
	}, objs)
}

func TestPrintSummary_ColorStillWritesMessage(t *testing.T) {
	var stdout, stderr bytes.Buffer
	f := New(&stdout, &stderr, ModeText, false, true)

	require.NoError(t, f.PrintSummary("20 deliveries"))
	require.Contains(t, stdout.String(), "20 deliveries")
	require.Empty(t, stderr.String())
}
