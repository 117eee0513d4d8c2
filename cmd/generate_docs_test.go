package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRunGenerateDocs(t *testing.T) {
	var buf bytes.Buffer
	if err := runGenerateDocs(&buf, ""); err != nil {
		t.Fatalf("runGenerateDocs() error = %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"# MCP Tools Reference",
		"- [Gmail Tools](#gmail-tools)",
		"- [General Tools](#general-tools)",
		"### hello",
		"### read_emails",
		"### send_email",
		"### search_emails",
		"### read_email",
		"- `name` (string, required): Name of the person to greet",
		"- `max_results` (integer, optional): Maximum number of messages to read (default: 10)",
		"- `to` (string, required): ",
		"`Error {action}: {details}`",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("generated docs missing %q", want)
		}
	}

	if strings.Index(out, "### read_email\n") > strings.Index(out, "### read_emails\n") {
		t.Error("tools within a category should be sorted by name")
	}
}

func TestRunGenerateDocs_OutputFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tools.md")

	var stdout bytes.Buffer
	if err := runGenerateDocs(&stdout, path); err != nil {
		t.Fatalf("runGenerateDocs() error = %v", err)
	}
	if stdout.Len() != 0 {
		t.Errorf("nothing should be written to stdout, got %q", stdout.String())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "# MCP Tools Reference") {
		t.Errorf("unexpected file content %q", string(data[:min(len(data), 40)]))
	}
}

func TestGetCategoryFromToolName(t *testing.T) {
	tests := map[string]string{
		"hello":         "General Tools",
		"send_email":    "Gmail Tools",
		"read_emails":   "Gmail Tools",
		"search_emails": "Gmail Tools",
		"read_email":    "Gmail Tools",
		"something":     "Other",
	}
	for name, want := range tests {
		if got := getCategoryFromToolName(name); got != want {
			t.Errorf("getCategoryFromToolName(%q) = %q, want %q", name, got, want)
		}
	}
}
