package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/teemow/inboxmcp/internal/server"
	"github.com/teemow/inboxmcp/internal/tools"
)

func newGenerateDocsCmd() *cobra.Command {
	var (
		outputFile string
	)

	cmd := &cobra.Command{
		Use:   "generate-docs",
		Short: "Generate MCP tool documentation",
		Long: `Generate markdown documentation for all available MCP tools.
This command introspects the registered tools and outputs their documentation
in markdown format, ensuring the documentation is always accurate and in sync
with the actual tool implementations.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerateDocs(cmd.OutOrStdout(), outputFile)
		},
	}

	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")

	return cmd
}

func runGenerateDocs(stdout io.Writer, outputFile string) error {
	// No credentials are needed: handlers are never called
	serverContext, err := server.NewServerContext(context.Background(), server.Config{})
	if err != nil {
		return fmt.Errorf("failed to create server context: %w", err)
	}
	defer func() {
		_ = serverContext.Shutdown()
	}()

	// Include the extended tools so the reference is complete
	reg, err := buildRegistry(serverContext, Config{ExtendedTools: true}, slog.Default())
	if err != nil {
		return err
	}

	markdown := generateToolsMarkdown(reg.ListTools())

	if outputFile != "" {
		if err := os.WriteFile(outputFile, []byte(markdown), 0644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Documentation written to: %s\n", outputFile)
		return nil
	}

	_, err = io.WriteString(stdout, markdown)
	return err
}

func generateToolsMarkdown(descriptors []tools.Descriptor) string {
	var sb strings.Builder

	sb.WriteString("# MCP Tools Reference\n\n")
	sb.WriteString("This document provides a complete reference of all tools available when running inboxmcp as an MCP server.\n\n")
	sb.WriteString("**Note:** This documentation is automatically generated from the tool definitions.\n\n")

	toolsByCategory := groupToolsByCategory(descriptors)

	sb.WriteString("## Table of Contents\n\n")
	categories := make([]string, 0, len(toolsByCategory))
	for category := range toolsByCategory {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	for _, category := range categories {
		anchor := strings.ToLower(strings.ReplaceAll(category, " ", "-"))
		sb.WriteString(fmt.Sprintf("- [%s](#%s)\n", category, anchor))
	}
	sb.WriteString("\n")

	sb.WriteString("## Error Reporting\n\n")
	sb.WriteString("Operational failures (missing credentials, Gmail API errors) are returned as a normal text result of the form `Error {action}: {details}`. ")
	sb.WriteString("Only a call to an unknown tool is answered with a JSON-RPC error.\n\n")

	for _, category := range categories {
		sb.WriteString(fmt.Sprintf("## %s\n\n", category))
		for _, d := range toolsByCategory[category] {
			sb.WriteString(generateToolMarkdown(d))
			sb.WriteString("\n")
		}
	}

	return sb.String()
}

// groupToolsByCategory keeps the registry's name order within each category.
func groupToolsByCategory(descriptors []tools.Descriptor) map[string][]tools.Descriptor {
	categories := make(map[string][]tools.Descriptor)

	for _, d := range descriptors {
		category := getCategoryFromToolName(d.Name)
		categories[category] = append(categories[category], d)
	}

	return categories
}

func getCategoryFromToolName(name string) string {
	switch {
	case name == "hello":
		return "General Tools"
	case strings.HasSuffix(name, "_email"), strings.HasSuffix(name, "_emails"):
		return "Gmail Tools"
	default:
		return "Other"
	}
}

func generateToolMarkdown(d tools.Descriptor) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("### %s\n\n", d.Name))

	if d.Description != "" {
		sb.WriteString(fmt.Sprintf("%s\n\n", d.Description))
	}

	names := d.InputSchema.PropertyNames()
	if len(names) > 0 {
		sb.WriteString("**Arguments:**\n")

		for _, name := range names {
			prop := d.InputSchema.Properties[name]

			requiredStr := "optional"
			if d.InputSchema.IsRequired(name) {
				requiredStr = "required"
			}

			sb.WriteString(fmt.Sprintf("- `%s` (%s, %s): ", name, prop.Type, requiredStr))

			if prop.Description != "" {
				sb.WriteString(prop.Description)
			} else {
				sb.WriteString(fmt.Sprintf("%s parameter", prop.Type))
			}

			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	return sb.String()
}
