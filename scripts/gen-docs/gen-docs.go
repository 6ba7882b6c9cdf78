// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package main

//go:generate go run gen-docs.go --path ../../docs

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"
	tracerelaycmd "github.com/telekom/tracerelay/cmd"
)

func main() {
	if err := newCmdGenDocs().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newCmdGenDocs creates the command writing the markdown reference of the tracerelay CLI.
func newCmdGenDocs() *cobra.Command {
	var docPath string

	cmd := &cobra.Command{
		Use:   "gen-docs",
		Short: "Generate markdown documentation",
		Long:  "Generate the markdown documentation of the tracerelay commands and their flags",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return genDocs(docPath)
		},
	}
	cmd.Flags().StringVar(&docPath, "path", "docs", "directory path where the markdown files will be created")
	return cmd
}

func genDocs(path string) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("failed to create %q: %w", path, err)
	}
	c := tracerelaycmd.BuildCmd("")
	c.DisableAutoGenTag = true
	if err := doc.GenMarkdownTree(c, path); err != nil {
		return fmt.Errorf("failed to generate docs: %w", err)
	}
	return nil
}
