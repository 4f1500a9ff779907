package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"shopping-list/internal/export"
)

var (
	exportFormat string
	exportOut    string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the list as JSON or CSV",
	RunE:  runExport,
}

var importCmd = &cobra.Command{
	Use:   "import <file.json|file.csv>",
	Short: "Add items from an exported file",
	Long: `Add every item from a JSON or CSV export to the list.

Items are created as new entries; completed items are marked done after creation.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "json", "json|csv")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file (stdout when empty)")
}

func runExport(cmd *cobra.Command, args []string) error {
	format, err := export.ParseFormat(exportFormat)
	if err != nil {
		return err
	}
	c, err := session()
	if err != nil {
		return err
	}
	items, err := c.List(cmd.Context())
	if err != nil {
		return err
	}

	var w io.Writer = cmd.OutOrStdout()
	if exportOut != "" {
		f, err := os.Create(exportOut)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	if err := export.Write(w, format, items); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	if exportOut != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d item(s) to %s in %s format\n", len(items), exportOut, format)
	}
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	format, err := export.FormatFromPath(args[0])
	if err != nil {
		return err
	}
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	items, err := export.Read(f, format)
	if err != nil {
		return err
	}
	c, err := session()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	for _, it := range items {
		created, err := c.Add(ctx, it.Name)
		if err != nil {
			return fmt.Errorf("add %q: %w", it.Name, err)
		}
		if it.Completed {
			if _, err := c.Toggle(ctx, created.ID); err != nil {
				return fmt.Errorf("complete %q: %w", it.Name, err)
			}
		}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d item(s) from %s\n", len(items), args[0])
	return nil
}
