package main

import (
	"fmt"
	"io"
	"os"

	"engage-api/internal/leadimport"

	"github.com/spf13/cobra"
)

var importPreviewCmd = &cobra.Command{
	Use:   "import-preview <file.csv>",
	Short: "Preview a lead CSV locally",
	Long: `Parse a lead CSV the same way the API does and print headers, sample rows,
the suggested column mapping and any required field left unmapped. Use "-" to read stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: runImportPreview,
}

var importPreviewMode string

func init() {
	importPreviewCmd.Flags().StringVar(&importPreviewMode, "mode", string(leadimport.ModePermissive), "parse mode: strict or permissive")
	rootCmd.AddCommand(importPreviewCmd)
}

func runImportPreview(cmd *cobra.Command, args []string) error {
	mode, err := leadimport.ParseMode(importPreviewMode, leadimport.ModePermissive)
	if err != nil {
		return err
	}

	var raw []byte
	if args[0] == "-" {
		raw, err = io.ReadAll(cmd.InOrStdin())
	} else {
		raw, err = os.ReadFile(args[0])
	}
	if err != nil {
		return fmt.Errorf("failed to read csv: %w", err)
	}

	preview, err := leadimport.BuildPreview(string(raw), mode)
	if err != nil {
		return fmt.Errorf("failed to preview csv: %w", err)
	}

	return printJSON(cmd.OutOrStdout(), preview)
}
