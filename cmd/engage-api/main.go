package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "engage-api",
	Short: "Engage API - campaign lead ingestion and ticket lifecycle",
	Long:  `Multi-tenant API for outbound campaigns (CSV lead import), support tickets with history and notes, and automated bookings.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
