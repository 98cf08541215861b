package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	quoteCmd := &cobra.Command{
		Use:   "quote",
		Short: "Fetch a random quote",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := call(client().R().Get("/api/quotes/random"))
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	rootCmd.AddCommand(quoteCmd)

	healthCmd := &cobra.Command{
		Use:   "health",
		Short: "Check service health",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := call(client().R().Get("/api/health"))
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	rootCmd.AddCommand(healthCmd)
}
