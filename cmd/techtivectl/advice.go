package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	adviceCmd := &cobra.Command{Use: "advice", Short: "Advice operations"}

	latestCmd := &cobra.Command{
		Use:   "latest",
		Short: "Show the latest advice",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := call(client().R().Get("/api/advice/latest"))
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	adviceCmd.AddCommand(latestCmd)

	eligibilityCmd := &cobra.Command{
		Use:   "eligibility",
		Short: "Check whether new advice can be requested",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := call(client().R().Get("/api/advice/eligibility"))
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	adviceCmd.AddCommand(eligibilityCmd)

	generateCmd := &cobra.Command{
		Use:   "generate",
		Short: "Request advice generation; prints the queued task",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := call(client().R().Post("/api/advice/generate"))
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	adviceCmd.AddCommand(generateCmd)

	taskCmd := &cobra.Command{
		Use:   "task TASK_ID",
		Short: "Poll a queued task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := call(client().R().Get("/api/tasks/" + args[0]))
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	adviceCmd.AddCommand(taskCmd)

	rootCmd.AddCommand(adviceCmd)
}
