package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	notesCmd := &cobra.Command{Use: "notes", Short: "Journal note operations"}

	var content string
	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Create a journal note",
		RunE: func(cmd *cobra.Command, args []string) error {
			if content == "" {
				return fmt.Errorf("--content required")
			}
			data, err := call(client().R().
				SetBody(map[string]string{"content": content}).
				Post("/api/notes"))
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	addCmd.Flags().StringVarP(&content, "content", "c", "", "Note content (required)")
	_ = addCmd.MarkFlagRequired("content")
	notesCmd.AddCommand(addCmd)

	var page, perPage int
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List notes, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := call(client().R().
				SetQueryParam("page", fmt.Sprint(page)).
				SetQueryParam("perPage", fmt.Sprint(perPage)).
				Get("/api/notes"))
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	listCmd.Flags().IntVar(&page, "page", 1, "Page number")
	listCmd.Flags().IntVar(&perPage, "per-page", 10, "Items per page")
	notesCmd.AddCommand(listCmd)

	getCmd := &cobra.Command{
		Use:   "get NOTE_ID",
		Short: "Get a note by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := call(client().R().Get("/api/notes/" + args[0]))
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	notesCmd.AddCommand(getCmd)

	deleteCmd := &cobra.Command{
		Use:   "delete NOTE_ID",
		Short: "Delete a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := call(client().R().Delete("/api/notes/" + args[0]))
			return err
		},
	}
	notesCmd.AddCommand(deleteCmd)

	rootCmd.AddCommand(notesCmd)
}
