package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	apiFlag   string
	tokenFlag string
	rootCmd   = &cobra.Command{
		Use:   "techtivectl",
		Short: "CLI client for the TechTive backend REST API",
	}
)

func main() {
	rootCmd.PersistentFlags().StringVarP(&apiFlag, "api", "a", "http://localhost:8080", "TechTive service base URL")
	rootCmd.PersistentFlags().StringVarP(&tokenFlag, "token", "t", "dev:techtivectl-local", "Bearer token (dev tokens look like dev:<subject>)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
