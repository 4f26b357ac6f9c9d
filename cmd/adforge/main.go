// Package main provides the adforge CLI entry point.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/adforge/adforge/cli"
	"github.com/adforge/adforge/config"
)

func main() {
	// Load .env file if present (ignore "file not found" errors)
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Warning: failed to load .env file: %v\n", err)
		}
	}

	logger := log.New(os.Stderr, "", log.LstdFlags)

	rootCmd := &cobra.Command{
		Use:   "adforge",
		Short: "Multi-model ad generation workflow",
		Long: `adforge runs an LLM workflow that gathers context about a company
(knowledge base retrieval, web search, service scraping) and then writes
ad copy with several model backends in parallel.`,
	}

	rootCmd.AddCommand(serveCmd(logger))
	rootCmd.AddCommand(runCmd(logger))
	rootCmd.AddCommand(ingestCmd(logger))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serveCmd(logger *log.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := config.New()
			if err != nil {
				return err
			}
			return cli.Serve(settings, logger)
		},
	}
}

func runCmd(logger *log.Logger) *cobra.Command {
	var models []string

	cmd := &cobra.Command{
		Use:   "run [prompt]",
		Short: "Run a single prompt and print step events as JSON lines",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := config.New()
			if err != nil {
				return err
			}
			return cli.RunOnce(cmd.Context(), settings, args[0], models, logger)
		},
	}
	cmd.Flags().StringSliceVarP(&models, "models", "m", []string{"openai"}, "Model backends to generate with (openai, anthropic, gemini)")
	return cmd
}

func ingestCmd(logger *log.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "ingest [dir]",
		Short: "Load .txt ad files from a directory into the knowledge base",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := config.New()
			if err != nil {
				return err
			}
			return cli.Ingest(cmd.Context(), settings, args[0], logger)
		},
	}
}
