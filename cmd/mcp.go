package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sells-group/answer-cli/internal/config"
	"github.com/sells-group/answer-cli/internal/mcpserver"
)

var (
	mcpHTTPAddr string
	mcpNoStore  bool
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the answer pipeline as an MCP tool",
	Long:  "Exposes the answer_question tool over stdio, or over streamable HTTP with --http. Stored runs are exposed as answer://runs resources.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initService(ctx, config.ModeAnswer, mcpNoStore)
		if err != nil {
			return err
		}
		defer env.Close()

		srv, err := mcpserver.New(env.Service, env.Store)
		if err != nil {
			return err
		}
		if mcpHTTPAddr != "" {
			return srv.RunHTTP(ctx, mcpHTTPAddr)
		}
		return srv.Run(ctx)
	},
}

func init() {
	mcpCmd.Flags().StringVar(&mcpHTTPAddr, "http", "", "serve streamable HTTP on this address instead of stdio (e.g. :8090)")
	mcpCmd.Flags().BoolVar(&mcpNoStore, "no-store", false, "do not record runs")
	rootCmd.AddCommand(mcpCmd)
}
