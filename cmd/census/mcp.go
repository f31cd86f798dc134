package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mark3labs/census/internal/mcpserver"
)

var mcpFlags struct {
	port int
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve record tools over MCP",
	Long: `Serve the record tools (list_records, create_record, get_record,
get_step, update_fields, update_row, add_row, remove_row, submit_step)
over streamable HTTP for MCP clients.

Submissions go through the same local validation as the CLI and TUI.`,
	RunE: runMCP,
}

func init() {
	mcpCmd.Flags().IntVarP(&mcpFlags.port, "port", "p", 0, "Port to listen on (default: a free port)")
}

func runMCP(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	return withApp(ctx, func(a *app) error {
		if _, err := a.requireLogin(); err != nil {
			return err
		}

		srv := mcpserver.New(a.records, a.wizard, a.client,
			mcpserver.WithAddr(fmt.Sprintf("127.0.0.1:%d", mcpFlags.port)))
		if _, err := srv.Start(ctx); err != nil {
			return fmt.Errorf("failed to start MCP server: %w", err)
		}
		fmt.Printf("MCP tools at %s\n", srv.URL())

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		select {
		case <-sigChan:
			fmt.Println("\nShutting down gracefully...")
		case <-ctx.Done():
		}
		return srv.Stop()
	})
}
