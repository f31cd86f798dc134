package main

import (
	"fmt"

	tea "charm.land/bubbletea/v2"
	"github.com/spf13/cobra"

	"github.com/mark3labs/census/internal/logger"
	"github.com/mark3labs/census/internal/mcpserver"
	"github.com/mark3labs/census/internal/tui"
)

var tuiFlags struct {
	mcp bool
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the full-screen record dashboard",
	Long: `Open the full-screen record dashboard.

Records are listed by recency on the left and the selected record's steps
on the right. With --mcp the record tools are served over MCP while the
dashboard runs, sharing its wizard state.`,
	RunE: runTUI,
}

func init() {
	tuiCmd.Flags().BoolVar(&tuiFlags.mcp, "mcp", false, "Serve MCP tools on a free local port while the TUI runs")
}

func runTUI(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	return withApp(ctx, func(a *app) error {
		claims, err := a.requireLogin()
		if err != nil {
			return err
		}

		if tuiFlags.mcp {
			srv := mcpserver.New(a.records, a.wizard, a.client)
			if _, err := srv.Start(ctx); err != nil {
				return fmt.Errorf("failed to start MCP server: %w", err)
			}
			defer func() {
				if err := srv.Stop(); err != nil {
					logger.Warn("Error stopping MCP server: %v", err)
				}
			}()
			logger.Info("MCP tools at %s", srv.URL())
		}

		model := tui.NewApp(ctx, a.records, a.wizard, claims.Username, a.cfg.DataDir)
		if _, err := tea.NewProgram(model, tea.WithContext(ctx)).Run(); err != nil {
			return fmt.Errorf("TUI exited: %w", err)
		}
		return nil
	})
}
