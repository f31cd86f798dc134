package main

import (
	"context"
	"os"
	"strings"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/mark3labs/census/internal/logger"
	"github.com/mark3labs/census/internal/tui/theme"
)

const (
	logoText1 = "█▀▀ █▀▀ █▄ █ █▀ █ █ █▀▀"
	logoText2 = "█▄▄ ██▄ █ ▀█ ▄█ █▄█ ▄▄█"
)

// Version set via ldflags during build
var version = "dev"

func main() {
	// Ensure logger is closed on exit
	defer func() { _ = logger.Close() }()

	if err := fang.Execute(context.Background(), rootCmd, fang.WithVersion(version)); err != nil {
		logger.Error("Command execution failed: %v", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "census",
	Short: "Household census data collection for field enumerators",
}

var rootFlags struct {
	apiURL   string
	dataDir  string
	logLevel string
}

// renderLogo creates the logo with gradient colors
func renderLogo() string {
	t := theme.NewCatppuccinMocha()
	line1 := theme.Gradient(logoText1, t.Primary, t.Secondary)
	line2 := theme.Gradient(logoText2, t.Primary, t.Secondary)
	return strings.Join([]string{line1, line2}, "\n")
}

func init() {
	// Set Long description with logo
	rootCmd.Long = renderLogo() + `

census walks an enumerator through the eight steps of a household census
questionnaire. Each step is validated locally before it is sent to the
census service, and the service's copy of the record is always the one
that counts. Activity is journaled to an embedded NATS JetStream under
the data directory, and a full-screen TUI built on Bubbletea v2 lists
records and their progress.`

	rootCmd.PersistentFlags().StringVar(&rootFlags.apiURL, "api-url", "", "Census service base URL (default: from config)")
	rootCmd.PersistentFlags().StringVar(&rootFlags.dataDir, "data-dir", "", "Data directory for the journal and UI state (default: from config)")
	rootCmd.PersistentFlags().StringVar(&rootFlags.logLevel, "log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(newCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(stepCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(submitCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(tuiCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(devServerCmd)
	rootCmd.AddCommand(setupCmd)
}
