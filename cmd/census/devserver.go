package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mark3labs/census/internal/censustest"
	"github.com/mark3labs/census/internal/logger"
)

var devServerFlags struct {
	addr     string
	secret   string
	username string
	password string
}

var devServerCmd = &cobra.Command{
	Use:   "dev-server",
	Short: "Run an in-memory census service for local testing",
	Long: `Run an in-memory census service for local testing.

It implements the same routes as the real service under /api, keeps
records in memory and signs tokens with --secret. A demo AGENT account is
created from --username and --password.`,
	RunE: runDevServer,
}

func init() {
	devServerCmd.Flags().StringVar(&devServerFlags.addr, "addr", "127.0.0.1:8080", "Listen address")
	devServerCmd.Flags().StringVar(&devServerFlags.secret, "secret", "census-dev-secret", "Token signing secret")
	devServerCmd.Flags().StringVar(&devServerFlags.username, "username", "agent", "Demo account username (empty to skip)")
	devServerCmd.Flags().StringVar(&devServerFlags.password, "password", "password", "Demo account password")
}

func runDevServer(cmd *cobra.Command, args []string) error {
	fake := censustest.New(censustest.WithSecret(devServerFlags.secret))
	if devServerFlags.username != "" {
		if _, err := fake.AddUser(devServerFlags.username, devServerFlags.password, "AGENT"); err != nil {
			return fmt.Errorf("failed to create demo account: %w", err)
		}
	}

	srv := &http.Server{
		Addr:              devServerFlags.addr,
		Handler:           fake.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	fmt.Printf("Census dev service at http://%s/api\n", devServerFlags.addr)
	if devServerFlags.username != "" {
		fmt.Printf("Sign in with: census login -u %s -p %s --api-url http://%s/api\n",
			devServerFlags.username, devServerFlags.password, devServerFlags.addr)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("dev service failed: %w", err)
		}
		return nil
	case <-sigChan:
		fmt.Println("\nShutting down gracefully...")
	case <-cmd.Context().Done():
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Warn("Error stopping dev service: %v", err)
		return err
	}
	return nil
}
