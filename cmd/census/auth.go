package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/mark3labs/census/internal/api"
)

var authFlags struct {
	username string
	password string
	role     string
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to the census service",
	Long: `Sign in to the census service and keep the token in the data directory.

Missing credentials are asked for interactively.`,
	RunE: runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored token",
	RunE:  runLogout,
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account on the census service",
	RunE:  runRegister,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in account",
	RunE:  runWhoami,
}

func init() {
	for _, cmd := range []*cobra.Command{loginCmd, registerCmd} {
		cmd.Flags().StringVarP(&authFlags.username, "username", "u", "", "Account username")
		cmd.Flags().StringVarP(&authFlags.password, "password", "p", "", "Account password (prompted when empty)")
	}
	registerCmd.Flags().StringVarP(&authFlags.role, "role", "r", "", "Account role: "+strings.Join(api.Roles, ", "))
}

func required(label string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", label)
		}
		return nil
	}
}

// promptCredentials asks for whatever the flags left empty.
func promptCredentials(ctx context.Context, creds *api.Credentials) error {
	var fields []huh.Field
	if creds.Username == "" {
		fields = append(fields, huh.NewInput().
			Title("Username").
			Value(&creds.Username).
			Validate(required("username")))
	}
	if creds.Password == "" {
		fields = append(fields, huh.NewInput().
			Title("Password").
			EchoMode(huh.EchoModePassword).
			Value(&creds.Password).
			Validate(required("password")))
	}
	if len(fields) == 0 {
		return nil
	}
	return huh.NewForm(huh.NewGroup(fields...)).RunWithContext(ctx)
}

func runLogin(cmd *cobra.Command, args []string) error {
	creds := api.Credentials{Username: authFlags.username, Password: authFlags.password}
	if err := promptCredentials(cmd.Context(), &creds); err != nil {
		return err
	}

	return withApp(cmd.Context(), func(a *app) error {
		claims, err := a.auth.Login(cmd.Context(), a.client, creds)
		if err != nil {
			var apiErr *api.Error
			if errors.As(err, &apiErr) {
				return fmt.Errorf("login failed: %s", apiErr.Message)
			}
			return fmt.Errorf("login failed: %w", err)
		}
		fmt.Printf("Signed in as %s (%s)\n", claims.Username, claims.Role)
		return nil
	})
}

func runLogout(cmd *cobra.Command, args []string) error {
	return withApp(cmd.Context(), func(a *app) error {
		if !a.auth.LoggedIn() {
			fmt.Println("Not signed in")
			return nil
		}
		if err := a.auth.Logout(cmd.Context()); err != nil {
			return fmt.Errorf("failed to sign out: %w", err)
		}
		fmt.Println("Signed out")
		return nil
	})
}

func runRegister(cmd *cobra.Command, args []string) error {
	reg := api.Registration{
		Username: authFlags.username,
		Password: authFlags.password,
		Role:     strings.ToUpper(authFlags.role),
	}

	var fields []huh.Field
	if reg.Username == "" {
		fields = append(fields, huh.NewInput().
			Title("Username").
			Value(&reg.Username).
			Validate(required("username")))
	}
	if reg.Password == "" {
		fields = append(fields, huh.NewInput().
			Title("Password").
			Description("At least 6 characters").
			EchoMode(huh.EchoModePassword).
			Value(&reg.Password).
			Validate(func(s string) error {
				if len(s) < 6 {
					return errors.New("password must be at least 6 characters")
				}
				return nil
			}))
	}
	if reg.Role == "" {
		fields = append(fields, huh.NewSelect[string]().
			Title("Role").
			Options(huh.NewOptions(api.Roles...)...).
			Value(&reg.Role))
	}
	if len(fields) > 0 {
		if err := huh.NewForm(huh.NewGroup(fields...)).RunWithContext(cmd.Context()); err != nil {
			return err
		}
	}

	return withApp(cmd.Context(), func(a *app) error {
		user, err := a.client.Register(cmd.Context(), reg)
		if err != nil {
			return fmt.Errorf("registration failed: %w", err)
		}
		fmt.Printf("Created %s account %s\n", user.Role, user.Username)
		fmt.Println("Run 'census login' to sign in.")
		return nil
	})
}

func runWhoami(cmd *cobra.Command, args []string) error {
	return withApp(cmd.Context(), func(a *app) error {
		if _, err := a.requireLogin(); err != nil {
			return err
		}
		user, err := a.client.CurrentUser(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to fetch account: %w", err)
		}
		name := user.Username
		if user.Name != "" {
			name = fmt.Sprintf("%s (%s)", user.Name, user.Username)
		}
		fmt.Printf("%s\nRole: %s\nID:   %s\n", name, user.Role, user.ID)
		return nil
	})
}
