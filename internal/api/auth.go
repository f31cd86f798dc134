package api

import (
	"context"
	"errors"
	"net/http"
)

// Roles accepted at registration.
var Roles = []string{"AGENT", "SUPERVISOR", "ADMIN"}

// Credentials are a username and password pair.
type Credentials struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Registration creates a new account.
type Registration struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role" validate:"required,oneof=AGENT SUPERVISOR ADMIN"`
}

// User is an account of the census service.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username,omitempty"`
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	Role     string `json:"role,omitempty"`
}

// Login exchanges credentials for a bearer token. The login response is
// not wrapped in the usual envelope.
func (c *Client) Login(ctx context.Context, creds Credentials) (string, error) {
	var resp struct {
		Token string `json:"token"`
	}
	if err := c.do(ctx, http.MethodPost, "auth/login", creds, &resp, false); err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", errors.New("login response carried no token")
	}
	return resp.Token, nil
}

// Register creates an account.
func (c *Client) Register(ctx context.Context, reg Registration) (User, error) {
	var u User
	err := c.do(ctx, http.MethodPost, "auth/register", reg, &u, true)
	return u, err
}

// CurrentUser returns the account the token belongs to.
func (c *Client) CurrentUser(ctx context.Context) (User, error) {
	var u User
	err := c.get(ctx, "auth/me", &u)
	return u, err
}
