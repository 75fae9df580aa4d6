package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"fintrack/internal/core"
)

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// tokenResponse accepts both {"token": "..."} and a bare JSON string.
type tokenResponse struct {
	Token string
}

func (t *tokenResponse) UnmarshalJSON(b []byte) error {
	var obj struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(b, &obj); err == nil {
		t.Token = obj.Token
		return nil
	}
	return json.Unmarshal(b, &t.Token)
}

// Login exchanges credentials for a bearer token and starts using it.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	return c.authenticate(ctx, "login", "/auth/login", username, password)
}

// Register creates an account and starts using the returned token.
func (c *Client) Register(ctx context.Context, username, password string) (string, error) {
	return c.authenticate(ctx, "register", "/auth/register", username, password)
}

func (c *Client) authenticate(ctx context.Context, op, path, username, password string) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return "", core.NewValidationError("username", core.ErrEmptyName)
	}
	if password == "" {
		return "", core.NewValidationError("password", errors.New("empty password"))
	}

	var out tokenResponse
	if err := c.do(ctx, op, http.MethodPost, path, nil, credentials{Username: username, Password: password}, &out); err != nil {
		return "", err
	}
	if out.Token == "" {
		return "", core.NewTransportError(op, errors.New("response carried no token"))
	}
	c.SetToken(out.Token)
	return out.Token, nil
}
