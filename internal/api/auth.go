package api

import "context"

// AuthResponse is returned by login and register: an opaque bearer token and
// the user's profile.
type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Credentials is the login/register payload.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login authenticates and returns a fresh token with the user profile.
func (c *Client) Login(ctx context.Context, creds Credentials) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.do(ctx, "POST", "/auth/login/", creds, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Register creates a new account and returns its token and profile.
func (c *Client) Register(ctx context.Context, creds Credentials) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.do(ctx, "POST", "/auth/register/", creds, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Logout invalidates the current token server-side.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, "POST", "/auth/logout/", nil, nil)
}

// Me returns the profile behind the current token.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var resp struct {
		User User `json:"user"`
	}
	if err := c.do(ctx, "GET", "/auth/me/", nil, &resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}
