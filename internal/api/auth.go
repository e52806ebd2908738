package api

import (
	"context"
	"net/http"
	"net/url"
)

// Login exchanges an email and password for a bearer token. The server
// expects the OAuth2 password form with the email as username.
func (c *Client) Login(ctx context.Context, email, password string) (*Token, error) {
	form := url.Values{}
	form.Set("username", email)
	form.Set("password", password)

	var token Token
	if err := c.Do(ctx, http.MethodPost, "/auth/login", nil, &token, Form(form)); err != nil {
		return nil, err
	}
	return &token, nil
}

// Signup creates an account. It does not log in.
func (c *Client) Signup(ctx context.Context, req SignupRequest) (*User, error) {
	var user User
	if err := c.Do(ctx, http.MethodPost, "/auth/signup", req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Me returns the user the current token belongs to
func (c *Client) Me(ctx context.Context) (*User, error) {
	var user User
	if err := c.Do(ctx, http.MethodGet, "/users/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ListUsers returns one page of users
func (c *Client) ListUsers(ctx context.Context, page Page) ([]User, error) {
	var users []User
	if err := c.Do(ctx, http.MethodGet, "/users/", nil, &users, Query(page.Values())); err != nil {
		return nil, err
	}
	return users, nil
}
