package apiclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/makita-adocao/makita-web/animals"
	"github.com/makita-adocao/makita-web/users"
)

// API paths
const (
	PathAnimals        = "/api/animals"
	PathProfile        = "/api/profile"
	PathLogin          = "/api/login"
	PathRegister       = "/api/register"
	PathForgotPassword = "/api/forgot-password"
	PathResetPassword  = "/api/reset-password"
)

// ResetPasswordFailedMessage replaces whatever the API says when a reset is rejected
const ResetPasswordFailedMessage = "Could not change the password."

type messageResponse struct {
	Message string `json:"message"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
}

type updateProfileResponse struct {
	Message string `json:"message"`
	Name    string `json:"name"`
}

// ListAnimals returns every animal, newest first
func (c *Client) ListAnimals(ctx context.Context) ([]animals.Animal, error) {
	var list []animals.Animal
	if err := c.Do(ctx, Request{Op: "list_animals", Method: http.MethodGet, Path: PathAnimals}, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// SearchAnimals queries /api/animals with the outbound parameters (query, species, sex)
func (c *Client) SearchAnimals(ctx context.Context, params url.Values) ([]animals.Animal, error) {
	var list []animals.Animal
	req := Request{Op: "search_animals", Method: http.MethodGet, Path: PathAnimals, Query: params}
	if err := c.Do(ctx, req, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *Client) GetAnimal(ctx context.Context, id int) (*animals.Animal, error) {
	var a animals.Animal
	req := Request{Op: "get_animal", Method: http.MethodGet, Path: fmt.Sprintf("%s/%d", PathAnimals, id)}
	if err := c.Do(ctx, req, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// Profile fetches the user that owns token
func (c *Client) Profile(ctx context.Context, token string) (*users.User, error) {
	var u users.User
	req := Request{Op: "get_profile", Method: http.MethodGet, Path: PathProfile, Token: token}
	if err := c.Do(ctx, req, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Login exchanges credentials for an access token
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	var resp loginResponse
	req := Request{
		Op:     "login",
		Method: http.MethodPost,
		Path:   PathLogin,
		Body:   map[string]string{"email": email, "password": password},
	}
	if err := c.Do(ctx, req, &resp); err != nil {
		return "", err
	}
	if resp.AccessToken == "" {
		return "", transportError(errors.New("login response has no access_token"))
	}
	return resp.AccessToken, nil
}

// Register creates an account and returns the API's confirmation message
func (c *Client) Register(ctx context.Context, name, email, password string) (string, error) {
	var resp messageResponse
	req := Request{
		Op:     "register",
		Method: http.MethodPost,
		Path:   PathRegister,
		Body:   map[string]string{"name": name, "email": email, "password": password},
	}
	if err := c.Do(ctx, req, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// ForgotPassword asks the API to email a reset link
func (c *Client) ForgotPassword(ctx context.Context, email string) (string, error) {
	var resp messageResponse
	req := Request{
		Op:     "forgot_password",
		Method: http.MethodPost,
		Path:   PathForgotPassword,
		Body:   map[string]string{"email": email},
	}
	if err := c.Do(ctx, req, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// ResetPassword sets a new password using the reset token as bearer credential.
// Rejections carry ResetPasswordFailedMessage rather than the server message.
func (c *Client) ResetPassword(ctx context.Context, resetToken, newPassword string) error {
	req := Request{
		Op:     "reset_password",
		Method: http.MethodPost,
		Path:   PathResetPassword,
		Body:   map[string]string{"newPassword": newPassword},
		Token:  resetToken,
	}
	err := c.Do(ctx, req, nil)
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Kind != KindTransport {
		apiErr.Message = ResetPasswordFailedMessage
	}
	return err
}

// UpdateProfile renames the user and returns the name stored by the API
func (c *Client) UpdateProfile(ctx context.Context, token, name string) (string, error) {
	var resp updateProfileResponse
	req := Request{
		Op:     "update_profile",
		Method: http.MethodPut,
		Path:   PathProfile,
		Body:   map[string]string{"name": name},
		Token:  token,
	}
	if err := c.Do(ctx, req, &resp); err != nil {
		return "", err
	}
	if resp.Name == "" {
		return name, nil
	}
	return resp.Name, nil
}

func (c *Client) DeleteProfile(ctx context.Context, token string) error {
	req := Request{Op: "delete_profile", Method: http.MethodDelete, Path: PathProfile, Token: token}
	return c.Do(ctx, req, nil)
}
