package api

import (
	"context"
	"net/http"

	"github.com/fjod/go_shop/internal/domain"
)

type loginRequestDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequestDTO struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponseDTO struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

// Login exchanges credentials for a bearer token and the confirmed identity.
// It does not install the token; that is the session store's decision.
func (c *Client) Login(ctx context.Context, email, password string) (string, domain.User, error) {
	var resp authResponseDTO
	err := c.Do(ctx, http.MethodPost, "/api/auth/login", loginRequestDTO{Email: email, Password: password}, &resp)
	if err != nil {
		return "", domain.User{}, err
	}
	return resp.Token, resp.User, nil
}

func (c *Client) Register(ctx context.Context, name, email, password string) (string, domain.User, error) {
	var resp authResponseDTO
	err := c.Do(ctx, http.MethodPost, "/api/auth/register", registerRequestDTO{Name: name, Email: email, Password: password}, &resp)
	if err != nil {
		return "", domain.User{}, err
	}
	return resp.Token, resp.User, nil
}

// CurrentUser validates the installed credential against the server.
func (c *Client) CurrentUser(ctx context.Context) (domain.User, error) {
	var user domain.User
	if err := c.Do(ctx, http.MethodGet, "/api/auth/me", nil, &user); err != nil {
		return domain.User{}, err
	}
	return user, nil
}
