package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// User is the public user projection the backend returns; the password hash
// never appears on the wire.
type User struct {
	ID                uint      `json:"id"`
	Email             string    `json:"email"`
	Username          string    `json:"username"`
	FavoriteDriverIDs []string  `json:"favoriteDriverIds"`
	FavoriteTeamIDs   []string  `json:"favoriteTeamIds"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// RegisterParams carries the registration fields.
type RegisterParams struct {
	Email             string   `json:"email"`
	Username          string   `json:"username"`
	Password          string   `json:"password"`
	FavoriteDriverIDs []string `json:"favoriteDriverIds,omitempty"`
	FavoriteTeamIDs   []string `json:"favoriteTeamIds,omitempty"`
}

// ProfilePatch carries a partial profile update. Nil pointers and nil slices
// are omitted from the request body.
type ProfilePatch struct {
	Email             *string
	Username          *string
	Password          *string
	FavoriteDriverIDs []string
	FavoriteTeamIDs   []string
}

// MarshalJSON emits only the provided fields, so an explicit empty favorites
// list still means "clear" rather than being dropped.
func (p ProfilePatch) MarshalJSON() ([]byte, error) {
	body := map[string]interface{}{}
	if p.Email != nil {
		body["email"] = *p.Email
	}
	if p.Username != nil {
		body["username"] = *p.Username
	}
	if p.Password != nil {
		body["password"] = *p.Password
	}
	if p.FavoriteDriverIDs != nil {
		body["favoriteDriverIds"] = p.FavoriteDriverIDs
	}
	if p.FavoriteTeamIDs != nil {
		body["favoriteTeamIds"] = p.FavoriteTeamIDs
	}
	return json.Marshal(body)
}

// APIError is a structured failure decoded from an error response body.
type APIError struct {
	Status  int
	Message string
	Code    string
	Fields  []string
}

func (e *APIError) Error() string { return e.Message }

// IsUnauthorized reports whether err is a 401 from the backend.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

// API is the HTTP client for the backend.
type API struct {
	base string
	http *http.Client
}

// NewAPI creates a client for the backend at base, e.g.
// "http://localhost:4200/api".
func NewAPI(base string) *API {
	return &API{
		base: strings.TrimRight(base, "/"),
		http: &http.Client{Timeout: 10 * time.Second},
	}
}

type loginResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

// Register creates an account; it does not log the user in.
func (a *API) Register(ctx context.Context, params RegisterParams) (*User, error) {
	var user User
	if err := a.do(ctx, http.MethodPost, "/auth/register", "", params, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Login exchanges credentials for a token and the public user.
func (a *API) Login(ctx context.Context, usernameOrEmail, password string) (string, *User, error) {
	req := map[string]string{"usernameOrEmail": usernameOrEmail, "password": password}
	var resp loginResponse
	if err := a.do(ctx, http.MethodPost, "/auth/login", "", req, &resp); err != nil {
		return "", nil, err
	}
	if resp.Token == "" || resp.User == nil {
		return "", nil, errors.New("invalid server response: missing token or user")
	}
	return resp.Token, resp.User, nil
}

// Me resolves the user the token belongs to.
func (a *API) Me(ctx context.Context, token string) (*User, error) {
	var user User
	if err := a.do(ctx, http.MethodGet, "/user/me", token, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateProfile applies a partial update for the token's user.
func (a *API) UpdateProfile(ctx context.Context, token string, patch ProfilePatch) (*User, error) {
	var user User
	if err := a.do(ctx, http.MethodPatch, "/user/me", token, patch, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (a *API) do(ctx context.Context, method, path, token string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.base+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := a.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp.StatusCode, data)
	}
	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func decodeError(status int, data []byte) error {
	var body struct {
		Error  string   `json:"error"`
		Code   string   `json:"code"`
		Fields []string `json:"fields"`
	}
	apiErr := &APIError{Status: status, Message: http.StatusText(status)}
	if err := json.Unmarshal(data, &body); err == nil && body.Error != "" {
		apiErr.Message = body.Error
		apiErr.Code = body.Code
		apiErr.Fields = body.Fields
	}
	return apiErr
}
