package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cropwise-dev/cropwise/internal/cli/session"
	"github.com/cropwise-dev/cropwise/internal/cli/soil"
)

// ID accepts identifiers encoded either as JSON strings or numbers
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid id %s", string(data))
	}
	*id = ID(n.String())
	return nil
}

// UserDetail represents user information returned by the API
type UserDetail struct {
	ID        ID        `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at,omitzero"`
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse represents the login response
type LoginResponse struct {
	Message      string     `json:"message"`
	AccessToken  string     `json:"access_token"`
	RefreshToken string     `json:"refresh_token"`
	User         UserDetail `json:"user"`
}

// RegisterRequest represents the registration request body
type RegisterRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ForgotPasswordResponse carries the reset token only when the server runs in development mode
type ForgotPasswordResponse struct {
	Message    string `json:"message"`
	ResetToken string `json:"reset_token,omitempty"`
}

// ModelMetric holds optional per-model quality figures
type ModelMetric struct {
	Accuracy float64 `json:"accuracy"`
}

// PredictionResult is the prediction service answer for one soil sample
type PredictionResult struct {
	Predictions     map[string]string      `json:"predictions"`
	Accuracies      map[string]float64     `json:"accuracies,omitempty"`
	ModelMetrics    map[string]ModelMetric `json:"model_metrics,omitempty"`
	Votes           map[string]int         `json:"votes,omitempty"`
	BestModel       string                 `json:"best_model"`
	RecommendedCrop string                 `json:"recommended_crop"`
	Input           *soil.Input            `json:"input,omitempty"`
}

// PredictionRecord is one stored prediction from the history endpoints
type PredictionRecord struct {
	ID            ID                `json:"id"`
	UserID        ID                `json:"user_id"`
	Nitrogen      float64           `json:"nitrogen"`
	Phosphorus    float64           `json:"phosphorus"`
	Potassium     float64           `json:"potassium"`
	Temperature   float64           `json:"temperature"`
	Humidity      float64           `json:"humidity"`
	Ph            float64           `json:"ph"`
	Rainfall      float64           `json:"rainfall"`
	PredictedCrop string            `json:"predicted_crop"`
	BestModel     string            `json:"best_model"`
	Predictions   map[string]string `json:"predictions,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// doJSON runs one call through the matching executor and decodes the answer into out
func (c *Client) doJSON(ctx context.Context, authenticated bool, method, path string, payload, out any) error {
	req, err := NewJSONRequest(method, path, payload)
	if err != nil {
		return err
	}

	var resp *http.Response
	if authenticated {
		resp, err = c.AuthenticatedRequest(ctx, req)
	} else {
		resp, err = c.PublicRequest(ctx, req)
	}
	if err != nil {
		return err
	}

	if out == nil {
		drain(resp)
		return nil
	}
	return DecodeJSON(resp, out)
}

// Login authenticates the user and persists the whole session on success
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	var loginResp LoginResponse
	if err := c.doJSON(ctx, false, http.MethodPost, "/login", LoginRequest{Email: email, Password: password}, &loginResp); err != nil {
		return nil, err
	}

	if loginResp.AccessToken == "" {
		return nil, fmt.Errorf("%w: login response carried no access token", ErrMalformedResponse)
	}

	s := session.Session{
		AccessToken:  loginResp.AccessToken,
		RefreshToken: loginResp.RefreshToken,
		UserID:       string(loginResp.User.ID),
		UserEmail:    loginResp.User.Email,
		FullName:     loginResp.User.FullName,
		IsAdmin:      loginResp.User.IsAdmin,
	}
	if err := c.store.Save(s); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	c.logger.Info().Str("user_id", s.UserID).Msg("Signed in")
	return &loginResp, nil
}

// Register creates a new account
func (c *Client) Register(ctx context.Context, fullName, email, password string) (string, error) {
	var resp messageResponse
	req := RegisterRequest{FullName: fullName, Email: email, Password: password}
	if err := c.doJSON(ctx, false, http.MethodPost, "/register", req, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// Logout tells the server to revoke the refresh token and always clears the
// local session. Server-side failures are ignored.
func (c *Client) Logout(ctx context.Context) error {
	payload := map[string]string{}
	if refreshToken, ok := c.store.Get(session.FieldRefreshToken); ok {
		payload["refresh_token"] = refreshToken
	}

	if c.store.IsActive() {
		if err := c.doJSON(ctx, true, http.MethodPost, "/logout", payload, nil); err != nil {
			c.logger.Debug().Err(err).Msg("Logout request failed, clearing session anyway")
		}
	}

	if err := c.store.Clear(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// Me returns the signed-in user's account
func (c *Client) Me(ctx context.Context) (*UserDetail, error) {
	var user UserDetail
	if err := c.doJSON(ctx, true, http.MethodGet, "/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// History returns the signed-in user's recent predictions, newest first
func (c *Client) History(ctx context.Context) ([]PredictionRecord, error) {
	userID, ok := c.store.Get(session.FieldUserID)
	if !ok {
		return nil, &RedirectError{Target: c.signInPage, Err: ErrSessionExpired}
	}

	var records []PredictionRecord
	if err := c.doJSON(ctx, true, http.MethodGet, "/history/"+url.PathEscape(userID), nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// UpdateProfile changes the account's name and email and mirrors them into the session
func (c *Client) UpdateProfile(ctx context.Context, fullName, email string) (string, error) {
	var resp messageResponse
	payload := map[string]string{"full_name": fullName, "email": email}
	if err := c.doJSON(ctx, true, http.MethodPost, "/update_profile", payload, &resp); err != nil {
		return "", err
	}

	s, err := c.store.Load()
	if err != nil {
		return "", fmt.Errorf("failed to load session: %w", err)
	}
	if s.Active() {
		s.FullName = fullName
		s.UserEmail = email
		if err := c.store.Save(s); err != nil {
			return "", fmt.Errorf("failed to save session: %w", err)
		}
	}
	return resp.Message, nil
}

// ForgotPassword asks the server to issue a password reset token
func (c *Client) ForgotPassword(ctx context.Context, email string) (*ForgotPasswordResponse, error) {
	var resp ForgotPasswordResponse
	if err := c.doJSON(ctx, false, http.MethodPost, "/forgot_password", map[string]string{"email": email}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ResetPassword sets a new password using a reset token
func (c *Client) ResetPassword(ctx context.Context, token, newPassword string) (string, error) {
	var resp messageResponse
	payload := map[string]string{"token": token, "new_password": newPassword}
	if err := c.doJSON(ctx, false, http.MethodPost, "/reset_password", payload, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// ChangePassword replaces the signed-in user's password
func (c *Client) ChangePassword(ctx context.Context, oldPassword, newPassword string) (string, error) {
	var resp messageResponse
	payload := map[string]string{"old_password": oldPassword, "new_password": newPassword}
	if err := c.doJSON(ctx, true, http.MethodPost, "/change_password", payload, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// Predict sends one soil sample to the prediction service
func (c *Client) Predict(ctx context.Context, input soil.Input) (*PredictionResult, error) {
	var result PredictionResult
	if err := c.doJSON(ctx, true, http.MethodPost, "/predict", input, &result); err != nil {
		return nil, err
	}
	if result.Predictions == nil {
		return nil, fmt.Errorf("%w: prediction response carried no predictions", ErrMalformedResponse)
	}
	if result.Input == nil {
		in := input
		result.Input = &in
	}
	return &result, nil
}

// AdminUsers lists accounts, one page at a time
func (c *Client) AdminUsers(ctx context.Context, page, perPage int) ([]UserDetail, error) {
	var users []UserDetail
	if err := c.doJSON(ctx, true, http.MethodGet, "/admin/users?"+pageQuery(page, perPage), nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// AdminPredictions lists every user's predictions, one page at a time
func (c *Client) AdminPredictions(ctx context.Context, page, perPage int) ([]PredictionRecord, error) {
	var records []PredictionRecord
	if err := c.doJSON(ctx, true, http.MethodGet, "/admin/predictions?"+pageQuery(page, perPage), nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func pageQuery(page, perPage int) string {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if perPage > 0 {
		q.Set("per_page", strconv.Itoa(perPage))
	}
	return q.Encode()
}
