package session

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/involex/involex/pkg/types"
)

// AuthService is the practice-management backend the session flow talks to.
type AuthService interface {
	// AuthURL returns the hosted OAuth authorization URL to open.
	AuthURL(ctx context.Context) (string, error)

	// Matters lists the billing matters available to the authenticated user.
	Matters(ctx context.Context, email string) ([]types.Matter, error)
}

// HTTPAuthService calls the auth-init and matters endpoints of the backend
// that brokers the practice-management OAuth flow.
type HTTPAuthService struct {
	httpClient *http.Client
	initURL    string
	mattersURL string
}

func NewHTTPAuthService(config types.AuthConfig) *HTTPAuthService {
	return &HTTPAuthService{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		initURL:    config.InitURL,
		mattersURL: config.MattersURL,
	}
}

func (s *HTTPAuthService) AuthURL(ctx context.Context) (string, error) {
	var payload struct {
		AuthURL string `json:"auth_url"`
	}
	if err := s.request(ctx, s.initURL, &payload); err != nil {
		return "", err
	}
	if payload.AuthURL == "" {
		return "", fmt.Errorf("auth init returned no auth_url")
	}
	return payload.AuthURL, nil
}

func (s *HTTPAuthService) Matters(ctx context.Context, email string) ([]types.Matter, error) {
	var payload struct {
		Matters []types.Matter `json:"matters"`
	}
	endpoint := s.mattersURL + "?email=" + url.QueryEscape(email)
	if err := s.request(ctx, endpoint, &payload); err != nil {
		return nil, err
	}
	return payload.Matters, nil
}

func (s *HTTPAuthService) request(ctx context.Context, endpoint string, result any) error {
	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		var apiErr struct {
			Detail  string `json:"detail"`
			Message string `json:"message"`
		}
		json.Unmarshal(body, &apiErr)
		if apiErr.Detail != "" {
			return fmt.Errorf("auth service: %s", apiErr.Detail)
		}
		if apiErr.Message != "" {
			return fmt.Errorf("auth service: %s", apiErr.Message)
		}
		return fmt.Errorf("auth service: %s", resp.Status)
	}

	return json.NewDecoder(resp.Body).Decode(result)
}
