// Package authsetup reads the login capability from the backend's
// /auth_setup endpoint.
package authsetup

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Setup is the subset of the /auth_setup response the shell consumes.
type Setup struct {
	LoginEnabled bool `json:"login_enabled"`
	Auth         struct {
		ClientID    string `json:"clientId"`
		Authority   string `json:"authority"`
		RedirectURI string `json:"redirectUri"`
	} `json:"auth"`
}

// Fetch requests backendURL/auth_setup once.
func Fetch(ctx context.Context, client *http.Client, backendURL string) (Setup, error) {
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	endpoint := strings.TrimRight(backendURL, "/") + "/auth_setup"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Setup{}, fmt.Errorf("build auth_setup request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		return Setup{}, fmt.Errorf("fetch auth_setup: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return Setup{}, fmt.Errorf("fetch auth_setup: unexpected status %d", resp.StatusCode)
	}
	var s Setup
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&s); err != nil {
		return Setup{}, fmt.Errorf("decode auth_setup: %w", err)
	}
	return s, nil
}

// UseLogin decides the capability flag: an explicit setting wins, then the
// backend's answer, then false.
func UseLogin(ctx context.Context, explicit *bool, client *http.Client, backendURL string) (bool, error) {
	if explicit != nil {
		return *explicit, nil
	}
	if backendURL == "" {
		return false, nil
	}
	s, err := Fetch(ctx, client, backendURL)
	if err != nil {
		return false, err
	}
	return s.LoginEnabled, nil
}
