package netutil

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// IPLookup asks an external echo service for the server's public address.
// Callers treat failure as a recognized, loggable non-fatal outcome.
type IPLookup struct {
	URL    string
	Client *http.Client
}

func NewIPLookup(url string) *IPLookup {
	return &IPLookup{
		URL:    url,
		Client: &http.Client{Timeout: 3 * time.Second},
	}
}

// PublicIP fetches the address, honoring the request context.
func (l *IPLookup) PublicIP(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.URL, nil)
	if err != nil {
		return "", err
	}
	resp, err := l.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ip lookup: unexpected status %d", resp.StatusCode)
	}
	var body struct {
		IP string `json:"ip"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("ip lookup: %w", err)
	}
	if body.IP == "" {
		return "", fmt.Errorf("ip lookup: empty response")
	}
	return body.IP, nil
}
