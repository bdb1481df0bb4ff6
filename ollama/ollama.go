// Package ollama provides embedding and chat on models served by a local
// Ollama server.
package ollama

import (
	"net/http"
	"net/url"
	"time"

	"github.com/fwojciec/spyder"
	"github.com/ollama/ollama/api"
)

// DefaultTimeout bounds a single request to the Ollama server.
const DefaultTimeout = 5 * time.Minute

// NewClient creates a client for the Ollama server at baseURL.
// An empty baseURL falls back to OLLAMA_HOST and then to the local default.
func NewClient(baseURL string, httpClient *http.Client) (*api.Client, error) {
	if baseURL == "" {
		client, err := api.ClientFromEnvironment()
		if err != nil {
			return nil, spyder.WrapError(spyder.ECONFIG, err, "ollama host")
		}
		return client, nil
	}
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, spyder.Errorf(spyder.ECONFIG, "invalid ollama base URL %q", baseURL)
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	return api.NewClient(u, httpClient), nil
}
