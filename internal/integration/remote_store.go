// Package integration handles external service interactions
package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultRemoteTimeout bounds every request to the remote store
const DefaultRemoteTimeout = 10 * time.Second

// RemoteStore talks to the plant-care server over HTTP. It satisfies
// repository.Store; writes are last-write-wins on the server.
type RemoteStore struct {
	baseURL string
	client  *http.Client
}

// NewRemoteStore creates a client for the server at baseURL
func NewRemoteStore(baseURL string, timeout time.Duration) *RemoteStore {
	if timeout <= 0 {
		timeout = DefaultRemoteTimeout
	}
	return &RemoteStore{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// Get fetches a collection. The server answers [] for collections never written.
func (rs *RemoteStore) Get(ctx context.Context, name string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rs.collectionURL(name), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	body, err := rs.do(req)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(body), nil
}

// Set replaces one collection on the server
func (rs *RemoteStore) Set(ctx context.Context, name string, data json.RawMessage) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, rs.collectionURL(name), bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	_, err = rs.do(req)
	return err
}

// SetMany sends every collection in a single request; the server applies it atomically
func (rs *RemoteStore) SetMany(ctx context.Context, batch map[string]json.RawMessage) error {
	payload, err := json.Marshal(batch)
	if err != nil {
		return fmt.Errorf("failed to encode batch: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, rs.baseURL+"/api/collections", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	_, err = rs.do(req)
	return err
}

// Close releases idle connections
func (rs *RemoteStore) Close() error {
	rs.client.CloseIdleConnections()
	return nil
}

func (rs *RemoteStore) collectionURL(name string) string {
	return rs.baseURL + "/api/collections/" + url.PathEscape(name)
}

// do sends the request and only reports success once the server confirms it
func (rs *RemoteStore) do(req *http.Request) ([]byte, error) {
	res, err := rs.client.Do(req)
	if err != nil {
		log.Printf("Error calling remote store: %v", err)
		return nil, fmt.Errorf("failed to reach remote store: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read remote store response: %w", err)
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		var envelope struct {
			Message string `json:"message"`
		}
		_ = json.Unmarshal(body, &envelope)
		log.Printf("Remote store returned %d for %s %s", res.StatusCode, req.Method, req.URL.Path)
		return nil, fmt.Errorf("unexpected status code: %d %s: %s", res.StatusCode, http.StatusText(res.StatusCode), envelope.Message)
	}
	return body, nil
}
