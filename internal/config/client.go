package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
)

// Default CLI configuration values.
const (
	DefaultServerURL = "http://localhost:8080"
	DefaultSTUN      = "stun:stun.l.google.com:19302"
)

// Client holds callctl configuration.
type Client struct {
	// ServerURL is the base HTTP URL of the signaling server.
	ServerURL string

	// Origin is sent on the websocket handshake. Empty sends none.
	Origin string

	// STUNServer is used by probe peers. Empty disables STUN.
	STUNServer string
}

// ClientOptions carries CLI flag values. Empty fields fall through to the
// environment, then to defaults.
type ClientOptions struct {
	ServerURL  string
	Origin     string
	STUNServer string
}

// LoadClient resolves configuration with the following priority:
// 1. CLI flags (passed via ClientOptions)
// 2. Environment variables
// 3. Hardcoded defaults
func LoadClient(opts ClientOptions) (*Client, error) {
	server := firstNonEmpty(opts.ServerURL, os.Getenv("CALLCTL_SERVER"), DefaultServerURL)
	u, err := url.Parse(server)
	if err != nil {
		return nil, fmt.Errorf("invalid server URL %q: %w", server, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid server URL %q: scheme must be http or https", server)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid server URL %q: missing host", server)
	}

	return &Client{
		ServerURL:  strings.TrimRight(u.String(), "/"),
		Origin:     firstNonEmpty(opts.Origin, os.Getenv("CALLCTL_ORIGIN")),
		STUNServer: firstNonEmpty(opts.STUNServer, os.Getenv("STUN_SERVER"), DefaultSTUN),
	}, nil
}

// WebSocketURL returns the signaling endpoint derived from ServerURL.
func (c *Client) WebSocketURL() string {
	u, _ := url.Parse(c.ServerURL)
	if u.Scheme == "https" {
		u.Scheme = "wss"
	} else {
		u.Scheme = "ws"
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/ws"
	return u.String()
}

// StatsURL returns the operational stats endpoint.
func (c *Client) StatsURL() string {
	return c.ServerURL + "/stats"
}

// ICEServers returns the STUN URLs for probe peers.
func (c *Client) ICEServers() []string {
	if c.STUNServer == "" || c.STUNServer == "none" {
		return nil
	}
	return []string{c.STUNServer}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
