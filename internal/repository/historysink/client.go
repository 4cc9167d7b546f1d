// Package historysink implements the History Sink port as an HTTP RPC
// client, one instance per environment (spec §4.5, §6).
package historysink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/pingerus/monitor-core/internal/domain/historysink"
	"github.com/pingerus/monitor-core/internal/domain/monitor"
	"github.com/pingerus/monitor-core/internal/obs"
)

// wirePayload mirrors spec §4.5's RPC body exactly, including its optional
// errorMessage field and epoch-ms checkedAt.
type wirePayload struct {
	SharedSecret string `json:"sharedSecret"`
	URLID        string `json:"urlId"`
	UserID       string `json:"userId"`
	ShortURL     string `json:"shortUrl"`
	LongURL      string `json:"longUrl"`
	StatusCode   int    `json:"statusCode"`
	LatencyMS    int    `json:"latencyMs"`
	IsHealthy    bool   `json:"isHealthy"`
	HealthStatus string `json:"healthStatus"`
	ErrorMessage string `json:"errorMessage,omitempty"`
	CheckedAt    int64  `json:"checkedAt"`
}

// Client posts History Sink RPCs to a single endpoint for one environment.
type Client struct {
	endpoint     string
	sharedSecret string
	httpClient   *http.Client
}

func NewClient(endpoint, sharedSecret string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		endpoint:     endpoint,
		sharedSecret: sharedSecret,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: obs.WrapHTTPTransport(nil),
		},
	}
}

var _ historysink.Sink = (*Multiplexer)(nil)

// Multiplexer routes a RecordHealthCheck call to the client instance
// selected by the monitor's environment (spec §4.5, §6: "one per
// environment (two total: dev, prod)").
type Multiplexer struct {
	clients map[monitor.Environment]*Client
}

func NewMultiplexer(dev, prod *Client) *Multiplexer {
	return &Multiplexer{clients: map[monitor.Environment]*Client{
		monitor.EnvDev:  dev,
		monitor.EnvProd: prod,
	}}
}

// RecordHealthCheck treats every transport/decoding error as transient: the
// caller (the Worker) must not fail the job on a History Sink error.
func (m *Multiplexer) RecordHealthCheck(ctx context.Context, env monitor.Environment, r historysink.Record) error {
	c, ok := m.clients[env]
	if !ok || c == nil {
		return fmt.Errorf("no history sink client configured for environment %q", env)
	}
	return c.record(ctx, r)
}

func (c *Client) record(ctx context.Context, r historysink.Record) error {
	body := wirePayload{
		SharedSecret: c.sharedSecret,
		URLID:        r.URLID,
		UserID:       r.UserID,
		ShortURL:     r.ShortURL,
		LongURL:      r.LongURL,
		StatusCode:   r.StatusCode,
		LatencyMS:    r.LatencyMS,
		IsHealthy:    r.IsHealthy,
		HealthStatus: string(r.HealthStatus),
		ErrorMessage: r.ErrorMessage,
		CheckedAt:    r.CheckedAt.UnixMilli(),
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal history sink payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build history sink request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("history sink request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("history sink responded %d", resp.StatusCode)
	}
	return nil
}
