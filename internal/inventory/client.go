// Package inventory is the HTTP client for the remote flight inventory service.
//
// ReserveSeats is not idempotent on the remote side, so the client never retries
// a call on its own.
package inventory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type Client struct {
	baseURL string
	http    *http.Client
}

type Option func(*Client)

// WithHTTPClient replaces the instrumented default client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.http = c
	}
}

func NewClient(baseURL string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func (c *Client) GetFlight(ctx context.Context, flightID string) (*domain.Flight, error) {
	resp, err := c.do(ctx, http.MethodGet, c.flightURL(flightID, ""), nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError("get flight "+flightID, resp)
	}

	var f domain.Flight
	if err := json.NewDecoder(resp.Body).Decode(&f); err != nil {
		return nil, fmt.Errorf("%w: decode flight %s: %w", domain.ErrRemoteCall, flightID, err)
	}
	if f.ID == "" {
		f.ID = flightID
	}
	return &f, nil
}

func (c *Client) ReserveSeats(ctx context.Context, flightID string, seats int) error {
	return c.mutate(ctx, flightID, "reserve", seats)
}

func (c *Client) ReleaseSeats(ctx context.Context, flightID string, seats int) error {
	return c.mutate(ctx, flightID, "release", seats)
}

func (c *Client) mutate(ctx context.Context, flightID, action string, seats int) error {
	q := url.Values{}
	q.Set("seats", strconv.Itoa(seats))

	resp, err := c.do(ctx, http.MethodPost, c.flightURL(flightID, action)+"?"+q.Encode(), nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	return statusError(fmt.Sprintf("%s %d seats on flight %s", action, seats, flightID), resp)
}

func (c *Client) flightURL(flightID, action string) string {
	u := c.baseURL + "/flights/" + url.PathEscape(flightID)
	if action != "" {
		u += "/" + action
	}
	return u
}

func (c *Client) do(ctx context.Context, method, target string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %w", domain.ErrRemoteCall, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if isTimeout(ctx, err) {
			return nil, fmt.Errorf("%w: %s %s: %w", domain.ErrTimeout, method, target, err)
		}
		return nil, fmt.Errorf("%w: %s %s: %w", domain.ErrRemoteCall, method, target, err)
	}
	return resp, nil
}

func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func statusError(op string, resp *http.Response) error {
	msg := http.StatusText(resp.StatusCode)
	var body errorBody
	if data, err := io.ReadAll(io.LimitReader(resp.Body, 4096)); err == nil && len(data) > 0 {
		if json.Unmarshal(data, &body) == nil && body.Error != "" {
			msg = body.Error
		}
	}

	switch resp.StatusCode {
	case http.StatusNotFound:
		return fmt.Errorf("%s: %w: %s", op, domain.ErrNotFound, msg)
	case http.StatusConflict:
		return fmt.Errorf("%s: %w: %s", op, domain.ErrInsufficientInventory, msg)
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return fmt.Errorf("%s: %w: %s", op, domain.ErrInvalidInput, msg)
	case http.StatusGatewayTimeout, http.StatusRequestTimeout:
		return fmt.Errorf("%s: %w: %s", op, domain.ErrTimeout, msg)
	default:
		return fmt.Errorf("%s: %w: status %d: %s", op, domain.ErrRemoteCall, resp.StatusCode, msg)
	}
}
