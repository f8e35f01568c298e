// Package api is the Remote Client: a thin REST/JSON client for the medbook
// backend. Every failure comes back as *RequestFailedError so callers can
// show one message without caring whether the server answered.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/medbook/internal/common"
	"github.com/dmitrijs2005/medbook/internal/logging"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// maxBodySize caps how much of a response is read.
const maxBodySize = 4 << 20

type Client struct {
	baseURL string
	http    *http.Client
	logger  logging.Logger

	mu    sync.RWMutex
	token string

	// concurrent identical GETs share one round trip
	flights singleflight.Group
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

func WithLogger(l logging.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New builds a client for baseURL, e.g. "http://localhost:5000/api".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
		logger:  logging.Discard(),
	}
	for _, o := range opts {
		o(c)
	}
	c.logger = c.logger.With("component", "api")
	return c
}

// SetToken replaces the bearer token sent with later requests. "" removes
// the Authorization header. Its signature matches session.TokenListener.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) currentToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// get performs a GET, coalescing identical concurrent calls. The shared
// round trip runs detached from any one caller's context and is bounded by
// the HTTP client timeout; each caller stops waiting when its own ctx ends.
func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	target := c.url(path, query)
	key := target + "|" + c.currentToken()

	flight := context.WithoutCancel(ctx)
	ch := c.flights.DoChan(key, func() (any, error) {
		return c.send(flight, http.MethodGet, target, nil)
	})

	select {
	case <-ctx.Done():
		c.logger.Debug(ctx, "request abandoned", "url", target, "error", ctx.Err())
		return nil, networkError(ctx.Err())
	case res := <-ch:
		if res.Shared {
			c.logger.Debug(ctx, "request coalesced", "url", target)
		}
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]byte), nil
	}
}

// do performs a non-GET call with an optional JSON body.
func (c *Client) do(ctx context.Context, method, path string, body any) ([]byte, error) {
	var payload []byte
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		payload = b
	}
	return c.send(ctx, method, c.url(path, nil), payload)
}

func (c *Client) url(path string, query url.Values) string {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

func (c *Client) send(ctx context.Context, method, target string, payload []byte) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, networkError(err)
	}

	requestID := uuid.NewString()
	req.Header.Set(common.ContentTypeHeaderName, common.ContentTypeJSON)
	req.Header.Set(common.RequestIDHeaderName, requestID)
	token := c.currentToken()
	if token != "" {
		req.Header.Set(common.AuthorizationHeaderName, "Bearer "+token)
	}

	log := c.logger.With("method", method, "url", target, "request_id", requestID)
	started := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		log.Warn(ctx, "backend unreachable", "error", err)
		return nil, networkError(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		log.Warn(ctx, "read response body", "error", err)
		return nil, networkError(err)
	}

	log.Debug(ctx, "backend responded", "status", resp.StatusCode, "elapsed", time.Since(started))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		rf := statusError(resp.StatusCode, messageOf(data))
		log.Info(ctx, "backend rejected request", "status", resp.StatusCode, "message", rf.Message)
		return nil, rf
	}
	return data, nil
}

// messageOf extracts the "message" field of an error body, if any.
func messageOf(data []byte) string {
	var m messageResponse
	if err := json.Unmarshal(data, &m); err != nil {
		return ""
	}
	return m.Message
}

// decodeList pulls the array named field out of data. A missing field, a
// null, or a malformed array all yield an empty slice.
func decodeList[T any](ctx context.Context, log logging.Logger, data []byte, field string) []T {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(data, &envelope); err != nil {
		log.Warn(ctx, "response is not an object", "field", field, "error", err)
		return []T{}
	}
	return decodeRaw[T](ctx, log, envelope[field], field)
}

func decodeRaw[T any](ctx context.Context, log logging.Logger, raw json.RawMessage, field string) []T {
	items := []T{}
	if len(raw) == 0 {
		return items
	}
	if err := json.Unmarshal(raw, &items); err != nil {
		log.Warn(ctx, "malformed list in response", "field", field, "error", err)
		return []T{}
	}
	if items == nil {
		items = []T{}
	}
	return items
}

// IsNetwork reports whether err means the backend could not be reached.
func IsNetwork(err error) bool {
	var rf *RequestFailedError
	return errors.As(err, &rf) && rf.Network
}
