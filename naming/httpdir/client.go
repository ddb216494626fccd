package httpdir

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sghaida/remoteresource/naming"
)

// Client is a naming.Directory served by a remote NewHandler.
type Client struct {
	base    *url.URL
	hc      *http.Client
	limiter *rate.Limiter
	log     *zap.Logger
}

var _ naming.Directory = (*Client)(nil)

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the default client, which times out after ten
// seconds.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.hc = hc
		}
	}
}

// WithRateLimit caps outgoing requests at rps per second with the given
// burst. A non-positive rps disables the limit.
func WithRateLimit(rps float64, burst int) ClientOption {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithClientLogger sets the logger. The default discards everything.
func WithClientLogger(l *zap.Logger) ClientOption {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// NewClient returns a client for the directory served at baseURL.
func NewClient(baseURL string, opts ...ClientOption) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("httpdir: parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("httpdir: base url %q must be http or https", baseURL)
	}

	c := &Client{
		base: u,
		hc:   &http.Client{Timeout: 10 * time.Second},
		log:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// OpenContext implements naming.Directory.
func (c *Client) OpenContext(ctx context.Context, name string) (naming.Namespace, error) {
	var resp contextResponse
	if err := c.get(ctx, "/v1/context", url.Values{"name": {name}}, &resp); err != nil {
		return nil, err
	}
	return &namespace{client: c, name: name}, nil
}

type namespace struct {
	client *Client
	name   string
}

func (n *namespace) Lookup(ctx context.Context, name string) (any, error) {
	var resp lookupResponse
	q := url.Values{"context": {n.name}, "name": {name}}
	if err := n.client.get(ctx, "/v1/lookup", q, &resp); err != nil {
		return nil, err
	}
	return resp.Value, nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	u := *c.base
	u.Path += path
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("httpdir: %w", err)
	}
	reqID := uuid.New().String()
	req.Header.Set(RequestIDHeader, reqID)
	req.Header.Set("Accept", "application/json")

	res, err := c.hc.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%w: %v", naming.ErrUnavailable, err)
	}
	defer res.Body.Close()

	c.log.Debug("directory request",
		zap.String("request_id", reqID),
		zap.String("uri", u.RequestURI()),
		zap.Int("status", res.StatusCode),
	)

	body, err := io.ReadAll(io.LimitReader(res.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("%w: read response: %v", naming.ErrUnavailable, err)
	}

	switch res.StatusCode {
	case http.StatusOK:
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("%w: decode response: %v", naming.ErrUnavailable, err)
		}
		return nil
	case http.StatusNotFound:
		var e errorResponse
		_ = json.Unmarshal(body, &e)
		if e.Context == "" {
			e.Context = q.Get("context")
			if e.Context == "" {
				e.Context = q.Get("name")
			}
		}
		return &naming.NotFoundError{Context: e.Context, Name: e.Name}
	default:
		var e errorResponse
		if json.Unmarshal(body, &e) != nil || e.Error == "" {
			e.Error = strings.TrimSpace(string(body))
		}
		return fmt.Errorf("%w: %s: %s", naming.ErrUnavailable, res.Status, e.Error)
	}
}
