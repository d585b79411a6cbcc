package probe

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"
)

const DefaultUserAgent = "Render-KeepAlive/1.0"

// Response is the outcome of an attempt that reached the target.
type Response struct {
	StatusCode int
	Duration   time.Duration
	Bytes      int64
}

// Prober issues HTTP GET requests bounded by a timeout.
type Prober struct {
	client    *http.Client
	timeout   time.Duration
	userAgent string
}

type Option func(*Prober)

// WithHTTPClient replaces the default client.
func WithHTTPClient(client *http.Client) Option {
	return func(p *Prober) {
		p.client = client
	}
}

// WithUserAgent overrides the User-Agent header sent with every request.
func WithUserAgent(userAgent string) Option {
	return func(p *Prober) {
		p.userAgent = userAgent
	}
}

// New creates a Prober. Each probe is aborted after timeout.
func New(timeout time.Duration, opts ...Option) *Prober {
	p := &Prober{
		client:    &http.Client{},
		timeout:   timeout,
		userAgent: DefaultUserAgent,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Probe sends a GET to target and reads the body fully. A nil error means
// the status code was 2xx. Non-2xx answers return both the Response and an
// error of kind ErrHTTPStatus.
func (p *Prober) Probe(ctx context.Context, target *url.URL) (Response, error) {
	reqCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	raw := target.String()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, raw, nil)
	if err != nil {
		return Response{}, &Error{Kind: ErrNetwork, URL: raw, Err: err}
	}
	req.Header.Set("User-Agent", p.userAgent)

	start := time.Now()

	res, err := p.client.Do(req)
	if err != nil {
		return Response{Duration: time.Since(start)}, p.classify(ctx, reqCtx, raw, err)
	}
	defer res.Body.Close()

	n, err := io.Copy(io.Discard, res.Body)
	out := Response{
		StatusCode: res.StatusCode,
		Duration:   time.Since(start),
		Bytes:      n,
	}
	if err != nil {
		return out, p.classify(ctx, reqCtx, raw, err)
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return out, &Error{Kind: ErrHTTPStatus, URL: raw, StatusCode: res.StatusCode}
	}

	return out, nil
}

func (p *Prober) classify(parent, reqCtx context.Context, raw string, err error) error {
	if parent.Err() == nil && errors.Is(reqCtx.Err(), context.DeadlineExceeded) {
		return &Error{Kind: ErrTimeout, URL: raw, Err: err}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() && parent.Err() == nil {
		return &Error{Kind: ErrTimeout, URL: raw, Err: err}
	}

	return &Error{Kind: ErrNetwork, URL: raw, Err: err}
}
