package stress

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const (
	OpLogin   = "login"
	OpBrowse  = "browse"
	OpSearch  = "search"
	OpDetails = "details"
	OpStats   = "stats"
)

var ErrUnexpectedStatus = errors.New("unexpected status")

type apiResponse[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

type loginData struct {
	Token string `json:"token"`
}

type movieList struct {
	TotalElements int `json:"totalElements"`
}

type movieDetails struct {
	Title string `json:"title"`
}

type movieStats struct {
	TotalMovies int `json:"totalMovies"`
}

// Client calls the MovieFlix API and records every catalogue request into
// its Stats. Login requests are not recorded.
type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	stats   *Stats
}

type ClientOption func(*Client)

func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.http = hc
	}
}

// WithRateLimit caps the request rate. rps <= 0 leaves it unlimited.
func WithRateLimit(rps float64) ClientOption {
	return func(c *Client) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

func NewClient(baseURL string, timeout time.Duration, stats *Stats, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		stats:   stats,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

func (c *Client) Login(ctx context.Context, creds Credentials) (string, error) {
	body, err := json.Marshal(map[string]string{
		"username": creds.Username,
		"password": creds.Password,
	})
	if err != nil {
		return "", err
	}

	var resp apiResponse[loginData]
	if _, err := c.do(ctx, http.MethodPost, "/api/auth/login", "", body, &resp); err != nil {
		return "", fmt.Errorf("login %s: %w", creds.Username, err)
	}

	if resp.Data.Token == "" {
		return "", fmt.Errorf("login %s: no token in response", creds.Username)
	}

	return resp.Data.Token, nil
}

// BrowseMovies returns the total number of movies in the catalogue.
func (c *Client) BrowseMovies(ctx context.Context, token string) (int, error) {
	q := url.Values{}
	q.Set("sort", "rating")
	q.Set("order", "desc")
	q.Set("page", "0")
	q.Set("size", "50")

	var resp apiResponse[movieList]
	err := c.timed(ctx, OpBrowse, "", "/api/movies?"+q.Encode(), token, &resp)
	return resp.Data.TotalElements, err
}

// SearchMovies returns the number of movies matching query.
func (c *Client) SearchMovies(ctx context.Context, token, query string) (int, error) {
	q := url.Values{}
	q.Set("search", query)
	q.Set("sort", "rating")
	q.Set("order", "desc")
	q.Set("page", "0")
	q.Set("size", "12")

	var resp apiResponse[movieList]
	err := c.timed(ctx, OpSearch, query, "/api/movies?"+q.Encode(), token, &resp)
	return resp.Data.TotalElements, err
}

// MovieDetails returns the title of the movie.
func (c *Client) MovieDetails(ctx context.Context, token, imdbID string) (string, error) {
	var resp apiResponse[movieDetails]
	err := c.timed(ctx, OpDetails, imdbID, "/api/movies/"+url.PathEscape(imdbID), token, &resp)
	return resp.Data.Title, err
}

// Stats returns the catalogue size reported by the stats endpoint.
func (c *Client) Stats(ctx context.Context, token string) (int, error) {
	var resp apiResponse[movieStats]
	err := c.timed(ctx, OpStats, "", "/api/stats", token, &resp)
	return resp.Data.TotalMovies, err
}

func (c *Client) timed(ctx context.Context, op, detail, path, token string, out any) error {
	start := time.Now()
	status, err := c.do(ctx, http.MethodGet, path, token, nil, out)

	if c.stats != nil {
		c.stats.Record(Sample{
			Operation:  op,
			Detail:     detail,
			Start:      start,
			Duration:   time.Since(start),
			StatusCode: status,
			Err:        err,
		})
	}

	return err
}

func (c *Client) do(ctx context.Context, method, path, token string, body []byte, out any) (int, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return 0, err
		}
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, err
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return resp.StatusCode, fmt.Errorf("%w: %s", ErrUnexpectedStatus, strconv.Itoa(resp.StatusCode))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("decode response: %w", err)
		}
	}

	return resp.StatusCode, nil
}
