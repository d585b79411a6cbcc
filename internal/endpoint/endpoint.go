package endpoint

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

var (
	ErrEmptyName  = errors.New("endpoint name cannot be empty")
	ErrInvalidURL = errors.New("endpoint URL is invalid")
)

// Endpoint is an immutable ping target.
type Endpoint struct {
	name string
	url  *url.URL
}

// New parses rawURL and returns an Endpoint displayed as name.
// Only absolute http and https URLs are accepted.
func New(name, rawURL string) (Endpoint, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Endpoint{}, ErrEmptyName
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return Endpoint{}, fmt.Errorf("%w: %s: %v", ErrInvalidURL, rawURL, err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return Endpoint{}, fmt.Errorf("%w: %s: scheme must be http or https", ErrInvalidURL, rawURL)
	}

	if u.Host == "" {
		return Endpoint{}, fmt.Errorf("%w: %s: missing host", ErrInvalidURL, rawURL)
	}

	return Endpoint{name: name, url: u}, nil
}

// MustNew is like New but panics on error.
func MustNew(name, rawURL string) Endpoint {
	ep, err := New(name, rawURL)
	if err != nil {
		panic(err)
	}
	return ep
}

// Name returns the display name.
func (e Endpoint) Name() string {
	return e.name
}

// URL returns a copy of the target URL.
func (e Endpoint) URL() *url.URL {
	if e.url == nil {
		return nil
	}
	u := *e.url
	return &u
}

func (e Endpoint) String() string {
	if e.url == nil {
		return e.name
	}
	return e.name + " (" + e.url.String() + ")"
}
