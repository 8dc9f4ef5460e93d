package utils

import (
	"errors"
	"net/http"
	"net/url"
	"time"
)

// NewHTTPClient returns a client with an overall timeout, 10s when unset.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

// StripURL drops the request URL from a transport error, keeping its cause.
// Outbound URLs here carry API keys and webhook tokens.
func StripURL(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != nil {
		return urlErr.Err
	}
	return err
}
