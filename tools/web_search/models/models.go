package models

import "errors"

// Result is one search hit as returned by a backend.
type Result struct {
	URL     string `json:"url"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

// ErrMissingAPIKey is returned by API backends configured without credentials.
var ErrMissingAPIKey = errors.New("search backend api key not configured")
