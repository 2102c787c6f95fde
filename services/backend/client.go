// Package backendsvc is the HTTP client for the remote school backend. The
// backend is a moving target: endpoints exist in several generations, lists
// arrive bare or wrapped in a DRF pagination envelope, and record shapes
// drift. Everything is normalized here, at the boundary, through the core
// packages' tolerant decoders; one malformed record never fails a listing.
package backendsvc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/url"
	"strings"

	"github.com/pkg/errors"

	"github.com/JCBT04/Capstone/core"
)

// Client talks to the school backend. The base URL is injected from config;
// there is no ambient default.
type Client struct {
	base string
	http *http.Client
	log  core.Logger
}

func NewClient(conf *core.Config, log core.Logger) *Client {
	return &Client{
		base: strings.TrimRight(conf.Backend.BaseURL, "/"),
		http: &http.Client{Timeout: conf.Backend.Timeout},
		log:  log,
	}
}

// Error is a non-2xx response from the backend.
type Error struct {
	Status int
	Detail string
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("backend HTTP %d: %s", e.Status, e.Detail)
	}
	return fmt.Sprintf("backend HTTP %d", e.Status)
}

// do performs one request. A non-empty token goes out as the backend's
// `Authorization: Token <t>` header scheme. out may be nil.
func (c *Client) do(ctx context.Context, method, path, token string, query url.Values, body, out interface{}) error {
	u := c.base + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var rdr *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "encoding request body")
		}
		rdr = bytes.NewReader(raw)
	} else {
		rdr = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, u, rdr)
	if err != nil {
		return errors.Wrap(err, "building request")
	}
	req = req.WithContext(ctx)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Token "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrapf(err, "%s %s", method, path)
	}
	defer resp.Body.Close()

	raw, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrapf(err, "reading %s %s response", method, path)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &Error{Status: resp.StatusCode, Detail: errorDetail(raw)}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return errors.Wrapf(err, "decoding %s %s response", method, path)
	}
	return nil
}

// getList fetches a listing and feeds each raw record to `each`, unwrapping
// the pagination envelope when present. Records the callback cannot decode
// are its business to skip.
func (c *Client) getList(ctx context.Context, path, token string, query url.Values, each func(json.RawMessage)) error {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, path, token, query, nil, &raw); err != nil {
		return err
	}
	for _, item := range unwrapList(raw) {
		each(item)
	}
	return nil
}

// unwrapList accepts a bare JSON array or a `{"results": [...]}` envelope
// and returns the raw records. Anything else yields an empty list.
func unwrapList(raw json.RawMessage) []json.RawMessage {
	data := bytes.TrimSpace(raw)
	if len(data) > 0 && data[0] == '{' {
		var env struct {
			Results json.RawMessage `json:"results"`
		}
		if err := json.Unmarshal(data, &env); err == nil && env.Results != nil {
			data = bytes.TrimSpace(env.Results)
		}
	}
	if len(data) == 0 || data[0] != '[' {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil
	}
	return items
}

// errorDetail pulls the human message out of a DRF error body.
func errorDetail(raw []byte) string {
	var body struct {
		Detail string `json:"detail"`
		Error  string `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}
	if body.Detail != "" {
		return body.Detail
	}
	return body.Error
}
