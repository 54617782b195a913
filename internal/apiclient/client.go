// Package apiclient is the REST client for the marketplace backend API.
// Responses are decoded through the normalize package so every envelope
// the backend uses is accepted; shapes it does not recognise fail with a
// *normalize.DecodeError.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"souqnest/internal/config"
	"souqnest/internal/domain"
	applog "souqnest/internal/log"
)

// maxBody caps how much of a response is read.
const maxBody = 8 << 20

type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	token      string
}

func New(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = config.DefaultAPIBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

// WithToken returns a copy of c that sends token as a bearer credential.
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.token = token
	return &cp
}

// Params builds query parameters, dropping empty values.
func Params(kv ...string) url.Values {
	v := url.Values{}
	for i := 0; i+1 < len(kv); i += 2 {
		if strings.TrimSpace(kv[i+1]) != "" {
			v.Set(kv[i], kv[i+1])
		}
	}
	return v
}

func clean(q url.Values) url.Values {
	out := url.Values{}
	for k, vs := range q {
		for _, v := range vs {
			if v != "" {
				out.Add(k, v)
			}
		}
	}
	return out
}

// get issues a GET, retrying once when the backend is unreachable, timed out
// or answered with a 5xx.
func (c *Client) get(ctx context.Context, path string, q url.Values) ([]byte, error) {
	body, err := c.do(ctx, http.MethodGet, path, q, nil, "")
	if err == nil || !retryable(ctx, err) {
		return body, err
	}
	applog.Warn(nil, "api.retry", err, map[string]any{"path": path})
	return c.do(ctx, http.MethodGet, path, q, nil, "")
}

func retryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == KindNetwork || e.Kind == KindTimeout || (e.Kind == KindServer && e.Status >= 500)
}

func (c *Client) sendJSON(ctx context.Context, method, path string, payload any) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(b)
	}
	return c.do(ctx, method, path, nil, body, "application/json")
}

// sendMultipart posts fields plus files under fileField.
func (c *Client) sendMultipart(ctx context.Context, path string, fields map[string]string, fileField string, files []domain.Attachment) ([]byte, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return nil, err
		}
	}
	for _, f := range files {
		fw, err := mw.CreateFormFile(fileField, f.Name)
		if err != nil {
			return nil, err
		}
		if _, err := fw.Write(f.Data); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}
	return c.do(ctx, http.MethodPost, path, nil, &buf, mw.FormDataContentType())
}

func (c *Client) do(ctx context.Context, method, path string, q url.Values, body io.Reader, contentType string) ([]byte, error) {
	u := c.BaseURL + path
	if q = clean(q); len(q) > 0 {
		u += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		kind := KindNetwork
		var ne net.Error
		if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &ne) && ne.Timeout()) {
			kind = KindTimeout
		}
		return nil, &Error{Kind: kind, Method: method, Path: path, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, &Error{Kind: KindNetwork, Status: resp.StatusCode, Method: method, Path: path, Err: err}
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return data, nil
	}

	msg, fields := parseErrorBody(data)
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return nil, &Error{
		Kind:    kindForStatus(resp.StatusCode),
		Status:  resp.StatusCode,
		Method:  method,
		Path:    path,
		Message: msg,
		Fields:  fields,
	}
}

func escape(segment string) string { return url.PathEscape(segment) }

func pageParams(page, limit int) []string {
	var kv []string
	if page > 0 {
		kv = append(kv, "page", fmt.Sprint(page))
	}
	if limit > 0 {
		kv = append(kv, "limit", fmt.Sprint(limit))
	}
	return kv
}
