package bridge

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// ServeOnce reads one request envelope from in, dispatches it to handler and
// writes the response envelope to out. It is the child's side of the
// protocol: a parent spawns this binary, writes one envelope and collects one
// back.
func ServeOnce(handler http.Handler, in io.Reader, out io.Writer) error {
	var env Request
	if err := json.NewDecoder(in).Decode(&env); err != nil {
		return fmt.Errorf("decode request envelope: %w", err)
	}

	req, err := requestFromEnvelope(env)
	if err != nil {
		return err
	}

	rec := &responseCapture{header: make(http.Header), status: http.StatusOK}
	handler.ServeHTTP(rec, req)

	headers := make(map[string]string, len(rec.header))
	for name := range rec.header {
		headers[name] = rec.header.Get(name)
	}
	resp := Response{
		StatusCode: rec.status,
		Headers:    headers,
		Body:       rec.body.String(),
	}
	if err := json.NewEncoder(out).Encode(resp); err != nil {
		return fmt.Errorf("encode response envelope: %w", err)
	}
	return nil
}

func requestFromEnvelope(env Request) (*http.Request, error) {
	target := env.Path
	if target == "" {
		target = "/"
	}
	if len(env.QueryStringParameters) > 0 {
		q := url.Values{}
		for name, value := range env.QueryStringParameters {
			q.Set(name, value)
		}
		target += "?" + q.Encode()
	}

	method := strings.ToUpper(env.HTTPMethod)
	if method == "" {
		method = http.MethodGet
	}
	req, err := http.NewRequest(method, target, strings.NewReader(env.Body))
	if err != nil {
		return nil, fmt.Errorf("build request from envelope: %w", err)
	}
	for name, value := range env.Headers {
		req.Header.Set(name, value)
	}
	return req, nil
}

// responseCapture collects a handler's response so it can be re-encoded as an
// envelope.
type responseCapture struct {
	header http.Header
	body   bytes.Buffer
	status int
}

func (c *responseCapture) Header() http.Header { return c.header }

func (c *responseCapture) Write(p []byte) (int, error) { return c.body.Write(p) }

func (c *responseCapture) WriteHeader(status int) { c.status = status }
