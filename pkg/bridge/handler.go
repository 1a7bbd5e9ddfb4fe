package bridge

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os/exec"
	"strings"

	"github.com/rs/zerolog"

	"github.com/de-tools/ledger-atlas/pkg/models/api"
)

// Handler forwards each request to an external analyzer process. The request
// becomes a JSON envelope on the child's stdin; the child's stdout must hold
// one response envelope. A nonzero exit surfaces the child's stderr as the
// failure reason.
type Handler struct {
	command string
	args    []string
}

func NewHandler(command string, args ...string) *Handler {
	return &Handler{command: command, args: args}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	env, err := envelopeFromRequest(r)
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "unreadable request body")
		return
	}
	payload, err := json.Marshal(env)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	cmd := exec.CommandContext(ctx, h.command, h.args...)
	cmd.Stdin = bytes.NewReader(payload)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		reason := strings.TrimSpace(stderr.String())
		if reason == "" {
			reason = err.Error()
		}
		logger.Error().Err(err).Str("command", h.command).Str("stderr", reason).Msg("analyzer process failed")
		writeDetail(w, http.StatusBadGateway, fmt.Sprintf("analyzer process failed: %s", reason))
		return
	}

	var resp Response
	if err := json.Unmarshal(stdout.Bytes(), &resp); err != nil || resp.StatusCode < 100 {
		logger.Error().Err(err).Str("command", h.command).Msg("analyzer returned an unreadable envelope")
		writeDetail(w, http.StatusBadGateway, "analyzer returned an unreadable response")
		return
	}

	for name, value := range resp.Headers {
		w.Header().Set(name, value)
	}
	w.WriteHeader(resp.StatusCode)
	_, _ = io.WriteString(w, resp.Body)
}

func envelopeFromRequest(r *http.Request) (Request, error) {
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		return Request{}, err
	}

	headers := make(map[string]string, len(r.Header))
	for name := range r.Header {
		headers[name] = r.Header.Get(name)
	}
	query := make(map[string]string)
	for name, values := range r.URL.Query() {
		if len(values) > 0 {
			query[name] = values[0]
		}
	}

	return Request{
		HTTPMethod:            r.Method,
		Path:                  r.URL.Path,
		Headers:               headers,
		Body:                  string(raw),
		QueryStringParameters: query,
	}, nil
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(api.Error{Detail: detail})
}
