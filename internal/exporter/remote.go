package exporter

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-resty/resty/v2"

	"github.com/GoSim-25-26J-441/docforge-backend/internal/auth"
	"github.com/GoSim-25-26J-441/docforge-backend/internal/logging"
	"github.com/GoSim-25-26J-441/docforge-backend/internal/metrics"
)

// RemoteRenderer posts a Request to an external rendering service and
// returns the binary it produces.
type RemoteRenderer struct {
	format  string
	baseURL string
	http    *resty.Client
}

func NewRemoteRenderer(format, baseURL string, timeout time.Duration) *RemoteRenderer {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &RemoteRenderer{
		format:  format,
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    resty.New().SetTimeout(timeout),
	}
}

func (r *RemoteRenderer) Format() string { return r.format }

func (r *RemoteRenderer) Export(ctx context.Context, s auth.Session, req Request) (out []byte, err error) {
	start := time.Now()
	defer func() { metrics.RecordExport(time.Since(start), err) }()

	url := fmt.Sprintf("%s/render/%s", r.baseURL, r.format)
	rq := r.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", MediaType(r.format)).
		SetBody(req)
	if s.Credential != "" {
		rq.SetAuthToken(s.Credential)
	}
	if rid := logging.RequestID(ctx); rid != "" {
		rq.SetHeader("X-Request-Id", rid)
	}

	rr, err := rq.Post(url)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", r.format, err)
	}
	if rr.IsError() {
		return nil, fmt.Errorf("render %s: %s; body: %s", r.format, rr.Status(), abbreviate(rr.String(), 500))
	}

	body := rr.Body()
	if err := ValidatePackage(body); err != nil {
		return nil, fmt.Errorf("render %s: %w", r.format, err)
	}

	logging.NewLogger(ctx).LogInfof("export", "rendered %s with %d sections (%d bytes)", r.format, len(req.Sections), len(body))
	return body, nil
}

func abbreviate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := n - 3
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
