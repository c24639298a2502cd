package generation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-resty/resty/v2"
	"golang.org/x/oauth2/google"
	"golang.org/x/time/rate"

	"github.com/GoSim-25-26J-441/docforge-backend/config"
	"github.com/GoSim-25-26J-441/docforge-backend/internal/auth"
	"github.com/GoSim-25-26J-441/docforge-backend/internal/logging"
	"github.com/GoSim-25-26J-441/docforge-backend/internal/metrics"
)

var (
	ErrEmptyResponse = errors.New("generation returned no text")
	ErrEmptyOutline  = errors.New("generation returned no outline titles")
)

var adcScopes = []string{
	"https://www.googleapis.com/auth/generative-language",
	"https://www.googleapis.com/auth/cloud-platform",
}

type OutlineRequest struct {
	DocumentID   string
	Topic        string
	DocumentType string
}

type SectionRequest struct {
	SectionID          string
	SectionTitle       string
	ProjectTitle       string
	ProjectDescription string
	DocumentType       string
}

type RefineRequest struct {
	SectionID      string
	SectionTitle   string
	Instruction    string
	CurrentContent string
}

// Client talks to a generateContent style text generation API.
type Client struct {
	http    *resty.Client
	baseURL string
	model   string
	apiKey  string
	limiter *rate.Limiter
	prompts *Prompts
}

// New builds a client from cfg. With UseADC the underlying transport carries
// Application Default Credentials instead of an API key.
func New(ctx context.Context, cfg config.GenerationConfig, prompts *Prompts) (*Client, error) {
	var rc *resty.Client
	if cfg.UseADC {
		hc, err := google.DefaultClient(ctx, adcScopes...)
		if err != nil {
			return nil, fmt.Errorf("generation: default credentials: %w", err)
		}
		rc = resty.NewWithClient(hc)
	} else {
		rc = resty.New()
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	rc.SetTimeout(timeout)

	if prompts == nil {
		prompts = DefaultPrompts()
	}

	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	return &Client{
		http:    rc,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		model:   cfg.Model,
		apiKey:  cfg.APIKey,
		limiter: limiter,
		prompts: prompts,
	}, nil
}

// ProposeOutline asks for an ordered list of section titles for topic.
func (c *Client) ProposeOutline(ctx context.Context, s auth.Session, req OutlineRequest) ([]string, error) {
	name := PromptOutlineDOCX
	if req.DocumentType == "pptx" {
		name = PromptOutlinePPTX
	}
	prompt, err := c.prompts.Render(name, req)
	if err != nil {
		return nil, err
	}

	text, err := c.generate(ctx, s, "propose_outline", prompt)
	if err != nil {
		return nil, err
	}

	titles := ParseOutline(text)
	if len(titles) == 0 {
		return nil, ErrEmptyOutline
	}
	return titles, nil
}

func (c *Client) GenerateSection(ctx context.Context, s auth.Session, req SectionRequest) (string, error) {
	prompt, err := c.prompts.Render(PromptSection, req)
	if err != nil {
		return "", err
	}
	return c.generate(ctx, s, "generate_section", prompt)
}

func (c *Client) RefineSection(ctx context.Context, s auth.Session, req RefineRequest) (string, error) {
	prompt, err := c.prompts.Render(PromptRefine, req)
	if err != nil {
		return "", err
	}
	return c.generate(ctx, s, "refine_section", prompt)
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
}

func (c *Client) generate(ctx context.Context, s auth.Session, op, prompt string) (text string, err error) {
	start := time.Now()
	defer func() { metrics.RecordGeneration(time.Since(start), err) }()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("%s: rate limiter: %w", op, err)
		}
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseURL, c.model)
	var resp generateResponse
	r := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(generateRequest{Contents: []content{{Role: "user", Parts: []part{{Text: prompt}}}}}).
		SetResult(&resp)
	if c.apiKey != "" {
		r.SetHeader("x-goog-api-key", c.apiKey)
	}
	if s.UserID != "" {
		r.SetHeader("X-User-Id", s.UserID)
	}
	if rid := logging.RequestID(ctx); rid != "" {
		r.SetHeader("X-Request-Id", rid)
	}

	rr, err := r.Post(url)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if rr.IsError() {
		return "", fmt.Errorf("%s: %s; body: %s", op, rr.Status(), abbreviate(rr.String(), 500))
	}
	if resp.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("%s: prompt blocked: %s", op, resp.PromptFeedback.BlockReason)
	}

	var b strings.Builder
	if len(resp.Candidates) > 0 {
		for _, p := range resp.Candidates[0].Content.Parts {
			b.WriteString(p.Text)
		}
	}
	text = strings.TrimSpace(b.String())
	if text == "" {
		return "", fmt.Errorf("%s: %w", op, ErrEmptyResponse)
	}

	logging.NewLogger(ctx).LogInfof(op, "generated %d chars in %s", len(text), time.Since(start))
	return text, nil
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
