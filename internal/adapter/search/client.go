package search

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"go.opentelemetry.io/otel/trace"

	"searchtool/internal/domain"
	"searchtool/internal/infra/config"
	"searchtool/internal/infra/tracer"
)

// Client queries the search provider with bounded retries. It holds no
// mutable state and is safe for concurrent use.
type Client struct {
	cfg     config.SearchConfig
	http    *http.Client
	sleep   Sleeper
	maxBody int64
	logger  *slog.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the pooled default HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithSleeper replaces the backoff sleeper.
func WithSleeper(s Sleeper) Option {
	return func(c *Client) { c.sleep = s }
}

// NewClient validates cfg and builds a client. A missing API key is a setup
// error, not a runtime degradation.
func NewClient(cfg config.SearchConfig, logger *slog.Logger, opts ...Option) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, domain.WrapOp("search.NewClient", fmt.Errorf("%w: api key is not configured", domain.ErrInvalidInput))
	}
	if strings.HasPrefix(cfg.APIKey, "enc:") {
		return nil, domain.WrapOp("search.NewClient", fmt.Errorf("%w: api key is still encrypted (set SEARCHTOOL_CONFIG_KEY)", domain.ErrInvalidInput))
	}
	if cfg.TopN < 1 {
		return nil, domain.WrapOp("search.NewClient", fmt.Errorf("%w: top_n must be >= 1", domain.ErrInvalidInput))
	}
	if cfg.MaxAttempts < 1 {
		return nil, domain.WrapOp("search.NewClient", fmt.Errorf("%w: max_attempts must be >= 1", domain.ErrInvalidInput))
	}
	if cfg.WebURL == "" {
		cfg.WebURL = config.DefaultWebURL
	}
	if cfg.NewsURL == "" {
		cfg.NewsURL = config.DefaultNewsURL
	}

	c := &Client{
		cfg:     cfg,
		sleep:   SleepContext,
		maxBody: maxResponseBody,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = NewHTTPClient(cfg)
	}
	return c, nil
}

// WebSearch runs a general web search.
func (c *Client) WebSearch(ctx context.Context, query string) string {
	return c.Search(ctx, domain.QueryRequest{Query: query, Variant: domain.VariantWeb})
}

// NewsSearch runs a news search.
func (c *Client) NewsSearch(ctx context.Context, query string) string {
	return c.Search(ctx, domain.QueryRequest{Query: query, Variant: domain.VariantNews})
}

type requestBody struct {
	Q string `json:"q"`
}

// Result is the full outcome of one Search call.
type Result struct {
	// Text is what Search returns: formatted result blocks, "" or a
	// degradation message.
	Text      string
	Kind      Kind
	Status    int
	Attempts  int
	Results   int
	Truncated bool
}

// Degraded reports whether the provider refused the request or never
// answered, so Text is a degradation message or empty for lack of a response.
func (r Result) Degraded() bool { return r.Kind != KindSuccess }

// Search runs req and returns formatted result blocks, "" when nothing
// usable came back, or a degradation message when the provider refused the
// request. It never fails for network or HTTP errors.
func (c *Client) Search(ctx context.Context, req domain.QueryRequest) string {
	return c.Lookup(ctx, req).Text
}

// Lookup is Search with the outcome kind and counters alongside the text.
func (c *Client) Lookup(ctx context.Context, req domain.QueryRequest) Result {
	variant := req.Variant.String()
	log := c.logger.With("invocation", ulid.Make().String(), "variant", variant)

	ctx, span := tracer.StartSpan(ctx, "search."+variant,
		trace.WithAttributes(tracer.StringAttr("search.variant", variant)),
	)
	defer span.End()

	if strings.TrimSpace(req.Query) == "" {
		log.Warn("search skipped: empty query")
		tracer.SetOK(span)
		return Result{Kind: KindSuccess}
	}

	body, err := json.Marshal(requestBody{Q: req.Query})
	if err != nil {
		tracer.RecordError(span, err)
		log.Error("encode search request", "error", err)
		return Result{Kind: KindTransportFailure}
	}
	endpoint := c.endpoint(req.Variant)

	sleep := func(ctx context.Context, d time.Duration) error {
		log.Info("retrying search after backoff", "delay", d)
		return c.sleep(ctx, d)
	}

	outcome, attempts := Retry(ctx, func(ctx context.Context, n int) Outcome {
		o := c.attempt(ctx, endpoint, body)
		if o.Kind != KindSuccess {
			log.Debug("search attempt failed", "attempt", n, "outcome", o.String())
		}
		return o
	}, c.cfg.MaxAttempts, c.cfg.InitialBackoff, sleep)

	span.SetAttributes(
		tracer.IntAttr("search.attempts", attempts),
		tracer.StringAttr("search.outcome", outcome.Kind.String()),
	)
	return c.finish(log, span, req.Variant, outcome, attempts)
}

func (c *Client) endpoint(v domain.Variant) string {
	if v == domain.VariantNews {
		return c.cfg.NewsURL
	}
	return c.cfg.WebURL
}

// attempt performs one request under the per-attempt timeout.
func (c *Client) attempt(ctx context.Context, endpoint string, body []byte) Outcome {
	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}
	resp, err := postJSON(ctx, c.http, endpoint, c.cfg.APIKey, body, c.maxBody)
	o := Classify(resp.status, err)
	if o.Kind == KindSuccess {
		o.Payload = resp.body
		o.Truncated = resp.truncated
	}
	return o
}

// finish turns the terminal outcome into the caller-facing result.
func (c *Client) finish(log *slog.Logger, span trace.Span, v domain.Variant, o Outcome, attempts int) Result {
	res := Result{Kind: o.Kind, Status: o.Status, Attempts: attempts}

	switch o.Kind {
	case KindSuccess:
		resp := Extract(o.Payload, v.ResultField(), c.cfg.TopN)
		res.Results = len(resp.Items)
		res.Text = Render(resp)
		span.SetAttributes(tracer.IntAttr("search.results", res.Results))
		if o.Truncated {
			// A cut-off body rarely decodes; never report it as a clean empty answer.
			res.Truncated = true
			err := fmt.Errorf("%w: response body exceeds %d bytes", domain.ErrProviderError, c.maxBody)
			span.SetAttributes(tracer.BoolAttr("search.truncated", true))
			tracer.RecordError(span, err)
			log.Warn("search response truncated",
				"limit", c.maxBody, "results", res.Results, "attempts", attempts, "code", domain.ErrorCodeOf(err))
			return res
		}
		tracer.SetOK(span)
		log.Info("search completed", "results", res.Results, "attempts", attempts)

	case KindAuthOrRateLimited:
		err := fmt.Errorf("%w: status %d", domain.ErrAuthInvalid, o.Status)
		tracer.RecordError(span, err)
		log.Warn("search rejected: api key invalid or rate-limited", "status", o.Status, "code", domain.ErrorCodeOf(err))
		res.Text = authMessage(v, o.Status)

	case KindFatalHTTP, KindRetryable:
		err := fmt.Errorf("%w: status %d", domain.ErrProviderError, o.Status)
		tracer.RecordError(span, err)
		log.Warn("search failed", "status", o.Status, "attempts", attempts, "code", domain.ErrorCodeOf(err))
		res.Text = failedMessage(v, o.Status)

	default:
		err := transportError(o.Reason)
		tracer.RecordError(span, err)
		log.Warn("search unavailable: no response from provider",
			"reason", o.Reason, "attempts", attempts, "code", domain.ErrorCodeOf(err))
	}
	return res
}

func transportError(reason string) error {
	if reason == "timeout" {
		return fmt.Errorf("%w: %w", domain.ErrTimeout, domain.ErrTransport)
	}
	return fmt.Errorf("%w: %s", domain.ErrTransport, reason)
}
