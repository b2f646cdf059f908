package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/trace"

	"searchtool/internal/domain"
	"searchtool/internal/infra/tracer"
)

// maxQueryLength bounds the query a caller may send to the provider.
const maxQueryLength = 2048

// NoResults is returned when the provider answered but nothing usable came back.
const NoResults = "No results found."

// Searcher runs a query and returns formatted text. It never fails; provider
// problems come back as degradation messages.
type Searcher interface {
	Search(ctx context.Context, req domain.QueryRequest) string
}

// SearchTool exposes one search variant as a tool.
type SearchTool struct {
	name        string
	description string
	variant     domain.Variant
	searcher    Searcher
	logger      *slog.Logger
}

// NewWebSearchTool returns the web_search tool.
func NewWebSearchTool(s Searcher, logger *slog.Logger) *SearchTool {
	return &SearchTool{
		name:        "web_search",
		description: "Search the web and return the top results as title, link and snippet blocks.",
		variant:     domain.VariantWeb,
		searcher:    s,
		logger:      logger,
	}
}

// NewNewsSearchTool returns the news_search tool.
func NewNewsSearchTool(s Searcher, logger *slog.Logger) *SearchTool {
	return &SearchTool{
		name:        "news_search",
		description: "Search recent news articles and return the top results as title, link and snippet blocks.",
		variant:     domain.VariantNews,
		searcher:    s,
		logger:      logger,
	}
}

func (t *SearchTool) Name() string        { return t.name }
func (t *SearchTool) Description() string { return t.description }

func (t *SearchTool) Schema() domain.ToolSchema {
	return domain.ToolSchema{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters: json.RawMessage(fmt.Sprintf(`{
			"type": "object",
			"properties": {
				"query": {"type": "string", "minLength": 1, "maxLength": %d, "description": "The search query"}
			},
			"required": ["query"],
			"additionalProperties": false
		}`, maxQueryLength)),
	}
}

type searchParams struct {
	Query string `json:"query"`
}

func (t *SearchTool) Execute(ctx context.Context, params json.RawMessage) (*domain.ToolResult, error) {
	return Execute(ctx, "tool."+t.name, t.logger, params,
		func(ctx context.Context, span trace.Span, p searchParams) (string, error) {
			if err := ValidateAll(
				RequireField("query", p.Query),
				ValidateMaxLength("query", p.Query, maxQueryLength),
			); err != nil {
				return "", err
			}
			span.SetAttributes(tracer.StringAttr("tool.query", p.Query))

			out := t.searcher.Search(ctx, domain.QueryRequest{Query: p.Query, Variant: t.variant})
			if out == "" {
				return NoResults, nil
			}
			return out, nil
		},
	)
}
