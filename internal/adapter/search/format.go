package search

import (
	"encoding/json"
	"strings"

	"searchtool/internal/domain"
)

const blockSeparator = "-----------------"

// Format renders at most topN entries of the payload's field array.
// Malformed entries are dropped; no surviving entries yields "".
func Format(payload []byte, field string, topN int) string {
	return Render(Extract(payload, field, topN))
}

// Extract reads the first topN entries of the array at field, in order,
// keeping only entries that carry string title, link and snippet values.
// An absent field, a non-array field or an undecodable payload is treated
// as an empty result set.
func Extract(payload []byte, field string, topN int) domain.SearchResponse {
	var root map[string]json.RawMessage
	if err := json.Unmarshal(payload, &root); err != nil {
		return domain.SearchResponse{}
	}
	raw, ok := root[field]
	if !ok {
		return domain.SearchResponse{}
	}
	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return domain.SearchResponse{}
	}

	if topN < 0 {
		topN = 0
	}
	if len(entries) > topN {
		entries = entries[:topN]
	}

	resp := domain.SearchResponse{Items: make([]domain.SearchResult, 0, len(entries))}
	for _, e := range entries {
		if r, ok := extractEntry(e); ok {
			resp.Items = append(resp.Items, r)
		}
	}
	return resp
}

func extractEntry(raw json.RawMessage) (domain.SearchResult, bool) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return domain.SearchResult{}, false
	}
	title, ok1 := stringField(obj, "title")
	link, ok2 := stringField(obj, "link")
	snippet, ok3 := stringField(obj, "snippet")
	if !ok1 || !ok2 || !ok3 {
		return domain.SearchResult{}, false
	}
	return domain.SearchResult{Title: title, Link: link, Snippet: snippet}, true
}

// stringField treats null and non-string values as missing.
func stringField(obj map[string]json.RawMessage, key string) (string, bool) {
	raw, ok := obj[key]
	if !ok {
		return "", false
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Render turns results into separator-terminated blocks joined by newlines.
func Render(resp domain.SearchResponse) string {
	if len(resp.Items) == 0 {
		return ""
	}
	blocks := make([]string, len(resp.Items))
	for i, r := range resp.Items {
		blocks[i] = "Title: " + r.Title + "\nLink: " + r.Link + "\nSnippet: " + r.Snippet + "\n" + blockSeparator
	}
	return strings.Join(blocks, "\n")
}
