package domain

import "fmt"

// Variant selects one of the two search modes. Variants differ only in
// endpoint, response field and wording.
type Variant int

const (
	VariantWeb Variant = iota
	VariantNews
)

func (v Variant) String() string {
	switch v {
	case VariantWeb:
		return "web"
	case VariantNews:
		return "news"
	default:
		return fmt.Sprintf("variant(%d)", int(v))
	}
}

// ResultField is the key of the result array in the provider payload.
func (v Variant) ResultField() string {
	if v == VariantNews {
		return "news"
	}
	return "organic"
}

// ParseVariant accepts "web" or "news".
func ParseVariant(s string) (Variant, error) {
	switch s {
	case "web":
		return VariantWeb, nil
	case "news":
		return VariantNews, nil
	default:
		return 0, fmt.Errorf("%w: unknown variant %q (want: web, news)", ErrInvalidInput, s)
	}
}

// SearchResult is a single provider hit. All fields are required.
type SearchResult struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

// SearchResponse holds hits in provider order.
type SearchResponse struct {
	Items []SearchResult `json:"items"`
}

// QueryRequest is the input of a single search invocation.
type QueryRequest struct {
	Query   string
	Variant Variant
}
