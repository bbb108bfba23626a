package source

import (
	"strings"

	"github.com/bookfetch/yes24-metadata/internal/fetcher"
	"github.com/bookfetch/yes24-metadata/internal/metadata"
)

// BuildQuery constructs the search URL for a request. A valid ISBN wins
// outright; otherwise the query is the title tokens plus the first author's
// tokens, EUC-KR percent-encoded and joined with "+".
func (s *Source) BuildQuery(req Request) (string, error) {
	if isbn := metadata.ValidateISBN(req.Identifiers[metadata.IDISBN]); isbn != "" {
		return SearchURL + "&query=" + isbn, nil
	}

	var tokens []string
	for _, t := range strings.Fields(req.Title) {
		tokens = append(tokens, quoteEUCKR(t))
	}
	if len(req.Authors) > 0 {
		for _, t := range strings.Fields(req.Authors[0]) {
			tokens = append(tokens, quoteEUCKR(t))
		}
	}
	if len(tokens) == 0 {
		return "", ErrInsufficientMetadata
	}
	return SearchURL + "&query=" + strings.Join(tokens, "+"), nil
}

// quoteEUCKR percent-encodes a token's EUC-KR byte representation. Tokens
// the encoding cannot express fall back to their UTF-8 bytes.
func quoteEUCKR(token string) string {
	b, err := fetcher.EncodeEUCKR(token)
	if err != nil {
		b = []byte(token)
	}

	const upperhex = "0123456789ABCDEF"
	var out strings.Builder
	for _, c := range b {
		if isQuerySafe(c) {
			out.WriteByte(c)
			continue
		}
		out.WriteByte('%')
		out.WriteByte(upperhex[c>>4])
		out.WriteByte(upperhex[c&0xf])
	}
	return out.String()
}

func isQuerySafe(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	case c == '_' || c == '.' || c == '-' || c == '/':
		return true
	}
	return false
}
