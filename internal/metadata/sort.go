package metadata

import (
	"sort"
	"strings"
)

// coverBonus is how much a record with a full-size cover improves its
// effective relevance.
const coverBonus = 5

// QueryHints carries the caller's original title/authors so results can be
// ordered by how well they match.
type QueryHints struct {
	Title   string
	Authors []string
}

// SortByRelevance orders records in place: exact title matches first, then
// ascending effective relevance, then title as a tiebreaker. Records that
// found a cover sort ahead of equally relevant records that did not.
func SortByRelevance(recs []*Record, hints QueryHints) {
	wantTitle := normalizeTitle(hints.Title)
	sort.SliceStable(recs, func(i, j int) bool {
		a, b := recs[i], recs[j]
		if wantTitle != "" {
			ae := normalizeTitle(a.Title) == wantTitle
			be := normalizeTitle(b.Title) == wantTitle
			if ae != be {
				return ae
			}
		}
		if len(hints.Authors) > 0 {
			am := hasAuthor(a, hints.Authors[0])
			bm := hasAuthor(b, hints.Authors[0])
			if am != bm {
				return am
			}
		}
		ar, br := effectiveRelevance(a), effectiveRelevance(b)
		if ar != br {
			return ar < br
		}
		return a.Title < b.Title
	})
}

func hasAuthor(r *Record, want string) bool {
	want = normalizeTitle(want)
	for _, a := range r.Authors {
		if normalizeTitle(a) == want {
			return true
		}
	}
	return false
}

func effectiveRelevance(r *Record) int {
	rel := r.Relevance
	if r.CoverURL != "" {
		rel -= coverBonus
	}
	return rel
}

func normalizeTitle(t string) string {
	return strings.Join(strings.Fields(strings.ToLower(t)), " ")
}
