package importer

import (
	"math"

	"github.com/google/uuid"
)

// FuzzyThreshold is the fixed acceptance threshold for fuzzy duplicate
// matches. A best candidate scoring below it is reported as no match.
// This is a design parameter, not a computed value.
const FuzzyThreshold = 0.72

// MatchKind distinguishes how a duplicate was detected.
type MatchKind string

const (
	// MatchExact means the normalized titles are identical.
	MatchExact MatchKind = "exact"

	// MatchFuzzy means the best Dice score met the acceptance threshold.
	MatchFuzzy MatchKind = "fuzzy"
)

// Candidate is one existing entity a title can be matched against. The
// pool is always pre-scoped to a single entity kind and provenance
// source before resolution.
type Candidate struct {
	ID    uuid.UUID
	Title string
}

// DuplicateMatch describes the best existing record found for an
// imported title.
type DuplicateMatch struct {
	EntityKind EntityKind `json:"entity_kind"`
	ID         uuid.UUID  `json:"id"`
	Title      string     `json:"title"`
	Score      float64    `json:"score"`
	Kind       MatchKind  `json:"kind"`
}

// FindDuplicate resolves a title against a candidate pool. An exact
// normalized-title match always wins with score 1.0 (first such
// candidate; ties carry identical scores so order is insignificant).
// Otherwise the best fuzzy score is kept and reported when it reaches
// FuzzyThreshold, rounded to two decimals. Returns nil when nothing
// qualifies.
func FindDuplicate(kind EntityKind, title string, candidates []Candidate) *DuplicateMatch {
	normalized := Normalize(title)
	if normalized == "" {
		return nil
	}

	for _, c := range candidates {
		if Normalize(c.Title) == normalized {
			return &DuplicateMatch{
				EntityKind: kind,
				ID:         c.ID,
				Title:      c.Title,
				Score:      1.0,
				Kind:       MatchExact,
			}
		}
	}

	var best *Candidate
	bestScore := 0.0
	for i := range candidates {
		score := Similarity(title, candidates[i].Title)
		if score > bestScore {
			best = &candidates[i]
			bestScore = score
		}
	}

	if best == nil || bestScore < FuzzyThreshold {
		return nil
	}

	return &DuplicateMatch{
		EntityKind: kind,
		ID:         best.ID,
		Title:      best.Title,
		Score:      math.Round(bestScore*100) / 100,
		Kind:       MatchFuzzy,
	}
}
