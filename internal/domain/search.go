package domain

import (
	"cmp"
	"math"
	"net/url"
	"slices"
	"strings"
)

const (
	// Scoring weights
	ScoreExactMatch     = 100.0
	ScorePrefixMatch    = 75.0
	ScoreSubstringMatch = 50.0
	ScoreFuzzyMatch     = 25.0

	// Position bonus (earlier is better)
	ScorePositionBonus = 10.0
)

// Field weights applied to the per-field score.
const (
	weightTitle       = 1.0
	weightHost        = 0.8
	weightCategory    = 0.5
	weightDescription = 0.3
)

// SearchHit is a matching bookmark with its score.
type SearchHit struct {
	Bookmark Bookmark `json:"bookmark"`
	Score    float64  `json:"score"`
}

// Search ranks list against query. Ties keep the order of list, so callers
// pass it in canonical order. limit <= 0 returns every hit.
func Search(query string, list []Bookmark, limit int) []SearchHit {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return []SearchHit{}
	}

	hits := make([]SearchHit, 0, len(list))
	for _, b := range list {
		if score := ScoreBookmark(query, b); score > 0 {
			hits = append(hits, SearchHit{Bookmark: b, Score: score})
		}
	}

	slices.SortStableFunc(hits, func(a, b SearchHit) int {
		return cmp.Compare(b.Score, a.Score)
	})
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	return hits
}

// ScoreBookmark returns the best weighted score over title, host,
// category and description. query must already be lower-cased.
func ScoreBookmark(query string, b Bookmark) float64 {
	best := weightTitle * scoreText(query, strings.ToLower(b.Title))
	best = max(best, weightHost*scoreHost(query, b.URL))
	best = max(best, weightCategory*scoreText(query, strings.ToLower(b.Category)))
	best = max(best, weightDescription*scoreText(query, strings.ToLower(b.Description)))
	return best
}

func scoreText(query, text string) float64 {
	if query == "" || text == "" {
		return 0.0
	}

	// Exact match (highest score)
	if query == text {
		return ScoreExactMatch
	}

	// Prefix match
	if strings.HasPrefix(text, query) {
		return ScorePrefixMatch
	}

	// Substring match
	if index := strings.Index(text, query); index >= 0 {
		// Earlier substring matches get higher score
		substringBonus := ScorePositionBonus * (1.0 - float64(index)/float64(len(text)))
		return ScoreSubstringMatch + substringBonus
	}

	// Every query word appears somewhere
	if words := strings.Fields(query); len(words) > 1 {
		allMatch := true
		for _, word := range words {
			if !strings.Contains(text, word) {
				allMatch = false
				break
			}
		}
		if allMatch {
			return ScoreFuzzyMatch
		}
	}

	if similarity := calculateSimilarity(query, text); similarity > 0.5 {
		return ScoreFuzzyMatch * similarity
	}
	return 0.0
}

// scoreHost matches query against each DNS label of the URL host, giving
// a bonus to leading labels: "git" scores higher on git.example.com than
// on example.git.io.
func scoreHost(query, rawURL string) float64 {
	u, err := url.Parse(rawURL)
	if err != nil {
		return 0.0
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	if host == "" {
		return 0.0
	}
	if query == host {
		return ScoreExactMatch + ScorePositionBonus
	}

	best := 0.0
	for position, label := range strings.Split(host, ".") {
		score := scoreText(query, label)
		if score > 0 {
			score += calculatePositionBonus(position)
		}
		best = max(best, score)
	}
	return best
}

// calculatePositionBonus gives bonus for earlier positions
func calculatePositionBonus(position int) float64 {
	return ScorePositionBonus * math.Exp(-float64(position)*0.3)
}

// calculateSimilarity is the share of query characters found in text.
func calculateSimilarity(query, text string) float64 {
	if query == "" || text == "" {
		return 0.0
	}

	runes := []rune(query)
	matches := 0
	for _, c := range runes {
		if strings.ContainsRune(text, c) {
			matches++
		}
	}
	return float64(matches) / float64(len(runes))
}
