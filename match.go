package parkle

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// stopWords are generic designation words that carry no identifying
// information in a park name. They are stripped from both guesses and
// park names before matching, so a guess of "national park" alone can
// never match anything. Process-wide constant, never mutated.
var stopWords = map[string]struct{}{
	"national": {}, "park": {}, "monument": {}, "memorial": {},
	"historic": {}, "historical": {}, "site": {}, "area": {},
	"preserve": {}, "reserve": {}, "recreation": {}, "seashore": {},
	"lakeshore": {}, "river": {}, "trail": {}, "scenic": {},
	"byway": {}, "corridor": {}, "battlefield": {}, "cemetery": {},
	"cemeteries": {}, "military": {}, "state": {},
}

// Scoring constants for Resolve. An exact token match is worth far more
// than a substring match; substring matches are scaled by how much of
// the park token the guess token covers, so "glacier" inside "glaciers"
// scores higher than inside "glacierview". The per-token penalty biases
// toward shorter, more specific names.
const (
	exactMatchScore     = 100
	substringMatchScore = 50
	fuzzyMatchScore     = 75
	tokenPenalty        = 5
	minSubstringLen     = 3
)

// maxFuzzyDistance caps ResolveOptions.FuzzyDistance so a careless
// caller cannot turn every token comparison into an expensive
// high-tolerance edit distance scan.
const maxFuzzyDistance = 3

// maxResolveInputLen limits guess length to prevent algorithmic
// complexity attacks on Levenshtein distance calculations. 256 runes
// accommodates any real park name.
const maxResolveInputLen = 256

// ResolveOptions configures guess resolution behavior.
type ResolveOptions struct {
	// FuzzyDistance enables typo tolerance: a guess token within this
	// Levenshtein distance of a park token counts as matched. 0 (the
	// default) disables it; 1-2 recommended.
	FuzzyDistance int
}

// matchCandidate pairs a park with its match quality for one guess.
type matchCandidate struct {
	park       Park
	exactCount int
	score      int
}

// meaningfulTokens lowercases s, splits it on whitespace and drops
// stop words. The result may be empty.
func meaningfulTokens(s string) []string {
	fields := strings.Fields(strings.ToLower(s))
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if _, ok := stopWords[f]; !ok {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

// Resolve matches a free-text guess against a catalog of parks and
// returns the single best match, or false if nothing matches.
//
// Every meaningful guess token must match some meaningful token of the
// park name (exactly, as a substring, or within the optional fuzzy
// distance) for the park to be considered at all. Among the parks that
// qualify, the winner maximizes final score, then exact match count,
// then sorts first by name. The result is fully deterministic: it does
// not depend on catalog order or map iteration order.
//
// Resolve is pure. It never mutates or retains the catalog and is safe
// for concurrent use.
func Resolve(guess string, catalog []Park, opts ...ResolveOptions) (Park, bool) {
	normalized := strings.ToLower(strings.TrimSpace(guess))
	if len(normalized) < 2 {
		return Park{}, false
	}

	// Truncate excessively long inputs before any token comparison.
	// Use runes to avoid breaking UTF-8.
	if runes := []rune(normalized); len(runes) > maxResolveInputLen {
		normalized = string(runes[:maxResolveInputLen])
	}

	options := ResolveOptions{}
	if len(opts) > 0 {
		options = opts[0]
	}
	if options.FuzzyDistance > maxFuzzyDistance {
		options.FuzzyDistance = maxFuzzyDistance
	}

	guessTokens := meaningfulTokens(normalized)
	if len(guessTokens) == 0 {
		return Park{}, false
	}

	var candidates []matchCandidate
	for _, park := range catalog {
		parkTokens := meaningfulTokens(park.Name)
		if len(parkTokens) == 0 {
			continue
		}

		matched := 0
		exactCount := 0
		score := 0

		for _, gt := range guessTokens {
			if ok, s := matchToken(gt, parkTokens, options.FuzzyDistance); ok {
				matched++
				score += s
				if s == exactMatchScore {
					exactCount++
				}
			}
		}

		// Conjunctive rule: every meaningful guess token must have
		// matched, otherwise the park is out. This keeps a guess of
		// "bay" from matching every park with "bay" somewhere in it.
		if matched != len(guessTokens) {
			continue
		}

		candidates = append(candidates, matchCandidate{
			park:       park,
			exactCount: exactCount,
			score:      score - tokenPenalty*len(parkTokens),
		})
	}

	if len(candidates) == 0 {
		return Park{}, false
	}

	// Deterministic three-key ranking: score desc, exact matches desc,
	// name asc. Two distinct parks sharing the exact same name string
	// are ambiguous under this ordering; the catalog loader dedups by
	// location, so in practice names are unique.
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		if candidates[i].exactCount != candidates[j].exactCount {
			return candidates[i].exactCount > candidates[j].exactCount
		}
		return candidates[i].park.Name < candidates[j].park.Name
	})

	return candidates[0].park, true
}

// matchToken matches one guess token against a park's tokens and
// returns whether it matched and the score contribution. Park tokens
// are tried in order and the first qualifying one wins; exact matches
// are preferred over substring matches, which are preferred over fuzzy
// matches.
func matchToken(guessToken string, parkTokens []string, fuzzyDist int) (bool, int) {
	for _, pt := range parkTokens {
		if guessToken == pt {
			return true, exactMatchScore
		}
	}

	if len(guessToken) >= minSubstringLen {
		for _, pt := range parkTokens {
			if len(pt) >= minSubstringLen && strings.Contains(pt, guessToken) {
				return true, substringMatchScore * len(guessToken) / len(pt)
			}
		}
	}

	if fuzzyDist > 0 && len(guessToken) >= minSubstringLen {
		for _, pt := range parkTokens {
			if len(pt) >= minSubstringLen && levenshtein.ComputeDistance(guessToken, pt) <= fuzzyDist {
				return true, fuzzyMatchScore
			}
		}
	}

	return false, 0
}
