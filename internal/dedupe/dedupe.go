// Package dedupe reduces an ordered batch of contact records to a
// deduplicated batch using exact email identity and fuzzy name matching.
package dedupe

import (
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/agext/levenshtein"

	"github.com/sells-group/crm-cleaner/internal/model"
)

// nameSimilarityThreshold is the token-sort score (0-100) at or above which
// two email-less records are considered the same contact. Fixed policy, not
// tunable per call.
const nameSimilarityThreshold = 90

// Deduplicate returns the order-preserving subsequence of records that
// survive duplicate removal. Email is the strong identity key: the first
// record with a given normalized email wins. Records without an email are
// fuzzy-matched by name against every record kept so far.
//
// Cost is quadratic in the number of email-less records, which is fine for
// per-job batches in the low thousands. If volumes grow materially this
// needs blocking by name prefix.
func Deduplicate(records []model.Record) []model.Record {
	seen := make(map[string]struct{}, len(records))
	keep := make([]model.Record, 0, len(records))

	for _, rec := range records {
		email := strings.ToLower(strings.TrimSpace(rec.Get("email")))
		if email != "" {
			if _, dup := seen[email]; dup {
				continue
			}
			seen[email] = struct{}{}
			keep = append(keep, rec)
			continue
		}

		if isNearDuplicate(rec.Get("name"), keep) {
			continue
		}
		keep = append(keep, rec)
	}

	return keep
}

// isNearDuplicate reports whether name fuzzy-matches the name of any kept
// record. Empty names never match anything: two blank names are not a
// meaningful duplicate signal.
func isNearDuplicate(name string, keep []model.Record) bool {
	if strings.TrimSpace(name) == "" {
		return false
	}
	for _, kept := range keep {
		other := kept.Get("name")
		if strings.TrimSpace(other) == "" {
			continue
		}
		if TokenSortRatio(name, other) >= nameSimilarityThreshold {
			return true
		}
	}
	return false
}

// TokenSortRatio scores the similarity of two strings on a 0-100 scale,
// insensitive to case, punctuation, and word order: both inputs are
// lowercased, stripped to alphanumeric tokens, sorted, and rejoined before
// Levenshtein comparison. "Smith, John" vs "john smith" scores 100; only
// real spelling distance lowers the score.
func TokenSortRatio(a, b string) int {
	sa := tokenSort(a)
	sb := tokenSort(b)
	if sa == "" && sb == "" {
		return 100
	}
	sim := levenshtein.Similarity(sa, sb, levenshtein.NewParams())
	return int(math.Round(sim * 100))
}

func tokenSort(s string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(r)
		} else {
			sb.WriteRune(' ')
		}
	}
	tokens := strings.Fields(sb.String())
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}
