// Package distribute splits a requested item count across categories with
// a deterministic remainder policy.
package distribute

import "fmt"

// Split divides total across categories. Each category receives
// total/len(categories); the remainder goes to the earliest categories in
// input order, one unit each. The returned counts always sum to total and
// differ by at most 1.
func Split(total int, categories []string) (map[string]int, error) {
	if total < 0 {
		return nil, fmt.Errorf("total must be non-negative, got %d", total)
	}
	if len(categories) == 0 {
		return nil, fmt.Errorf("at least one category is required")
	}

	seen := make(map[string]struct{}, len(categories))
	for _, c := range categories {
		if _, dup := seen[c]; dup {
			return nil, fmt.Errorf("duplicate category %q", c)
		}
		seen[c] = struct{}{}
	}

	base := total / len(categories)
	remainder := total % len(categories)

	distribution := make(map[string]int, len(categories))
	for i, c := range categories {
		count := base
		if i < remainder {
			count++
		}
		distribution[c] = count
	}

	return distribution, nil
}
