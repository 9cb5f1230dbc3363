package grid

import "math/rand/v2"

// RandomPosition returns a uniformly chosen position that is valid for the
// given section sizes and not in excluded. Every remaining (section, item)
// pair is equally likely regardless of how items are spread over sections.
//
// It returns false when sizes is empty, any section is empty, or excluded
// holds at least as many entries as there are items. Excluded entries that
// fall outside the grid still count toward that limit.
func RandomPosition(r *rand.Rand, sizes []int, excluded map[Position]struct{}) (Position, bool) {
	if len(sizes) == 0 {
		return Position{}, false
	}

	total := 0
	for _, n := range sizes {
		if n <= 0 {
			return Position{}, false
		}
		total += n
	}
	if len(excluded) >= total {
		return Position{}, false
	}

	candidates := make([]Position, 0, total-len(excluded))
	for section, n := range sizes {
		for item := 0; item < n; item++ {
			pos := Position{Section: section, Item: item}
			if _, skip := excluded[pos]; skip {
				continue
			}
			candidates = append(candidates, pos)
		}
	}
	if len(candidates) == 0 {
		return Position{}, false
	}
	if r == nil {
		return candidates[rand.IntN(len(candidates))], true
	}
	return candidates[r.IntN(len(candidates))], true
}
