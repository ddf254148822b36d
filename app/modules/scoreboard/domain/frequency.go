package scoreboarddomain

// FrequencyMap maps a member id to the number of times it was credited
// within one batch of attributions.
type FrequencyMap map[string]int

// FrequencyScore counts the occurrences of every id in ids.
func FrequencyScore(ids []string) FrequencyMap {
	freq := make(FrequencyMap, len(ids))
	for _, id := range ids {
		freq[id]++
	}
	return freq
}

// Equal reports whether both maps hold the same keys with the same counts.
// A nil map equals an empty one.
func (f FrequencyMap) Equal(other FrequencyMap) bool {
	if len(f) != len(other) {
		return false
	}
	for id, count := range f {
		if n, ok := other[id]; !ok || n != count {
			return false
		}
	}
	return true
}

// Total returns the sum of all counts.
func (f FrequencyMap) Total() int {
	total := 0
	for _, count := range f {
		total += count
	}
	return total
}
