package imagestore

import "sort"

// evictionPercent is the share of existing entries reclaimed per eviction.
const evictionPercent = 20

// needsEviction reports whether adding one entry of size incoming to a store
// holding count entries and bytes bytes would exceed the limits.
func needsEviction(count int, bytes, incoming int64, l Limits) bool {
	return count+1 > l.MaxItems || bytes+incoming > l.MaxBytes
}

// evictionCount returns how many of count entries to evict: 20% rounded up,
// at least one, never more than count.
func evictionCount(count int) int {
	if count <= 0 {
		return 0
	}
	n := (count*evictionPercent + 99) / 100
	return max(1, min(n, count))
}

// candidate is an entry considered for eviction.
type candidate struct {
	id  string
	at  int64  // write time, unix nanoseconds
	seq uint64 // insertion order, breaks timestamp ties
}

// selectVictims returns the ids of the n oldest candidates, skipping keep.
func selectVictims(cands []candidate, n int, keep string) []string {
	sort.Slice(cands, func(i, j int) bool {
		if cands[i].at != cands[j].at {
			return cands[i].at < cands[j].at
		}
		return cands[i].seq < cands[j].seq
	})
	victims := make([]string, 0, n)
	for _, c := range cands {
		if len(victims) == n {
			break
		}
		if c.id == keep {
			continue
		}
		victims = append(victims, c.id)
	}
	return victims
}
