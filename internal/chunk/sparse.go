package chunk

import (
	"hash/fnv"
	"sort"
	"strings"
)

// SparseVector is a term-frequency vector keyed by hashed token index,
// sorted by index. The vector store applies the IDF modifier at indexing
// time, so values here are plain counts.
type SparseVector struct {
	Indices []uint32
	Values  []float32
}

// minTokenLen drops single-character runs, which carry no retrieval signal.
const minTokenLen = 2

// Tokenize lowercases the text, splits it into runs of [a-z0-9] of length
// at least two, and hashes each run to its sparse index.
func Tokenize(text string) SparseVector {
	counts := make(map[uint32]float32)
	for _, tok := range tokens(text) {
		counts[hashToken(tok)]++
	}

	indices := make([]uint32, 0, len(counts))
	for idx := range counts {
		indices = append(indices, idx)
	}
	sort.Slice(indices, func(i, j int) bool { return indices[i] < indices[j] })

	values := make([]float32, len(indices))
	for i, idx := range indices {
		values[i] = counts[idx]
	}
	return SparseVector{Indices: indices, Values: values}
}

func tokens(text string) []string {
	lower := strings.ToLower(text)
	var out []string
	start := -1
	for i := 0; i <= len(lower); i++ {
		alnum := i < len(lower) && (lower[i] >= 'a' && lower[i] <= 'z' || lower[i] >= '0' && lower[i] <= '9')
		switch {
		case alnum && start < 0:
			start = i
		case !alnum && start >= 0:
			if i-start >= minTokenLen {
				out = append(out, lower[start:i])
			}
			start = -1
		}
	}
	return out
}

// hashToken maps a token to a non-negative 31-bit FNV-1a index, the same id
// space the point-id hash uses.
func hashToken(tok string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(tok))
	return h.Sum32() & 0x7fffffff
}
