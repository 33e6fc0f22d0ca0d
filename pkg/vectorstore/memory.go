package vectorstore

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/zenitsu0509/Employee-NLQ/pkg/models"
)

// MemoryStore is an in-process Store. Vectors live in a slice so
// insertion order survives for tie-breaking; the index map gives O(1)
// upsert by ID.
type MemoryStore struct {
	mu        sync.RWMutex
	dimension int
	entries   []memoryEntry
	index     map[string]int
	seq       uint64
}

type memoryEntry struct {
	chunk models.DocumentChunk
	norm  float64
	seq   uint64
}

// NewMemoryStore creates a store that accepts vectors of the given
// dimension.
func NewMemoryStore(dimension int) *MemoryStore {
	return &MemoryStore{
		dimension: dimension,
		index:     make(map[string]int),
	}
}

var _ Store = (*MemoryStore)(nil)

// Upsert implements Store.
func (s *MemoryStore) Upsert(ctx context.Context, chunks []models.DocumentChunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, chunk := range chunks {
		if len(chunk.Embedding) != s.dimension {
			return fmt.Errorf("%w: chunk %s has %d dimensions, store expects %d",
				ErrDimensionMismatch, chunk.ID, len(chunk.Embedding), s.dimension)
		}

		norm := vectorNorm(chunk.Embedding)
		if pos, ok := s.index[chunk.ID]; ok {
			// Replacement keeps the original insertion position.
			s.entries[pos].chunk = chunk
			s.entries[pos].norm = norm
			continue
		}

		s.seq++
		s.index[chunk.ID] = len(s.entries)
		s.entries = append(s.entries, memoryEntry{chunk: chunk, norm: norm, seq: s.seq})
	}

	return nil
}

// Search implements Store.
func (s *MemoryStore) Search(ctx context.Context, query []float32, topK int, filter *Filter) ([]SearchResult, error) {
	if len(query) != s.dimension {
		return nil, fmt.Errorf("%w: query has %d dimensions, store expects %d",
			ErrDimensionMismatch, len(query), s.dimension)
	}
	if topK <= 0 {
		return []SearchResult{}, nil
	}

	queryNorm := vectorNorm(query)

	s.mu.RLock()
	defer s.mu.RUnlock()

	type scored struct {
		result SearchResult
		seq    uint64
	}

	candidates := make([]scored, 0, len(s.entries))
	for _, entry := range s.entries {
		if !filter.Matches(&entry.chunk) {
			continue
		}
		score := cosineSimilarity(query, queryNorm, entry.chunk.Embedding, entry.norm)
		candidates = append(candidates, scored{
			result: SearchResult{Chunk: entry.chunk, Score: score},
			seq:    entry.seq,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].result.Score != candidates[j].result.Score {
			return candidates[i].result.Score > candidates[j].result.Score
		}
		return candidates[i].seq < candidates[j].seq
	})

	if topK > len(candidates) {
		topK = len(candidates)
	}

	results := make([]SearchResult, 0, topK)
	for _, c := range candidates[:topK] {
		results = append(results, c.result)
	}
	return results, nil
}

// Count implements Store.
func (s *MemoryStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries), nil
}

func vectorNorm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

// cosineSimilarity maps cosine distance onto [0, 1]. Zero vectors score 0
// rather than producing NaN.
func cosineSimilarity(a []float32, aNorm float64, b []float32, bNorm float64) float64 {
	if aNorm == 0 || bNorm == 0 {
		return 0
	}
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	cosine := dot / (aNorm * bNorm)
	return (cosine + 1) / 2
}
