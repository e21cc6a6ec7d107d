package matching

import (
	"sort"

	"github.com/nao1215/abnmatch/internal/model"
)

// Candidate is a registry record scored against a query name.
type Candidate struct {
	// Record is the registry record that was scored.
	Record model.RegistryRecord
	// Similarity is the normalized-name similarity in [0,1].
	Similarity float64
}

// ABN returns the candidate's business number.
func (c Candidate) ABN() string {
	return c.Record.ABN
}

// Pool is an immutable registry snapshot with names normalized once up front.
// A Pool may be shared between goroutines.
type Pool struct {
	records []model.RegistryRecord
	names   []string
}

// NewPool builds a pool from records. Records whose name normalizes to the empty
// string are dropped because they can never score above zero.
func NewPool(records []model.RegistryRecord) *Pool {
	p := &Pool{
		records: make([]model.RegistryRecord, 0, len(records)),
		names:   make([]string, 0, len(records)),
	}
	for _, r := range records {
		name := NormalizeName(r.EntityName)
		if name == "" {
			continue
		}
		p.records = append(p.records, r)
		p.names = append(p.names, name)
	}
	return p
}

// Len returns the number of scorable records in the pool.
func (p *Pool) Len() int {
	if p == nil {
		return 0
	}
	return len(p.records)
}

// Best returns the highest-scoring record for name. Ties keep the record that
// appears first in the pool. ok is false when the pool is empty or the name
// normalizes to the empty string.
func (p *Pool) Best(name string) (best Candidate, ok bool) {
	query := NormalizeName(name)
	if query == "" || p.Len() == 0 {
		return Candidate{}, false
	}

	best.Similarity = -1
	for i, candidate := range p.names {
		s := NormalizedSimilarity(query, candidate)
		if s > best.Similarity {
			best = Candidate{Record: p.records[i], Similarity: s}
		}
	}
	return best, true
}

// Rank returns up to topN candidates from the pool ordered by descending
// similarity to name. Equal scores keep pool order. A topN of zero or less
// returns every record. Rank applies no threshold.
func (p *Pool) Rank(name string, topN int) []Candidate {
	query := NormalizeName(name)
	if query == "" || p.Len() == 0 {
		return nil
	}

	ranked := make([]Candidate, len(p.records))
	for i, candidate := range p.names {
		ranked[i] = Candidate{
			Record:     p.records[i],
			Similarity: NormalizedSimilarity(query, candidate),
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Similarity > ranked[j].Similarity
	})

	if topN > 0 && len(ranked) > topN {
		ranked = ranked[:topN]
	}
	return ranked
}

// Rank is a convenience wrapper that builds a throwaway pool from records.
// Callers ranking many names against the same records should reuse a Pool.
func Rank(name string, records []model.RegistryRecord, topN int) []Candidate {
	return NewPool(records).Rank(name, topN)
}
