package pipeline

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/nao1215/abnmatch/internal/model"
)

// memStore is an in-memory Store that enforces one match per scraped record.
type memStore struct {
	mu       sync.Mutex
	scraped  []model.ScrapedRecord
	registry []model.RegistryRecord
	matches  []model.MatchRecord

	// insertErr, when set, decides whether a batch fails.
	insertErr   func(batch []model.MatchRecord) error
	scrapedErr  error
	registryErr error

	insertCalls int
}

func newMemStore(scraped []model.ScrapedRecord, registry []model.RegistryRecord) *memStore {
	s := &memStore{registry: registry}
	for i, r := range scraped {
		if r.ID == 0 {
			r.ID = int64(i + 1)
		}
		s.scraped = append(s.scraped, r)
	}
	return s
}

func (s *memStore) isMatched(id int64) bool {
	for _, m := range s.matches {
		if m.ScrapedID == id {
			return true
		}
	}
	return false
}

func (s *memStore) UnmatchedScraped(_ context.Context, f model.ScrapedFilter) ([]model.ScrapedRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.scrapedErr != nil {
		return nil, s.scrapedErr
	}
	var out []model.ScrapedRecord
	for _, r := range s.scraped {
		if s.isMatched(r.ID) {
			continue
		}
		if f.RequireABN && strings.TrimSpace(r.ABN) == "" {
			continue
		}
		if f.RequireName && strings.TrimSpace(r.CompanyName) == "" {
			continue
		}
		out = append(out, r)
		if f.Limit > 0 && len(out) == f.Limit {
			break
		}
	}
	return out, nil
}

func (s *memStore) ActiveRegistry(context.Context) ([]model.RegistryRecord, error) {
	if s.registryErr != nil {
		return nil, s.registryErr
	}
	var out []model.RegistryRecord
	for _, r := range s.registry {
		if r.IsActive() && r.HasName() {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *memStore) RegistryByABN(_ context.Context, abns []string) (map[string]model.RegistryRecord, error) {
	if s.registryErr != nil {
		return nil, s.registryErr
	}
	out := make(map[string]model.RegistryRecord)
	for _, abn := range abns {
		for _, r := range s.registry {
			if r.ABN == abn {
				out[abn] = r
			}
		}
	}
	return out, nil
}

func (s *memStore) InsertMatches(_ context.Context, batch []model.MatchRecord) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.insertCalls++
	if s.insertErr != nil {
		if err := s.insertErr(batch); err != nil {
			return 0, err
		}
	}
	n := 0
	for _, m := range batch {
		if s.isMatched(m.ScrapedID) {
			continue
		}
		s.matches = append(s.matches, m)
		n++
	}
	return n, nil
}

func (s *memStore) MatchStats(context.Context) ([]model.MethodStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []model.MethodStats
	for _, method := range model.Methods() {
		st := model.MethodStats{Method: method, MinConfidence: 1}
		sum := 0.0
		for _, m := range s.matches {
			if m.Method != method {
				continue
			}
			st.Count++
			sum += m.Confidence
			st.MinConfidence = min(st.MinConfidence, m.Confidence)
			st.MaxConfidence = max(st.MaxConfidence, m.Confidence)
		}
		if st.Count == 0 {
			continue
		}
		st.AvgConfidence = sum / float64(st.Count)
		out = append(out, st)
	}
	return out, nil
}

func (s *memStore) matchFor(scrapedID int64) (model.MatchRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, m := range s.matches {
		if m.ScrapedID == scrapedID {
			return m, true
		}
	}
	return model.MatchRecord{}, false
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testRecorder(s *memStore) *Recorder {
	return NewRecorder(s, WithRecorderLogger(discardLogger()))
}
