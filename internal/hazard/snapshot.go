package hazard

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"time"
)

type townKey struct{ state, place string }

type countyKey struct{ state, county string }

// Snapshot bundles the deduplicated record set, the three lookup indexes,
// and the global statistics. It is built once and never mutated; concurrent
// readers need no coordination.
type Snapshot struct {
	records  []PlanRecord
	towns    map[townKey]PlanRecord
	counties map[countyKey]CountyAggregate
	states   map[string]StateAggregate
	stats    GlobalStats
	builtAt  time.Time
}

// BuildSnapshot runs the full initialization pipeline over the raw table:
// normalize, dedupe, score, aggregate, index. It fails only on an empty
// dataset; malformed rows are recovered during normalization.
func BuildSnapshot(rows []RawTableRow) (*Snapshot, error) {
	records, stats, err := Score(Dedupe(Normalize(rows)))
	if err != nil {
		return nil, err
	}

	s := &Snapshot{
		records:  records,
		towns:    make(map[townKey]PlanRecord, len(records)),
		counties: make(map[countyKey]CountyAggregate),
		states:   make(map[string]StateAggregate),
		stats:    stats,
		builtAt:  clock.Now(),
	}

	// Index keys fold case independently of the deduplicator's exact-match
	// grouping, so case-variant duplicates collide here; first one wins.
	for _, rec := range records {
		k := townKey{state: strings.ToUpper(rec.StateAbbreviation), place: strings.ToLower(rec.PlaceName)}
		if _, ok := s.towns[k]; !ok {
			s.towns[k] = rec
		}
	}
	for _, agg := range AggregateCounties(records) {
		k := countyKey{state: strings.ToUpper(agg.StateAbbreviation), county: strings.ToLower(agg.CountyName)}
		if _, ok := s.counties[k]; !ok {
			s.counties[k] = agg
		}
	}
	for _, agg := range AggregateStates(records) {
		k := strings.ToUpper(agg.StateAbbreviation)
		if _, ok := s.states[k]; !ok {
			s.states[k] = agg
		}
	}

	return s, nil
}

// Records returns the deduplicated, scored record set.
func (s *Snapshot) Records() []PlanRecord { return s.records }

// Stats returns the dataset-wide log-population statistics.
func (s *Snapshot) Stats() GlobalStats { return s.stats }

// BuiltAt reports when the snapshot was constructed.
func (s *Snapshot) BuiltAt() time.Time { return s.builtAt }

// Store publishes snapshots to concurrent readers. Swaps are atomic: readers
// see either the previous snapshot in full or the next one in full, never a
// partially built index.
type Store struct {
	current atomic.Pointer[Snapshot]
}

// Publish atomically replaces the current snapshot.
func (st *Store) Publish(s *Snapshot) {
	st.current.Store(s)
}

// Current returns the published snapshot, or nil before the first Publish.
func (st *Store) Current() *Snapshot {
	return st.current.Load()
}

// CheckReadiness returns nil once a snapshot has been published.
func (st *Store) CheckReadiness(_ context.Context) error {
	if st.current.Load() == nil {
		return errors.New("hazard snapshot not built yet")
	}
	return nil
}
