package annotate

import (
	"sort"
	"strings"

	"github.com/avalon-data/langextract/types"
)

// aggregateState accumulates extractions across waves and multipass rounds,
// applying spec §4.5 step 6's dedup rule incrementally so later passes can
// merge into the same running set.
type aggregateState struct {
	// byInterval dedups same-class, same-non-null-interval extractions.
	byInterval map[intervalKey]int
	// byText dedups same-class, same-trimmed-text, null-interval extractions.
	byText map[textKey]int

	kept     []types.Extraction
	failures []ChunkFailure
}

type intervalKey struct {
	class string
	start int
	end   int
}

type textKey struct {
	class string
	text  string
}

func newAggregateState() *aggregateState {
	return &aggregateState{
		byInterval: make(map[intervalKey]int),
		byText:     make(map[textKey]int),
	}
}

func (s *aggregateState) merge(extractions []types.Extraction) {
	for _, e := range extractions {
		s.add(e)
	}
}

func (s *aggregateState) add(e types.Extraction) {
	if e.Interval != nil {
		key := intervalKey{class: e.Class, start: e.Interval.Start, end: e.Interval.End}
		if idx, ok := s.byInterval[key]; ok {
			s.replaceIfBetter(idx, e)
			return
		}
		s.byInterval[key] = len(s.kept)
		s.kept = append(s.kept, e)
		return
	}

	key := textKey{class: e.Class, text: strings.TrimSpace(e.Text)}
	if idx, ok := s.byText[key]; ok {
		s.replaceIfBetter(idx, e)
		return
	}
	s.byText[key] = len(s.kept)
	s.kept = append(s.kept, e)
}

// replaceIfBetter keeps whichever of the existing and incoming extraction
// has the better alignment status, tiebreaking by earlier group_index.
func (s *aggregateState) replaceIfBetter(idx int, candidate types.Extraction) {
	existing := s.kept[idx]
	if candidate.AlignmentStatus.Better(existing.AlignmentStatus) {
		s.kept[idx] = candidate
		return
	}
	if existing.AlignmentStatus == candidate.AlignmentStatus && candidate.GroupIndex < existing.GroupIndex {
		s.kept[idx] = candidate
	}
}

// ordered returns the final list sorted per spec §4.5 step 5: by
// interval.start, with null-interval extractions appended in
// (chunk.index, group_index) order.
func (s *aggregateState) ordered() []types.Extraction {
	withInterval := make([]types.Extraction, 0, len(s.kept))
	withoutInterval := make([]types.Extraction, 0, len(s.kept))
	for _, e := range s.kept {
		if e.Interval != nil {
			withInterval = append(withInterval, e)
		} else {
			withoutInterval = append(withoutInterval, e)
		}
	}

	sort.SliceStable(withInterval, func(i, j int) bool {
		return withInterval[i].Interval.Start < withInterval[j].Interval.Start
	})
	sort.SliceStable(withoutInterval, func(i, j int) bool {
		a, b := withoutInterval[i], withoutInterval[j]
		if a.ChunkIndex != b.ChunkIndex {
			return a.ChunkIndex < b.ChunkIndex
		}
		return a.GroupIndex < b.GroupIndex
	})

	return append(withInterval, withoutInterval...)
}
