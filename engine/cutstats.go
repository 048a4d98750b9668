package engine

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// SearchStats collects node and cutoff counts for one search.
type SearchStats struct {
	Nodes            uint64
	QNodes           uint64
	TTCutoffs        uint64
	BetaCutoffs      uint64
	QStandPatCutoffs uint64
	QBetaCutoffs     uint64
	Aborts           uint64
}

func (s *SearchStats) reset() { *s = SearchStats{} }

func (s *SearchStats) total() uint64 { return s.Nodes + s.QNodes }

// MarshalZerologObject lets the stats be attached to a log event.
func (s SearchStats) MarshalZerologObject(e *zerolog.Event) {
	e.Uint64("nodes", s.Nodes).
		Uint64("qnodes", s.QNodes).
		Uint64("tt-cutoffs", s.TTCutoffs).
		Uint64("beta-cutoffs", s.BetaCutoffs).
		Uint64("q-standpat-cutoffs", s.QStandPatCutoffs).
		Uint64("q-beta-cutoffs", s.QBetaCutoffs).
		Uint64("aborts", s.Aborts)
}

func (s *Searcher) dumpStats() {
	log.Debug().
		Object("stats", s.stats).
		Int("tt-entries", s.tt.Len()).
		Uint64("tt-lookups", s.tt.lookups).
		Uint64("tt-hits", s.tt.hits).
		Uint64("tt-stores", s.tt.stores).
		Msg("search-statistics")
}
