// Package telemetry accumulates outlining-run statistics and formats them
// for debug logging, the way a production compiler pass reports its own
// pass statistics.
package telemetry

import "github.com/dustin/go-humanize"

// Stats accumulates counters across every round of one outlining run
// (spec.md §4.10 "report how many candidates were outlined, how many
// functions were created, and an estimate of instructions saved").
type Stats struct {
	NumCandidatesOutlined int
	NumFunctionsCreated   int
	NumInstructionsSaved  int
	NumOutliningRounds    int
}

// RecordFunction folds one materialized OutlinedFunction's contribution
// into s: every outlined candidate becomes a call site, and the
// instructions saved are counted as sequenceSize for each candidate beyond
// the first, whose instructions the new function body replaces.
func (s *Stats) RecordFunction(numOutlined, sequenceSize int) {
	if numOutlined < 2 {
		return
	}
	s.NumFunctionsCreated++
	s.NumCandidatesOutlined += numOutlined
	s.NumInstructionsSaved += (numOutlined - 1) * sequenceSize
}

// Summary renders s for a human-readable debug log line.
func (s Stats) Summary() string {
	return "outlined " + humanize.Comma(int64(s.NumCandidatesOutlined)) + " candidate(s) into " +
		humanize.Comma(int64(s.NumFunctionsCreated)) + " function(s) over " +
		humanize.Comma(int64(s.NumOutliningRounds)) + " round(s), saving an estimated " +
		humanize.Comma(int64(s.NumInstructionsSaved)) + " instruction(s)"
}
