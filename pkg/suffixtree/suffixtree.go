// Package suffixtree is the reference implementation of the out-of-scope
// "suffix-tree engine" collaborator (spec.md §1, §6.3): given an integer
// stream, it yields groups of equal-length, equal-content start indices for
// a caller-supplied Target to refine into OutlinedFunctions. spec.md §11
// documents that a plain suffix-array + LCP construction stands in for
// LLVM's generalized suffix tree here — sufficient to drive pkg/outline
// correctly, not a claim of matching that engine's performance profile.
package suffixtree

import "sort"

// Candidate identifies one occurrence of an outlinable substring within
// the linearized instruction stream (spec.md §3.2).
type Candidate struct {
	StartIdx     int
	Length       int
	CallOverhead int
	Deleted      bool
}

// OutlinedFunction groups the candidates that will share one outlined
// function body, along with the shared sequence length and the per-call
// frame overhead used by the benefit computation (spec.md §3.2).
type OutlinedFunction struct {
	Candidates    []Candidate
	SequenceSize  int
	FrameOverhead int
}

// Benefit estimates the net instruction-count win from materializing f,
// in units of SequenceSize: every live candidate saves SequenceSize
// instructions and costs its own CallOverhead, and the function body costs
// FrameOverhead once, giving (live*SequenceSize - sum(CallOverhead) -
// FrameOverhead) / SequenceSize. Fewer than two live candidates yields 0. A
// benefit below 1 means outlining this group would not pay for itself
// (spec.md §8 "Benefit: benefit < 1 functions are never materialized").
func (f *OutlinedFunction) Benefit() float64 {
	live := 0
	totalCallOverhead := 0
	for _, c := range f.Candidates {
		if c.Deleted {
			continue
		}
		live++
		totalCallOverhead += c.CallOverhead
	}
	if live < 2 {
		return 0
	}
	saved := live * f.SequenceSize
	cost := totalCallOverhead + f.FrameOverhead
	return float64(saved-cost) / float64(f.SequenceSize)
}

// Target is the per-pass collaborator the suffix-tree engine consults: it
// knows the minimum length worth considering and how to turn a set of
// equal-length matching start indices into zero or more OutlinedFunctions
// (spec.md §6.3, §4.7).
type Target interface {
	MinCandidateLength() int
	CreateOutlinedFunctions(startIndices []int, candidateLength int) []OutlinedFunction
}

// GetFunctionsToOutline groups the suffixes of stream by shared prefix and
// asks target to refine each group into outlined functions. Each maximal
// run of suffix-array neighbours whose common prefix is at least
// target.MinCandidateLength() becomes one group: its start positions,
// sorted, with the run's smallest common-prefix length as the candidate
// length. A longer repeat shared by only part of a run is not reported as
// a group of its own, and the start positions of one group can overlap
// (for example inside a periodic stream such as a run of equal values).
//
// The reference construction here is a plain suffix array with an LCP
// array built by pairwise comparison of neighbouring suffixes rather than
// a generalized suffix tree.
func GetFunctionsToOutline(stream []int, target Target) []OutlinedFunction {
	minLen := target.MinCandidateLength()
	if minLen <= 0 || len(stream) < minLen {
		return nil
	}

	sa := buildSuffixArray(stream)
	lcp := buildLCPArray(stream, sa)

	var out []OutlinedFunction
	n := len(stream)
	i := 1
	for i < n {
		if lcp[i] < minLen {
			i++
			continue
		}
		// Extend the run of consecutive suffix-array entries that all
		// share at least this LCP, then take the minimum LCP within the
		// run as the common length for this group.
		runStart := i - 1
		runMinLCP := lcp[i]
		j := i + 1
		for j < n && lcp[j] >= minLen {
			if lcp[j] < runMinLCP {
				runMinLCP = lcp[j]
			}
			j++
		}
		starts := make([]int, 0, j-runStart)
		for k := runStart; k < j; k++ {
			starts = append(starts, sa[k])
		}
		sort.Ints(starts)
		out = append(out, target.CreateOutlinedFunctions(starts, runMinLCP)...)
		i = j
	}
	return out
}

func buildSuffixArray(stream []int) []int {
	n := len(stream)
	sa := make([]int, n)
	for i := range sa {
		sa[i] = i
	}
	sort.Slice(sa, func(a, b int) bool {
		return lessSuffix(stream, sa[a], sa[b])
	})
	return sa
}

func lessSuffix(stream []int, a, b int) bool {
	for a < len(stream) && b < len(stream) {
		if stream[a] != stream[b] {
			return stream[a] < stream[b]
		}
		a++
		b++
	}
	return len(stream)-a < len(stream)-b
}

func commonPrefixLen(stream []int, a, b int) int {
	n := 0
	for a+n < len(stream) && b+n < len(stream) && stream[a+n] == stream[b+n] {
		n++
	}
	return n
}

// buildLCPArray computes, for each i>0, the length of the common prefix
// between suffixes sa[i-1] and sa[i]. lcp[0] is always 0.
func buildLCPArray(stream []int, sa []int) []int {
	n := len(sa)
	lcp := make([]int, n)
	for i := 1; i < n; i++ {
		lcp[i] = commonPrefixLen(stream, sa[i-1], sa[i])
	}
	return lcp
}
