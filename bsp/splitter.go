package bsp

import "math"

// SplitterState tells whether a SplitterSelector has committed to a winner.
type SplitterState int

const (
	SplitterSearching SplitterState = iota
	SplitterLoaded
)

func (s SplitterState) String() string {
	if s == SplitterLoaded {
		return "Loaded"
	}
	return "Searching"
}

// SplitterProgress is the observable state of a SplitterSelector.
type SplitterProgress struct {
	State        SplitterState
	Best         int
	BestScore    float64
	Current      int
	CurrentScore float64
}

// SplitterSelector scores every candidate of a non-convex set, one per
// Step, and keeps the cheapest. On equal scores the segment that comes
// first in the set wins.
type SplitterSelector struct {
	store *SegmentStore
	cfg   Config

	segs       []int
	candidates []candidate
	next       int
	bestPos    int
	progress   SplitterProgress
}

// candidate is a segment and its position in the loaded set.
type candidate struct {
	seg, pos int
}

func NewSplitterSelector(store *SegmentStore, cfg Config) *SplitterSelector {
	return &SplitterSelector{
		store: store,
		cfg:   cfg,
		progress: SplitterProgress{
			Best:         -1,
			BestScore:    math.Inf(1),
			Current:      -1,
			CurrentScore: math.Inf(1),
		},
	}
}

// Load starts a search over segs. A hint, such as the segment that failed
// the convexity check, is scored first; pass -1 for none. The order of
// scoring does not decide ties.
func (s *SplitterSelector) Load(segs []int, hint int) {
	s.segs = segs
	s.candidates = s.candidates[:0]
	for pos, i := range segs {
		if i == hint {
			s.candidates = append(s.candidates, candidate{i, pos})
		}
	}
	for pos, i := range segs {
		if i != hint {
			s.candidates = append(s.candidates, candidate{i, pos})
		}
	}
	s.next = 0
	s.bestPos = len(segs)
	s.progress = SplitterProgress{
		State:        SplitterSearching,
		Best:         -1,
		BestScore:    math.Inf(1),
		Current:      -1,
		CurrentScore: math.Inf(1),
	}
}

// Step scores the next candidate and reports whether the search is over.
func (s *SplitterSelector) Step() bool {
	if s.progress.State == SplitterLoaded {
		return true
	}
	if s.next < len(s.candidates) {
		c := s.candidates[s.next]
		s.next++
		score := s.score(c.seg)
		s.progress.Current = c.seg
		s.progress.CurrentScore = score
		best := s.progress.BestScore
		if score < best || (score == best && !math.IsInf(score, 1) && c.pos < s.bestPos) {
			s.progress.Best = c.seg
			s.progress.BestScore = score
			s.bestPos = c.pos
		}
	}
	if s.next >= len(s.candidates) {
		s.progress.State = SplitterLoaded
	}
	return s.progress.State == SplitterLoaded
}

// Result returns the chosen splitter and its score.
func (s *SplitterSelector) Result() (int, float64, error) {
	if s.progress.Best < 0 {
		return -1, math.Inf(1), ErrNoViableSplitter
	}
	return s.progress.Best, s.progress.BestScore, nil
}

func (s *SplitterSelector) Progress() SplitterProgress {
	return s.progress
}

// score is the cost of cutting the set along candidate c, or +Inf when the
// cut is not allowed or would leave a side empty.
func (s *SplitterSelector) score(c int) float64 {
	cand := s.store.Get(c)
	d := cand.Dir()
	if cand.Miniseg || d.Length() <= s.cfg.SideEpsilon {
		return math.Inf(1)
	}

	var left, right, splits, nearEnds int
	for _, i := range s.segs {
		if i == c {
			right++
			continue
		}
		seg := s.store.Get(i)
		class, fs, fe := classify(cand.Start, d, seg, s.cfg.SideEpsilon)
		switch class {
		case classRight:
			right++
		case classLeft:
			left++
		case classSplit:
			left++
			right++
			splits++
			at := intersectParam(fs, fe) * seg.Length()
			if at < s.cfg.PunishableEndpointDistance || seg.Length()-at < s.cfg.PunishableEndpointDistance {
				nearEnds++
			}
		}
	}
	if left == 0 || right == 0 {
		return math.Inf(1)
	}

	score := s.cfg.BalanceWeight*float64(abs(left-right)) +
		s.cfg.SplitWeight*float64(splits) +
		s.cfg.PunishableEndpointScore*float64(nearEnds)
	if !isAxisAligned(d) {
		score += s.cfg.NotAxisAlignedScore
	}
	return score
}
