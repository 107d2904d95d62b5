package exercise

import (
	"math"
	"strconv"
)

const DefaultIncorrectThreshold = 6

// Scorer holds the running score of one attempt and applies the scoring
// rules on every fired transition.
type Scorer struct {
	score     float64
	maxScore  float64
	threshold int
	depth     DepthMap
	attempts  map[string]int
}

func NewScorer(maxScore float64, depth DepthMap, threshold int) *Scorer {
	if threshold < 1 {
		threshold = DefaultIncorrectThreshold
	}
	return &Scorer{
		maxScore:  maxScore,
		threshold: threshold,
		depth:     depth,
		attempts:  map[string]int{},
	}
}

func (s *Scorer) Score() float64 { return s.score }

func (s *Scorer) MaxScore() float64 { return s.maxScore }

// Attempts returns how many scoring transitions stepID has produced.
func (s *Scorer) Attempts(stepID string) int { return s.attempts[stepID] }

// Apply implements Updater.
func (s *Scorer) Apply(t Transition) error {
	s.Update(t.Weight, t.Interpretation, t.RawScore, t.Source, t.PathClass)
	return nil
}

// Update counts the attempt on stepID and moves the score by the scoring
// delta, returning the delta before clamping. The leading weight is not part
// of the formula; it only scales the completion penalty at session level.
func (s *Scorer) Update(_ float64, interp Interpretation, raw float64, stepID string, class PathClass) float64 {
	s.attempts[stepID]++
	count := s.attempts[stepID]

	delta := 0.0
	switch interp {
	case Correct:
		switch {
		case class != Helper && count == 1:
			delta = raw
		case class != Helper:
			delta = round1(raw / float64(count))
		case count == 1:
			delta = round1(raw / s.depthDivisor(stepID))
		default:
			delta = round1(raw/s.depthDivisor(stepID)) * round1(raw/float64(count))
		}
	case Incorrect:
		if count == s.threshold {
			delta = -(raw * float64(count) * 0.1)
		}
	}

	s.score = clamp(s.score+delta, 0, s.maxScore)
	return delta
}

// Penalize subtracts amount from the score, keeping it inside [0, max].
func (s *Scorer) Penalize(amount float64) {
	s.score = clamp(s.score-amount, 0, s.maxScore)
}

// a helper step always sits at depth >= 2 under the default rule; custom
// rules may classify shallower steps as helpers
func (s *Scorer) depthDivisor(stepID string) float64 {
	d := s.depth[stepID]
	if d <= 0 {
		return 1
	}
	return float64(d)
}

// round1 rounds to one decimal place from the exact binary value, so 0.15
// (stored just below) becomes 0.1 and exact halves go to even.
func round1(v float64) float64 {
	r, _ := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 1, 64), 64)
	return r
}

func clamp(v, lo, hi float64) float64 {
	if hi < lo {
		hi = lo
	}
	return math.Max(lo, math.Min(v, hi))
}
