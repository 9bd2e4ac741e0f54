package solver

import (
	"context"
	"sort"
	"time"

	"timetable-service/internal/encoder"
)

// BacktrackEngine is a deterministic branch-and-bound search over the
// model's exact-sum constraints. For each constraint it picks the demanded
// number of variables from the candidate list, cheapest objective
// coefficient first, rejecting picks that would overfill an at-most-one
// group, and keeps the lowest-cost complete assignment it proves or runs
// out of time finding. No randomness anywhere: identical models yield
// identical responses.
type BacktrackEngine struct{}

func NewBacktrackEngine() *BacktrackEngine { return &BacktrackEngine{} }

// checkInterval is how many search nodes pass between deadline checks.
const checkInterval = 4096

type searchConstraint struct {
	need  int
	cands []encoder.BoolVar // sorted by (objective coeff, variable)
}

type search struct {
	model       *encoder.Model
	constraints []searchConstraint
	// minCostSuffix[i] is a lower bound on the cost of satisfying
	// constraints i..end: the sum of each one's cheapest possible picks.
	minCostSuffix []int64

	varAMO  [][]int // variable -> at-most-one group ids containing it
	amoUsed []int   // chosen-variable count per at-most-one group

	chosen []bool
	cost   int64

	best     []bool
	bestCost int64
	haveBest bool

	ctx         context.Context
	deadline    time.Time
	hasDeadline bool
	nodes       int
	stopped     bool
}

func (e *BacktrackEngine) Solve(ctx context.Context, model *encoder.Model, opts Options) Response {
	s := &search{
		model:   model,
		varAMO:  make([][]int, model.NumVars()),
		amoUsed: make([]int, len(model.AtMostOne())),
		chosen:  make([]bool, model.NumVars()),
		ctx:     ctx,
	}
	if opts.TimeLimitSeconds > 0 {
		s.deadline = time.Now().Add(time.Duration(opts.TimeLimitSeconds * float64(time.Second)))
		s.hasDeadline = true
	}
	if d, ok := ctx.Deadline(); ok && (!s.hasDeadline || d.Before(s.deadline)) {
		s.deadline = d
		s.hasDeadline = true
	}

	for amoID, group := range model.AtMostOne() {
		for _, v := range group {
			s.varAMO[v] = append(s.varAMO[v], amoID)
		}
	}

	if !s.prepareConstraints() {
		return Response{}
	}

	s.descend(0)

	if !s.haveBest {
		return Response{}
	}
	return Response{Initialized: true, Values: s.best, Objective: s.bestCost}
}

// prepareConstraints orders the exact-sum constraints tightest first and
// sorts each candidate list by ascending cost. Returns false when some
// constraint is unsatisfiable outright.
func (s *search) prepareConstraints() bool {
	model := s.model
	for _, es := range model.ExactSums() {
		if es.Sum < 0 || es.Sum > len(es.Vars) {
			return false
		}
		if es.Sum == 0 {
			continue
		}
		cands := append([]encoder.BoolVar(nil), es.Vars...)
		sort.Slice(cands, func(i, j int) bool {
			ci, cj := model.ObjectiveCoeff(cands[i]), model.ObjectiveCoeff(cands[j])
			if ci != cj {
				return ci < cj
			}
			return cands[i] < cands[j]
		})
		s.constraints = append(s.constraints, searchConstraint{need: es.Sum, cands: cands})
	}

	// Tightest first: the less slack a constraint has, the earlier failures
	// surface. Ties keep emission order.
	sort.SliceStable(s.constraints, func(i, j int) bool {
		si := len(s.constraints[i].cands) - s.constraints[i].need
		sj := len(s.constraints[j].cands) - s.constraints[j].need
		return si < sj
	})

	s.minCostSuffix = make([]int64, len(s.constraints)+1)
	for i := len(s.constraints) - 1; i >= 0; i-- {
		c := s.constraints[i]
		var lb int64
		for k := 0; k < c.need; k++ {
			lb += s.model.ObjectiveCoeff(c.cands[k])
		}
		s.minCostSuffix[i] = s.minCostSuffix[i+1] + lb
	}
	return true
}

// descend satisfies constraints[ci:]. A complete descent records the
// assignment if it beats the incumbent.
func (s *search) descend(ci int) {
	if s.stopped {
		return
	}
	if ci == len(s.constraints) {
		if !s.haveBest || s.cost < s.bestCost {
			s.best = append(s.best[:0], s.chosen...)
			s.bestCost = s.cost
			s.haveBest = true
		}
		return
	}
	if s.haveBest && s.cost+s.minCostSuffix[ci] >= s.bestCost {
		return
	}
	s.pick(ci, 0, s.constraints[ci].need)
}

// pick chooses need more variables for constraint ci from candidates at
// position start onward. Candidates are cost-sorted, so once the incumbent
// is beaten by the cheapest remaining pick the whole tail can be dropped.
func (s *search) pick(ci, start, need int) {
	if need == 0 {
		s.descend(ci + 1)
		return
	}
	s.nodes++
	if s.nodes%checkInterval == 0 && s.timedOut() {
		s.stopped = true
		return
	}

	cands := s.constraints[ci].cands
	for j := start; j <= len(cands)-need; j++ {
		v := cands[j]
		if s.chosen[v] || s.conflicts(v) {
			continue
		}
		coeff := s.model.ObjectiveCoeff(v)
		if s.haveBest && s.cost+coeff+s.minCostSuffix[ci+1] >= s.bestCost {
			return
		}

		s.choose(v, coeff)
		s.pick(ci, j+1, need-1)
		s.unchoose(v, coeff)

		if s.stopped {
			return
		}
	}
}

func (s *search) conflicts(v encoder.BoolVar) bool {
	for _, amoID := range s.varAMO[v] {
		if s.amoUsed[amoID] > 0 {
			return true
		}
	}
	return false
}

func (s *search) choose(v encoder.BoolVar, coeff int64) {
	s.chosen[v] = true
	s.cost += coeff
	for _, amoID := range s.varAMO[v] {
		s.amoUsed[amoID]++
	}
}

func (s *search) unchoose(v encoder.BoolVar, coeff int64) {
	s.chosen[v] = false
	s.cost -= coeff
	for _, amoID := range s.varAMO[v] {
		s.amoUsed[amoID]--
	}
}

func (s *search) timedOut() bool {
	select {
	case <-s.ctx.Done():
		return true
	default:
	}
	return s.hasDeadline && !time.Now().Before(s.deadline)
}
