// Package engine implements the MILP engine behind the solve boundary as a
// branch-and-bound search over LP relaxations. Relaxations are assembled as
// dense matrices and solved with the gonum simplex, the same stack used for
// plain LP dispatch problems.
package engine

import (
	"context"
	"errors"
	"math"
	"time"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"

	"github.com/mlaoire/pvdispatch/core/logger"
	"github.com/mlaoire/pvdispatch/core/milp"
	"github.com/mlaoire/pvdispatch/core/solve"
)

const (
	simplexTol = 1e-7
	intTol     = 1e-6
	pruneTol   = 1e-9
	logEvery   = 100
)

// BranchAndBound is a pure-Go MILP engine. It is stateless across calls;
// every Solve builds a fresh search from the model alone.
type BranchAndBound struct {
	log logger.Logger
}

// New returns a BranchAndBound engine logging through the given logger.
func New(log logger.Logger) *BranchAndBound {
	return &BranchAndBound{log: log}
}

// ineq is a single inequality a.x <= rhs over sparse entries.
type ineq struct {
	entries []milp.Entry
	rhs     float64
}

// relaxation holds the LP data shared by every node of the search. The
// inequality matrix is assembled once; nodes differ only in the right-hand
// sides of the column-bound rows, indexed per column by upperRow/lowerRow.
type relaxation struct {
	n        int
	costs    []float64
	ineqs    []ineq
	g        *mat.Dense
	eqA      *mat.Dense
	eqB      []float64
	cols     []milp.Column
	upperRow []int
	lowerRow []int
}

// fix pins a binary column to an integer value by tightening its bound
// rows. Branching must not add rows parallel to the existing bounds: a
// stack of tight duplicate rows makes the simplex phase-1 basis singular.
type fix struct {
	col int
	val float64
}

// node is one subproblem: the base relaxation plus branching fixes.
// bound carries the parent's relaxation value, a valid lower bound on
// every solution in the subtree.
type node struct {
	fixes []fix
	bound float64
}

// Solve runs the branch-and-bound search under the given controls.
func (e *BranchAndBound) Solve(ctx context.Context, m *milp.Model, ctl solve.Controls) (solve.Outcome, error) {
	rel := buildRelaxation(m)

	var deadline time.Time
	if ctl.TimeLimit >= 0 {
		deadline = time.Now().Add(ctl.TimeLimit)
	}
	expired := func() bool {
		if ctx.Err() != nil {
			return true
		}
		return !deadline.IsZero() && !time.Now().Before(deadline)
	}

	incumbent := solve.Outcome{Status: solve.StatusTimeLimit, Objective: math.Inf(1)}
	stack := []node{{bound: math.Inf(-1)}}
	nodes := 0

	for len(stack) > 0 {
		if expired() {
			return incumbent, nil
		}

		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		nodes++

		if n.bound >= incumbent.Objective-pruneTol {
			continue
		}

		obj, x, err := rel.solveNode(n)
		switch {
		case err == nil:
		case errors.Is(err, lp.ErrInfeasible):
			continue
		case errors.Is(err, lp.ErrUnbounded):
			return solve.Outcome{Status: solve.StatusUnbounded}, nil
		default:
			return solve.Outcome{Status: solve.StatusError}, err
		}

		if obj >= incumbent.Objective-pruneTol {
			continue
		}

		branch := rel.mostFractionalBinary(x)
		if branch < 0 {
			// Integer feasible: new incumbent.
			incumbent.Objective = obj
			incumbent.Values = x
			incumbent.Incumbents++
			if ctl.Verbose {
				e.log.Infof("incumbent %d: objective %.6f after %d nodes", incumbent.Incumbents, obj, nodes)
			}
			if ctl.Gap > 0 && withinGap(incumbent.Objective, bestBound(stack, obj), ctl.Gap) {
				incumbent.Status = solve.StatusOptimal
				return incumbent, nil
			}
			continue
		}

		if ctl.Verbose && nodes%logEvery == 0 {
			e.log.Debugf("explored %d nodes, %d open, incumbent %.6f", nodes, len(stack), incumbent.Objective)
		}

		// Explore the side the relaxation leans towards first; the other
		// branch goes deeper in the stack.
		up := node{fixes: append(cloneFixes(n.fixes), fix{branch, 1}), bound: obj}
		down := node{fixes: append(cloneFixes(n.fixes), fix{branch, 0}), bound: obj}
		if x[branch] >= 0.5 {
			stack = append(stack, down, up)
		} else {
			stack = append(stack, up, down)
		}
	}

	if incumbent.Incumbents == 0 {
		return solve.Outcome{Status: solve.StatusInfeasible}, nil
	}
	incumbent.Status = solve.StatusOptimal
	if ctl.Verbose {
		e.log.Infof("search exhausted after %d nodes, objective %.6f", nodes, incumbent.Objective)
	}
	return incumbent, nil
}

// buildRelaxation converts the model into the general LP form
// min c.x s.t. G.x <= h, A.x = b, with column bounds expanded into
// inequality rows.
func buildRelaxation(m *milp.Model) *relaxation {
	cols := m.Columns()
	n := len(cols)

	rel := &relaxation{
		n:        n,
		costs:    make([]float64, n),
		cols:     cols,
		upperRow: make([]int, n),
		lowerRow: make([]int, n),
	}
	for i, c := range cols {
		rel.costs[i] = c.Cost
		rel.upperRow[i] = -1
		rel.lowerRow[i] = -1
	}

	var eqRows [][]milp.Entry
	var eqRHS []float64
	for _, r := range m.Rows() {
		switch {
		case r.Lower == r.Upper:
			eqRows = append(eqRows, r.Entries)
			eqRHS = append(eqRHS, r.Lower)
		default:
			if !math.IsInf(r.Upper, 1) {
				rel.ineqs = append(rel.ineqs, ineq{r.Entries, r.Upper})
			}
			if !math.IsInf(r.Lower, -1) {
				rel.ineqs = append(rel.ineqs, ineq{negate(r.Entries), -r.Lower})
			}
		}
	}
	for i, c := range cols {
		if !math.IsInf(c.Upper, 1) {
			rel.upperRow[i] = len(rel.ineqs)
			rel.ineqs = append(rel.ineqs, ineq{[]milp.Entry{{Col: i, Coef: 1}}, c.Upper})
		}
		if !math.IsInf(c.Lower, -1) {
			rel.lowerRow[i] = len(rel.ineqs)
			rel.ineqs = append(rel.ineqs, ineq{[]milp.Entry{{Col: i, Coef: -1}}, -c.Lower})
		}
	}

	rel.g = mat.NewDense(len(rel.ineqs), n, nil)
	for i, iq := range rel.ineqs {
		for _, e := range iq.entries {
			rel.g.Set(i, e.Col, e.Coef)
		}
	}

	// lp.Convert requires an equality block; a model without one gets the
	// trivial 0.x = 0 row.
	if len(eqRows) == 0 {
		eqRows = [][]milp.Entry{nil}
		eqRHS = []float64{0}
	}
	rel.eqA = mat.NewDense(len(eqRows), n, nil)
	for i, row := range eqRows {
		for _, e := range row {
			rel.eqA.Set(i, e.Col, e.Coef)
		}
	}
	rel.eqB = eqRHS
	return rel
}

// solveNode solves the LP relaxation of one node. The inequality matrix is
// shared; only the right-hand sides of the fixed columns' bound rows differ
// from the root relaxation.
func (r *relaxation) solveNode(n node) (float64, []float64, error) {
	h := make([]float64, len(r.ineqs))
	for i, iq := range r.ineqs {
		h[i] = iq.rhs
	}
	for _, f := range n.fixes {
		h[r.upperRow[f.col]] = f.val
		h[r.lowerRow[f.col]] = -f.val
	}

	cStd, aStd, bStd := lp.Convert(r.costs, r.g, h, r.eqA, r.eqB)
	obj, sol, err := lp.Simplex(cStd, aStd, bStd, simplexTol, nil)
	if err != nil {
		return 0, nil, err
	}

	// The first n standard-form columns are the original variables. Clamp
	// simplex noise back inside the column bounds.
	x := make([]float64, r.n)
	for i := range x {
		v := sol[i]
		if v < r.cols[i].Lower {
			v = r.cols[i].Lower
		}
		if v > r.cols[i].Upper {
			v = r.cols[i].Upper
		}
		x[i] = v
	}
	return obj, x, nil
}

// mostFractionalBinary returns the binary column farthest from integrality,
// or -1 if the point is integer feasible.
func (r *relaxation) mostFractionalBinary(x []float64) int {
	best, bestFrac := -1, intTol
	for i, c := range r.cols {
		if c.Type != milp.Binary {
			continue
		}
		frac := math.Abs(x[i] - math.Round(x[i]))
		if frac > bestFrac {
			best, bestFrac = i, frac
		}
	}
	return best
}

// bestBound is the tightest known lower bound on the true optimum: the
// smallest bound among open nodes and the relaxation just solved.
func bestBound(stack []node, current float64) float64 {
	best := current
	for _, n := range stack {
		if n.bound < best {
			best = n.bound
		}
	}
	return best
}

func withinGap(incumbent, bound, gap float64) bool {
	if math.IsInf(bound, -1) {
		return false
	}
	denom := math.Max(math.Abs(incumbent), 1e-10)
	return (incumbent-bound)/denom <= gap
}

func negate(entries []milp.Entry) []milp.Entry {
	out := make([]milp.Entry, len(entries))
	for i, e := range entries {
		out[i] = milp.Entry{Col: e.Col, Coef: -e.Coef}
	}
	return out
}

func cloneFixes(in []fix) []fix {
	out := make([]fix, len(in))
	copy(out, in)
	return out
}
