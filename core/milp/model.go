// Package milp builds the mixed-integer linear program behind the dispatch
// optimization. The representation is engine-neutral: columns with bounds,
// costs and integrality, and rows with two-sided bounds over sparse
// coefficients. Any MILP engine able to consume this form can solve it.
package milp

import "math"

// Inf is the bound used for unbounded columns and rows.
var Inf = math.Inf(1)

// VarType distinguishes continuous from binary columns.
type VarType int

const (
	Continuous VarType = iota
	Binary
)

// Column is one decision variable of the program.
type Column struct {
	Name  string
	Cost  float64 // objective coefficient, minimization sense
	Lower float64
	Upper float64
	Type  VarType
}

// Entry is a single nonzero coefficient of a row.
type Entry struct {
	Col  int
	Coef float64
}

// Row is a linear constraint Lower <= a.x <= Upper.
type Row struct {
	Name    string
	Lower   float64
	Upper   float64
	Entries []Entry
}

// Model is a complete mixed-integer linear program.
type Model struct {
	cols []Column
	rows []Row
}

// AddColumn appends a decision variable and returns its index.
func (m *Model) AddColumn(name string, cost, lower, upper float64, typ VarType) int {
	m.cols = append(m.cols, Column{Name: name, Cost: cost, Lower: lower, Upper: upper, Type: typ})
	return len(m.cols) - 1
}

// AddRow appends a constraint with the given two-sided bounds.
func (m *Model) AddRow(name string, lower, upper float64, entries ...Entry) {
	m.rows = append(m.rows, Row{Name: name, Lower: lower, Upper: upper, Entries: entries})
}

// AddEq appends an equality constraint a.x == rhs.
func (m *Model) AddEq(name string, rhs float64, entries ...Entry) {
	m.AddRow(name, rhs, rhs, entries...)
}

// AddLe appends an inequality constraint a.x <= upper.
func (m *Model) AddLe(name string, upper float64, entries ...Entry) {
	m.AddRow(name, math.Inf(-1), upper, entries...)
}

// NumCols returns the number of decision variables.
func (m *Model) NumCols() int { return len(m.cols) }

// NumRows returns the number of constraints.
func (m *Model) NumRows() int { return len(m.rows) }

// Columns returns the column set. The slice is owned by the model and must
// not be mutated.
func (m *Model) Columns() []Column { return m.cols }

// Rows returns the row set. The slice is owned by the model and must not be
// mutated.
func (m *Model) Rows() []Row { return m.rows }

// NumBinaries returns the number of binary columns.
func (m *Model) NumBinaries() int {
	n := 0
	for _, c := range m.cols {
		if c.Type == Binary {
			n++
		}
	}
	return n
}
