package encoder

// BoolVar is a boolean decision variable, identified by its position in the
// model's variable space.
type BoolVar int

// ExactSum requires exactly Sum of Vars to be assigned true.
type ExactSum struct {
	Vars []BoolVar
	Sum  int
}

// Model is a built boolean constraint model: a variable count, at-most-one
// groups, exact-sum groups, and one linear minimization objective over the
// variable vector. A Model is read-only once built; solver engines consume
// it without mutating it.
type Model struct {
	numVars   int
	atMostOne [][]BoolVar
	exactSums []ExactSum
	objective []int64
}

func (m *Model) NumVars() int { return m.numVars }
func (m *Model) AtMostOne() [][]BoolVar { return m.atMostOne }
func (m *Model) ExactSums() []ExactSum { return m.exactSums }

// ObjectiveCoeff returns the accumulated objective coefficient of v.
func (m *Model) ObjectiveCoeff(v BoolVar) int64 { return m.objective[v] }

// ModelBuilder accumulates variables, constraints, and objective terms, then
// produces an immutable Model.
type ModelBuilder struct {
	numVars   int
	atMostOne [][]BoolVar
	exactSums []ExactSum
	objective []int64
}

func NewModelBuilder() *ModelBuilder {
	return &ModelBuilder{}
}

// NewBoolVar allocates a fresh boolean variable.
func (b *ModelBuilder) NewBoolVar() BoolVar {
	v := BoolVar(b.numVars)
	b.numVars++
	b.objective = append(b.objective, 0)
	return v
}

// AddAtMostOne constrains the sum of vars to be at most 1. An empty or
// single-variable group is trivially satisfied and is not recorded.
func (b *ModelBuilder) AddAtMostOne(vars []BoolVar) {
	if len(vars) < 2 {
		return
	}
	b.atMostOne = append(b.atMostOne, append([]BoolVar(nil), vars...))
}

// AddEquality constrains exactly sum of vars to be true.
func (b *ModelBuilder) AddEquality(vars []BoolVar, sum int) {
	b.exactSums = append(b.exactSums, ExactSum{
		Vars: append([]BoolVar(nil), vars...),
		Sum:  sum,
	})
}

// Minimize adds a scalar-product term over vars to the objective. Repeated
// calls accumulate into the one linear objective: coefficients for a
// variable named more than once are summed.
func (b *ModelBuilder) Minimize(vars []BoolVar, coeffs []int64) {
	for i, v := range vars {
		b.objective[v] += coeffs[i]
	}
}

// Build finalizes the model.
func (b *ModelBuilder) Build() *Model {
	return &Model{
		numVars:   b.numVars,
		atMostOne: b.atMostOne,
		exactSums: b.exactSums,
		objective: b.objective,
	}
}
