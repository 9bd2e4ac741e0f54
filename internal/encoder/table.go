package encoder

import "sort"

// TupleIndex keys one decision variable by positional indices:
// Day in [0, ScheduleDaysCount), Lesson in [0, MaxLessonsPerDay), and
// Group, Professor, Classroom, Subject as positions within the sorted
// universes of the ScheduleData being encoded. Ordered lexicographically in
// field order.
type TupleIndex struct {
	Day       int
	Group     int
	Professor int
	Lesson    int
	Classroom int
	Subject   int
}

// Less reports whether a sorts before b.
func (a TupleIndex) Less(b TupleIndex) bool {
	if a.Day != b.Day {
		return a.Day < b.Day
	}
	if a.Group != b.Group {
		return a.Group < b.Group
	}
	if a.Professor != b.Professor {
		return a.Professor < b.Professor
	}
	if a.Lesson != b.Lesson {
		return a.Lesson < b.Lesson
	}
	if a.Classroom != b.Classroom {
		return a.Classroom < b.Classroom
	}
	return a.Subject < b.Subject
}

// VarTableItem is one (tuple, variable) pair.
type VarTableItem struct {
	Index TupleIndex
	Var   BoolVar
}

// VarTable is the sparse variable table: a sorted vector of (tuple,
// variable) pairs with binary-search lookup. It is built once by appending
// in ascending tuple order during variable-space enumeration, then read-only
// during constraint emission and back-translation. A sorted vector is used
// instead of a map: the key is small, the table never changes after
// construction, and lower-bound lookups stay cache-friendly.
type VarTable struct {
	items []VarTableItem
}

// Append records a new pair. Callers must append in strictly ascending
// tuple order; the enumeration loops in Build do so naturally.
func (t *VarTable) Append(idx TupleIndex, v BoolVar) {
	t.items = append(t.items, VarTableItem{Index: idx, Var: v})
}

// Lookup finds the variable for idx, if one was created.
func (t *VarTable) Lookup(idx TupleIndex) (BoolVar, bool) {
	i := sort.Search(len(t.items), func(i int) bool { return !t.items[i].Index.Less(idx) })
	if i < len(t.items) && t.items[i].Index == idx {
		return t.items[i].Var, true
	}
	return 0, false
}

// Items exposes the table in its sorted order.
func (t *VarTable) Items() []VarTableItem { return t.items }

func (t *VarTable) Len() int { return len(t.items) }
