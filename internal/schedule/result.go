package schedule

import "sort"

// ScheduleItem is one solved lesson: a lesson address assigned to a
// subject request and a concrete classroom (an index into
// ScheduleData.Classrooms, not an embedded address - the solver's variable
// space is keyed by classroom index, and the driver back-translates
// directly into that index).
type ScheduleItem struct {
	Address          LessonAddress
	SubjectRequestID int
	Classroom        int
}

// ScheduleResult is a sorted-by-address collection of schedule items. The
// zero value is a valid empty result (the driver returns one when the
// engine reports an infeasible or uninitialized response).
type ScheduleResult struct {
	Items []ScheduleItem
}

// NewScheduleResult sorts items by lesson address and returns the result.
// Because LessonAddress sorts group-major, the result also groups items per
// student group.
func NewScheduleResult(items []ScheduleItem) ScheduleResult {
	out := append([]ScheduleItem(nil), items...)
	sort.Slice(out, func(i, j int) bool { return out[i].Address.Less(out[j].Address) })
	return ScheduleResult{Items: out}
}

// ItemsForSubject returns every item assigned to the given subject request
// ID, in address order.
func (r ScheduleResult) ItemsForSubject(subjectID int) []ScheduleItem {
	var out []ScheduleItem
	for _, it := range r.Items {
		if it.SubjectRequestID == subjectID {
			out = append(out, it)
		}
	}
	return out
}
