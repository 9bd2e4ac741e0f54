package schedule

import "sort"

// SubjectRequest is one teaching demand: a professor teaching a subject to
// a set of student groups for a number of weekly lesson-slots, restricted
// to a permitted set of weekdays and classrooms.
//
// Groups and Classrooms are always sorted and deduplicated by the
// constructor. Hours is carried explicitly on the request rather than
// derived from (professor, group) membership, so that the hours-demand
// constraint (C2 in the encoder) is self-contained: required_hours(s, g)
// == s.Hours for every g in s.Groups.
type SubjectRequest struct {
	id         int
	professor  int
	complexity int
	hours      int
	days       WeekDaySet
	groups     []int
	classrooms []ClassroomAddress
}

// NewSubjectRequest builds a SubjectRequest, sorting and deduplicating
// groups and classrooms. Groups and classrooms must each be non-empty;
// callers that violate this will have it surfaced by Validate, not here -
// construction itself never rejects input, it only normalizes it.
func NewSubjectRequest(id, professor, complexity int, days WeekDaySet, groups []int, classrooms []ClassroomAddress, hours int) SubjectRequest {
	g := sortUniqueInts(groups)
	c := sortUniqueClassrooms(classrooms)
	return SubjectRequest{
		id:         id,
		professor:  professor,
		complexity: complexity,
		hours:      hours,
		days:       days,
		groups:     g,
		classrooms: c,
	}
}

func (s SubjectRequest) ID() int { return s.id }
func (s SubjectRequest) Professor() int { return s.professor }
func (s SubjectRequest) Complexity() int { return s.complexity }
func (s SubjectRequest) Hours() int { return s.hours }
func (s SubjectRequest) Days() WeekDaySet { return s.days }
func (s SubjectRequest) Groups() []int { return s.groups }
func (s SubjectRequest) Classrooms() []ClassroomAddress { return s.classrooms }

// RequestedGroup reports whether g is among the groups this request serves.
func (s SubjectRequest) RequestedGroup(g int) bool {
	i := sort.SearchInts(s.groups, g)
	return i < len(s.groups) && s.groups[i] == g
}

// RequestedClassroom reports whether ca is a permitted classroom for this
// request.
func (s SubjectRequest) RequestedClassroom(ca ClassroomAddress) bool {
	i := sort.Search(len(s.classrooms), func(i int) bool { return !s.classrooms[i].Less(ca) })
	return i < len(s.classrooms) && s.classrooms[i] == ca
}

// Requested reports whether weekday d is permitted (an empty Days set
// permits every weekday).
func (s SubjectRequest) Requested(d WeekDay) bool { return s.days.Contains(d) }

// RequestedScheduleDay reports whether the given absolute schedule day
// (0..ScheduleDaysCount) maps to a permitted weekday.
func (s SubjectRequest) RequestedScheduleDay(day int) bool {
	return s.days.Contains(ScheduleDayToWeekDay(day))
}

func sortUniqueInts(in []int) []int {
	out := append([]int(nil), in...)
	sort.Ints(out)
	return dedupeInts(out)
}

func dedupeInts(sorted []int) []int {
	if len(sorted) == 0 {
		return sorted
	}
	n := 1
	for i := 1; i < len(sorted); i++ {
		if sorted[i] != sorted[n-1] {
			sorted[n] = sorted[i]
			n++
		}
	}
	return sorted[:n]
}

func sortUniqueClassrooms(in []ClassroomAddress) []ClassroomAddress {
	out := append([]ClassroomAddress(nil), in...)
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	if len(out) == 0 {
		return out
	}
	n := 1
	for i := 1; i < len(out); i++ {
		if out[i] != out[n-1] {
			out[n] = out[i]
			n++
		}
	}
	return out[:n]
}
