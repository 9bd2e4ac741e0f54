package encoder

import (
	"sort"

	"timetable-service/internal/schedule"
)

// Encoding is the output of Build: the constraint model plus the sparse
// variable table needed to translate a solved assignment back into
// schedule items.
type Encoding struct {
	Model *Model
	Table *VarTable
}

// Build enumerates the feasible decision-variable space of data, emits the
// hard constraints and the soft objective into a fresh model, and returns
// both the model and the variable table.
//
// A variable x[d,g,p,l,c,s] is created only when every one of these holds:
// the weekday of d is permitted by request s, classroom c is permitted by
// s, the (g, d*6+l) slot is not pre-occupied, g is one of s's groups, and p
// is s's professor. The last two prune the bulk of the cross product;
// everything the variable absence encodes (forbidden weekday, forbidden
// classroom, occupied slot, non-member group, wrong professor) needs no
// explicit constraint.
//
// desiredLessonsPerDay feeds the late-slot penalty; any value outside
// [1, MaxLessonsPerDay] is replaced by MaxLessonsPerDay.
func Build(data schedule.ScheduleData, desiredLessonsPerDay int) *Encoding {
	if desiredLessonsPerDay < 1 || desiredLessonsPerDay > schedule.MaxLessonsPerDay {
		desiredLessonsPerDay = schedule.MaxLessonsPerDay
	}

	builder := NewModelBuilder()
	table := &VarTable{}

	profIdx := professorIndexes(data)
	classIdx := classroomIndexes(data)

	fillVarTable(builder, table, data, profIdx)

	var buffer []BoolVar
	buffer = addOneSubjectPerTime(builder, table, data, profIdx, classIdx, buffer)
	buffer = addSubjectHours(builder, table, data, profIdx, classIdx, buffer)
	addMinimizeComplexity(builder, table, data, profIdx, classIdx, buffer)
	addMinimizeLateLessons(builder, table, desiredLessonsPerDay)

	return &Encoding{Model: builder.Build(), Table: table}
}

// professorIndexes maps each subject request (by position) to its
// professor's position in data.Professors.
func professorIndexes(data schedule.ScheduleData) []int {
	professors := data.Professors()
	out := make([]int, data.CountSubjects())
	for si, s := range data.SubjectRequests() {
		out[si] = sort.SearchInts(professors, s.Professor())
	}
	return out
}

// classroomIndexes maps each subject request (by position) to the positions
// of its permitted classrooms in data.Classrooms, ascending.
func classroomIndexes(data schedule.ScheduleData) [][]int {
	out := make([][]int, data.CountSubjects())
	for si, s := range data.SubjectRequests() {
		for _, ca := range s.Classrooms() {
			if ci := data.ClassroomIndex(ca); ci >= 0 {
				out[si] = append(out[si], ci)
			}
		}
	}
	return out
}

// fillVarTable walks the (day, group, professor, lesson, classroom,
// subject) cross product in ascending tuple order, creating a variable for
// every tuple that survives the pruning conditions. The table ends up
// sorted by construction.
func fillVarTable(builder *ModelBuilder, table *VarTable, data schedule.ScheduleData, profIdx []int) {
	groups := data.Groups()
	classrooms := data.Classrooms()
	requests := data.SubjectRequests()

	for d := 0; d < schedule.ScheduleDaysCount; d++ {
		for gi, g := range groups {
			for pi := range data.Professors() {
				for l := 0; l < schedule.MaxLessonsPerDay; l++ {
					for ci, c := range classrooms {
						for si, s := range requests {
							if profIdx[si] != pi ||
								!s.RequestedGroup(g) ||
								!s.RequestedScheduleDay(d) ||
								!s.RequestedClassroom(c) ||
								data.LessonIsOccupied(schedule.LessonAddress{Group: g, Lesson: schedule.LessonIndex(d, l)}) {
								continue
							}
							idx := TupleIndex{Day: d, Group: gi, Professor: pi, Lesson: l, Classroom: ci, Subject: si}
							table.Append(idx, builder.NewBoolVar())
						}
					}
				}
			}
		}
	}
}

// addOneSubjectPerTime emits C1: for every (group, day, lesson) the sum
// over all (professor, classroom, subject) variables is at most one.
func addOneSubjectPerTime(builder *ModelBuilder, table *VarTable, data schedule.ScheduleData, profIdx []int, classIdx [][]int, buffer []BoolVar) []BoolVar {
	for gi := range data.Groups() {
		for d := 0; d < schedule.ScheduleDaysCount; d++ {
			for l := 0; l < schedule.MaxLessonsPerDay; l++ {
				buffer = buffer[:0]
				for si := range data.SubjectRequests() {
					for _, ci := range classIdx[si] {
						idx := TupleIndex{Day: d, Group: gi, Professor: profIdx[si], Lesson: l, Classroom: ci, Subject: si}
						if v, ok := table.Lookup(idx); ok {
							buffer = append(buffer, v)
						}
					}
				}
				builder.AddAtMostOne(buffer)
			}
		}
	}
	return buffer
}

// addSubjectHours emits C2: for every (subject, member group) the sum over
// all (day, lesson, classroom) variables equals the request's demanded
// hours.
func addSubjectHours(builder *ModelBuilder, table *VarTable, data schedule.ScheduleData, profIdx []int, classIdx [][]int, buffer []BoolVar) []BoolVar {
	groups := data.Groups()
	for si, s := range data.SubjectRequests() {
		for gi, g := range groups {
			if !s.RequestedGroup(g) {
				continue
			}
			buffer = buffer[:0]
			for d := 0; d < schedule.ScheduleDaysCount; d++ {
				for l := 0; l < schedule.MaxLessonsPerDay; l++ {
					for _, ci := range classIdx[si] {
						idx := TupleIndex{Day: d, Group: gi, Professor: profIdx[si], Lesson: l, Classroom: ci, Subject: si}
						if v, ok := table.Lookup(idx); ok {
							buffer = append(buffer, v)
						}
					}
				}
			}
			builder.AddEquality(buffer, s.Hours())
		}
	}
	return buffer
}

// addMinimizeLateLessons adds the late-slot penalty: each variable weighs
// its within-day position, plus one when the position is at or past the
// desired daily lesson count, plus one on Saturdays.
func addMinimizeLateLessons(builder *ModelBuilder, table *VarTable, desiredLessonsPerDay int) {
	items := table.Items()
	vars := make([]BoolVar, 0, len(items))
	coeffs := make([]int64, 0, len(items))
	for _, item := range items {
		coeff := int64(item.Index.Lesson)
		if item.Index.Lesson >= desiredLessonsPerDay {
			coeff++
		}
		if schedule.ScheduleDayToWeekDay(item.Index.Day) == schedule.Saturday {
			coeff++
		}
		vars = append(vars, item.Var)
		coeffs = append(coeffs, coeff)
	}
	builder.Minimize(vars, coeffs)
}

// addMinimizeComplexity adds the complexity penalty per (group, day) band:
// every variable in the band weighs its subject's complexity.
func addMinimizeComplexity(builder *ModelBuilder, table *VarTable, data schedule.ScheduleData, profIdx []int, classIdx [][]int, buffer []BoolVar) {
	var coeffs []int64
	for gi := range data.Groups() {
		for d := 0; d < schedule.ScheduleDaysCount; d++ {
			buffer = buffer[:0]
			coeffs = coeffs[:0]
			for si, s := range data.SubjectRequests() {
				complexity := int64(s.Complexity())
				for l := 0; l < schedule.MaxLessonsPerDay; l++ {
					for _, ci := range classIdx[si] {
						idx := TupleIndex{Day: d, Group: gi, Professor: profIdx[si], Lesson: l, Classroom: ci, Subject: si}
						if v, ok := table.Lookup(idx); ok {
							buffer = append(buffer, v)
							coeffs = append(coeffs, complexity)
						}
					}
				}
			}
			if len(buffer) > 0 {
				builder.Minimize(buffer, coeffs)
			}
		}
	}
}
