package schedule

// Diagnostic records produced by the conflict detectors. They form a closed
// set of variants: each detector emits exactly one of these shapes, sorted
// by its primary key.

// OverlappedClassroom reports one classroom claimed by more than one lesson
// at the same (day, slot). Classroom is an index into
// ScheduleData.Classrooms, matching ScheduleItem.Classroom.
type OverlappedClassroom struct {
	Classroom int
	Lessons   []LessonAddress
}

// OverlappedProfessor reports one professor booked into more than one
// lesson at the same (day, slot).
type OverlappedProfessor struct {
	Professor int
	Lessons   []LessonAddress
}

// OverlappedGroups reports two distinct subject requests claiming
// overlapping group sets in the same time-slot. This is a data-model
// inconsistency rather than a solver violation: the one-lesson-per-group
// constraint already forbids double-booking a single group within one
// request's scope.
type OverlappedGroups struct {
	FirstSubjectID  int
	SecondSubjectID int
	Groups          []int
}

// ViolatedSubjectRequest reports a subject request whose placed items break
// one of its own constraints: wrong hour count, forbidden weekday, or
// forbidden classroom. Lessons holds the offending addresses.
type ViolatedSubjectRequest struct {
	SubjectRequestID int
	Lessons          []LessonAddress
}
