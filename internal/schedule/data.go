package schedule

import "sort"

// ScheduleData is the immutable solver input: the universe of groups,
// professors, and classrooms referenced by a set of subject requests, plus
// any lesson addresses the caller has pre-blocked for external events.
type ScheduleData struct {
	groups          []int
	professors      []int
	classrooms      []ClassroomAddress
	subjectRequests []SubjectRequest
	occupiedLessons []LessonAddress
}

// NewScheduleData derives the group, professor, and classroom universes
// from the union of what the subject requests reference, mirroring the
// single-argument construction path used when a request list is the only
// thing the wire format carries (see ScheduleDataSerialization in the
// scheduler this package is modeled on). occupiedLessons pre-blocks lesson
// addresses regardless of whether any request references them.
func NewScheduleData(subjectRequests []SubjectRequest, occupiedLessons []LessonAddress) ScheduleData {
	var groups, professors []int
	var classrooms []ClassroomAddress
	for _, r := range subjectRequests {
		groups = append(groups, r.Groups()...)
		professors = append(professors, r.Professor())
		classrooms = append(classrooms, r.Classrooms()...)
	}
	return newScheduleData(groups, professors, classrooms, subjectRequests, occupiedLessons)
}

// NewScheduleDataWithUniverse builds a ScheduleData from explicit group,
// professor, and classroom universes rather than deriving them from the
// requests. Useful when the caller wants to allow resources (e.g. an empty
// classroom) that no request currently references.
func NewScheduleDataWithUniverse(groups, professors []int, classrooms []ClassroomAddress, subjectRequests []SubjectRequest, occupiedLessons []LessonAddress) ScheduleData {
	return newScheduleData(groups, professors, classrooms, subjectRequests, occupiedLessons)
}

func newScheduleData(groups, professors []int, classrooms []ClassroomAddress, subjectRequests []SubjectRequest, occupiedLessons []LessonAddress) ScheduleData {
	reqs := append([]SubjectRequest(nil), subjectRequests...)
	sort.Slice(reqs, func(i, j int) bool { return reqs[i].ID() < reqs[j].ID() })
	if len(reqs) > 1 {
		n := 1
		for i := 1; i < len(reqs); i++ {
			if reqs[i].ID() != reqs[n-1].ID() {
				reqs[n] = reqs[i]
				n++
			}
		}
		reqs = reqs[:n]
	}

	occ := append([]LessonAddress(nil), occupiedLessons...)
	sort.Slice(occ, func(i, j int) bool { return occ[i].Less(occ[j]) })
	if len(occ) > 1 {
		n := 1
		for i := 1; i < len(occ); i++ {
			if occ[i] != occ[n-1] {
				occ[n] = occ[i]
				n++
			}
		}
		occ = occ[:n]
	}

	return ScheduleData{
		groups:          sortUniqueInts(groups),
		professors:      sortUniqueInts(professors),
		classrooms:      sortUniqueClassrooms(classrooms),
		subjectRequests: reqs,
		occupiedLessons: occ,
	}
}

func (d ScheduleData) Groups() []int { return d.groups }
func (d ScheduleData) Professors() []int { return d.professors }
func (d ScheduleData) Classrooms() []ClassroomAddress { return d.classrooms }
func (d ScheduleData) SubjectRequests() []SubjectRequest { return d.subjectRequests }
func (d ScheduleData) OccupiedLessons() []LessonAddress { return d.occupiedLessons }
func (d ScheduleData) CountSubjects() int { return len(d.subjectRequests) }

// LessonIsOccupied reports whether the caller has pre-blocked this address.
func (d ScheduleData) LessonIsOccupied(addr LessonAddress) bool {
	i := sort.Search(len(d.occupiedLessons), func(i int) bool { return !d.occupiedLessons[i].Less(addr) })
	return i < len(d.occupiedLessons) && d.occupiedLessons[i] == addr
}

// SubjectRequestByID looks up a request by its ID.
func (d ScheduleData) SubjectRequestByID(id int) (SubjectRequest, bool) {
	i := sort.Search(len(d.subjectRequests), func(i int) bool { return d.subjectRequests[i].ID() >= id })
	if i < len(d.subjectRequests) && d.subjectRequests[i].ID() == id {
		return d.subjectRequests[i], true
	}
	return SubjectRequest{}, false
}

// ClassroomIndex returns the position of ca in the sorted classroom
// universe, or -1 if it is not present.
func (d ScheduleData) ClassroomIndex(ca ClassroomAddress) int {
	i := sort.Search(len(d.classrooms), func(i int) bool { return !d.classrooms[i].Less(ca) })
	if i < len(d.classrooms) && d.classrooms[i] == ca {
		return i
	}
	return -1
}
