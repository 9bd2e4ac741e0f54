package models

import (
	"errors"
	"fmt"

	"timetable-service/internal/schedule"
)

// Ошибки структурной валидации входного JSON. Семантические проверки
// (пустые коллекции, превышение вместимости) выполняет валидатор ядра.
var (
	ErrNegativeID        = errors.New("идентификатор не может быть отрицательным")
	ErrWeekDayOutOfRange = errors.New("индекс дня недели вне диапазона [0, 6)")
	ErrNegativeHours     = errors.New("количество часов не может быть отрицательным")
	ErrLessonOutOfRange  = errors.New("адрес пары вне диапазона")
	ErrNoSubjectRequests = errors.New("массив subject_requests пуст")
)

// LessonAddressDTO is the wire shape of one lesson address.
type LessonAddressDTO struct {
	Group  int `json:"group"`
	Lesson int `json:"lesson"`
}

// SubjectRequestDTO is the wire shape of one teaching demand. Classrooms is
// an array indexed by building, each element listing room numbers within
// that building. Lessons lists permitted weekday indices (0 = Monday);
// empty means the full week.
type SubjectRequestDTO struct {
	ID         int     `json:"id"`
	Professor  int     `json:"professor"`
	Complexity int     `json:"complexity"`
	Hours      int     `json:"hours"`
	Groups     []int   `json:"groups"`
	Lessons    []int   `json:"lessons"`
	Classrooms [][]int `json:"classrooms"`
}

// ScheduleDataDTO is the wire shape of the solver input.
type ScheduleDataDTO struct {
	SubjectRequests []SubjectRequestDTO `json:"subject_requests"`
	OccupiedLessons []LessonAddressDTO  `json:"occupied_lessons,omitempty"`
}

// ToDomain performs structural validation and converts the payload into the
// core's ScheduleData. Group, professor, and classroom universes derive
// from what the requests reference.
func (d ScheduleDataDTO) ToDomain() (schedule.ScheduleData, error) {
	if len(d.SubjectRequests) == 0 {
		return schedule.ScheduleData{}, ErrNoSubjectRequests
	}

	requests := make([]schedule.SubjectRequest, 0, len(d.SubjectRequests))
	for _, r := range d.SubjectRequests {
		req, err := r.toDomain()
		if err != nil {
			return schedule.ScheduleData{}, fmt.Errorf("subject request %d: %w", r.ID, err)
		}
		requests = append(requests, req)
	}

	occupied := make([]schedule.LessonAddress, 0, len(d.OccupiedLessons))
	for _, o := range d.OccupiedLessons {
		if o.Group < 0 {
			return schedule.ScheduleData{}, fmt.Errorf("occupied lesson: %w", ErrNegativeID)
		}
		if o.Lesson < 0 || o.Lesson >= schedule.MaxLessonsCount {
			return schedule.ScheduleData{}, fmt.Errorf("occupied lesson: %w", ErrLessonOutOfRange)
		}
		occupied = append(occupied, schedule.LessonAddress{Group: o.Group, Lesson: o.Lesson})
	}

	return schedule.NewScheduleData(requests, occupied), nil
}

func (r SubjectRequestDTO) toDomain() (schedule.SubjectRequest, error) {
	if r.ID < 0 || r.Professor < 0 {
		return schedule.SubjectRequest{}, ErrNegativeID
	}
	if r.Hours < 0 {
		return schedule.SubjectRequest{}, ErrNegativeHours
	}

	days := schedule.EmptyWeekDaySet()
	for _, wd := range r.Lessons {
		if wd < 0 || wd >= schedule.DaysInScheduleWeek {
			return schedule.SubjectRequest{}, ErrWeekDayOutOfRange
		}
		days.Insert(schedule.WeekDay(wd))
	}

	for _, g := range r.Groups {
		if g < 0 {
			return schedule.SubjectRequest{}, ErrNegativeID
		}
	}

	var classrooms []schedule.ClassroomAddress
	for building, rooms := range r.Classrooms {
		for _, room := range rooms {
			if room < 0 {
				return schedule.SubjectRequest{}, ErrNegativeID
			}
			classrooms = append(classrooms, schedule.ClassroomAddress{Building: building, Room: room})
		}
	}

	return schedule.NewSubjectRequest(r.ID, r.Professor, r.Complexity, days, r.Groups, classrooms, r.Hours), nil
}

// ScheduleItemDTO is the wire shape of one solved lesson.
type ScheduleItemDTO struct {
	Address          LessonAddressDTO `json:"address"`
	SubjectRequestID int              `json:"subject_request_id"`
	Classroom        int              `json:"classroom"`
}

// ScheduleResultDTO is the wire shape of the solver output.
type ScheduleResultDTO struct {
	Items []ScheduleItemDTO `json:"items"`
}

// ScheduleResultToDTO converts a core result into its wire shape.
func ScheduleResultToDTO(r schedule.ScheduleResult) ScheduleResultDTO {
	items := make([]ScheduleItemDTO, 0, len(r.Items))
	for _, item := range r.Items {
		items = append(items, ScheduleItemDTO{
			Address:          LessonAddressDTO{Group: item.Address.Group, Lesson: item.Address.Lesson},
			SubjectRequestID: item.SubjectRequestID,
			Classroom:        item.Classroom,
		})
	}
	return ScheduleResultDTO{Items: items}
}

// ToDomain converts a wire result back into the core shape, validating
// lesson ranges. Used by the conflicts endpoint, which diagnoses results
// the caller may have edited by hand.
func (d ScheduleResultDTO) ToDomain() (schedule.ScheduleResult, error) {
	items := make([]schedule.ScheduleItem, 0, len(d.Items))
	for _, item := range d.Items {
		if item.Address.Group < 0 || item.SubjectRequestID < 0 {
			return schedule.ScheduleResult{}, ErrNegativeID
		}
		if item.Address.Lesson < 0 || item.Address.Lesson >= schedule.MaxLessonsCount {
			return schedule.ScheduleResult{}, ErrLessonOutOfRange
		}
		items = append(items, schedule.ScheduleItem{
			Address:          schedule.LessonAddress{Group: item.Address.Group, Lesson: item.Address.Lesson},
			SubjectRequestID: item.SubjectRequestID,
			Classroom:        item.Classroom,
		})
	}
	return schedule.NewScheduleResult(items), nil
}

// OverlappedClassroomDTO, OverlappedProfessorDTO, OverlappedGroupsDTO, and
// ViolatedSubjectRequestDTO mirror the diagnostic records of the core.
type OverlappedClassroomDTO struct {
	Classroom int                `json:"classroom"`
	Lessons   []LessonAddressDTO `json:"lessons"`
}

type OverlappedProfessorDTO struct {
	Professor int                `json:"professor"`
	Lessons   []LessonAddressDTO `json:"lessons"`
}

type OverlappedGroupsDTO struct {
	FirstSubjectID  int   `json:"first_subject_id"`
	SecondSubjectID int   `json:"second_subject_id"`
	Groups          []int `json:"groups"`
}

type ViolatedSubjectRequestDTO struct {
	SubjectRequestID int                `json:"subject_id"`
	Lessons          []LessonAddressDTO `json:"lessons"`
}

// ConflictsDTO bundles the four diagnostic lists the detector produces.
type ConflictsDTO struct {
	OverlappedClassrooms    []OverlappedClassroomDTO    `json:"overlapped_classrooms"`
	OverlappedProfessors    []OverlappedProfessorDTO    `json:"overlapped_professors"`
	OverlappedGroups        []OverlappedGroupsDTO       `json:"overlapped_groups"`
	ViolatedSubjectRequests []ViolatedSubjectRequestDTO `json:"violated_subject_requests"`
}

func lessonsToDTO(in []schedule.LessonAddress) []LessonAddressDTO {
	out := make([]LessonAddressDTO, 0, len(in))
	for _, a := range in {
		out = append(out, LessonAddressDTO{Group: a.Group, Lesson: a.Lesson})
	}
	return out
}

// ConflictsToDTO converts the four detector outputs into one wire bundle.
func ConflictsToDTO(
	classrooms []schedule.OverlappedClassroom,
	professors []schedule.OverlappedProfessor,
	groups []schedule.OverlappedGroups,
	violated []schedule.ViolatedSubjectRequest,
) ConflictsDTO {
	out := ConflictsDTO{
		OverlappedClassrooms:    make([]OverlappedClassroomDTO, 0, len(classrooms)),
		OverlappedProfessors:    make([]OverlappedProfessorDTO, 0, len(professors)),
		OverlappedGroups:        make([]OverlappedGroupsDTO, 0, len(groups)),
		ViolatedSubjectRequests: make([]ViolatedSubjectRequestDTO, 0, len(violated)),
	}
	for _, c := range classrooms {
		out.OverlappedClassrooms = append(out.OverlappedClassrooms, OverlappedClassroomDTO{
			Classroom: c.Classroom,
			Lessons:   lessonsToDTO(c.Lessons),
		})
	}
	for _, p := range professors {
		out.OverlappedProfessors = append(out.OverlappedProfessors, OverlappedProfessorDTO{
			Professor: p.Professor,
			Lessons:   lessonsToDTO(p.Lessons),
		})
	}
	for _, g := range groups {
		out.OverlappedGroups = append(out.OverlappedGroups, OverlappedGroupsDTO{
			FirstSubjectID:  g.FirstSubjectID,
			SecondSubjectID: g.SecondSubjectID,
			Groups:          g.Groups,
		})
	}
	for _, v := range violated {
		out.ViolatedSubjectRequests = append(out.ViolatedSubjectRequests, ViolatedSubjectRequestDTO{
			SubjectRequestID: v.SubjectRequestID,
			Lessons:          lessonsToDTO(v.Lessons),
		})
	}
	return out
}

// Count reports the total number of diagnostic records in the bundle.
func (c ConflictsDTO) Count() int {
	return len(c.OverlappedClassrooms) + len(c.OverlappedProfessors) +
		len(c.OverlappedGroups) + len(c.ViolatedSubjectRequests)
}
