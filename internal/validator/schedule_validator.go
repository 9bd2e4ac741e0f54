package validator

import (
	"timetable-service/internal/schedule"
)

// Validate выполняет дешевые структурные проверки ScheduleData до запуска
// солвера и возвращает первое найденное нарушение.
//
// TooManyLessonsRequested срабатывает, когда суммарное количество
// запрошенных пар по всем заявкам превышает физическую вместимость сетки
// (MaxLessonsCount слотов на каждую группу). Остальные проверки - на
// непустоту обязательных коллекций.
func Validate(data schedule.ScheduleData) schedule.ValidationResult {
	if len(data.Groups()) == 0 {
		return schedule.NoGroups
	}
	if len(data.Professors()) == 0 {
		return schedule.NoProfessors
	}
	if len(data.Classrooms()) == 0 {
		return schedule.NoClassrooms
	}
	if data.CountSubjects() == 0 {
		return schedule.NoSubjects
	}
	if totalRequestedLessons(data) > schedule.MaxLessonsCount*len(data.Groups()) {
		return schedule.TooManyLessonsRequested
	}
	return schedule.Ok
}

// totalRequestedLessons считает, сколько слотов суммарно требуют все заявки:
// каждая группа заявки занимает Hours слотов независимо от остальных групп.
func totalRequestedLessons(data schedule.ScheduleData) int {
	total := 0
	for _, r := range data.SubjectRequests() {
		total += r.Hours() * len(r.Groups())
	}
	return total
}
