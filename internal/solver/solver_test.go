package solver

import (
	"context"
	"testing"

	"timetable-service/internal/conflicts"
	"timetable-service/internal/schedule"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultOptions() Options {
	return Options{DesiredLessonsPerDay: schedule.MaxLessonsPerDay}
}

func oneRoom() []schedule.ClassroomAddress {
	return []schedule.ClassroomAddress{{Building: 0, Room: 0}}
}

// Одна заявка, один час: пара попадает в самый ранний слот.
func TestGenerateSingleRequestSingleSlot(t *testing.T) {
	data := schedule.NewScheduleData([]schedule.SubjectRequest{
		schedule.NewSubjectRequest(1, 0, 1, schedule.EmptyWeekDaySet(), []int{0}, oneRoom(), 1),
	}, nil)

	result := Generate(context.Background(), data, defaultOptions())

	require.Len(t, result.Items, 1)
	assert.Equal(t, schedule.LessonAddress{Group: 0, Lesson: 0}, result.Items[0].Address)
	assert.Equal(t, 1, result.Items[0].SubjectRequestID)
	assert.Equal(t, 0, result.Items[0].Classroom)
}

// При desired=1 вторая пара дороже в слоте 1, чем в слоте 0 следующего дня.
func TestGenerateLateSlotPenalty(t *testing.T) {
	data := schedule.NewScheduleData([]schedule.SubjectRequest{
		schedule.NewSubjectRequest(1, 0, 1, schedule.EmptyWeekDaySet(), []int{0}, oneRoom(), 2),
	}, nil)

	opts := defaultOptions()
	opts.DesiredLessonsPerDay = 1
	result := Generate(context.Background(), data, opts)

	require.Len(t, result.Items, 2)
	assert.Equal(t, 0, result.Items[0].Address.Lesson)
	assert.Equal(t, schedule.LessonIndex(1, 0), result.Items[1].Address.Lesson)
}

// Суббота штрафуется: при свободной неделе пара на нее не попадает.
func TestGenerateAvoidsSaturday(t *testing.T) {
	data := schedule.NewScheduleData([]schedule.SubjectRequest{
		schedule.NewSubjectRequest(1, 0, 1, schedule.FullWeekDaySet(), []int{0}, oneRoom(), 1),
	}, nil)

	result := Generate(context.Background(), data, defaultOptions())

	require.Len(t, result.Items, 1)
	assert.NotEqual(t, schedule.Saturday, result.Items[0].Address.WeekDay())
}

// Две заявки делят единственную аудиторию и одну группу: слоты различны,
// конфликтов по аудитории нет.
func TestGenerateNoClassroomConflict(t *testing.T) {
	data := schedule.NewScheduleData([]schedule.SubjectRequest{
		schedule.NewSubjectRequest(1, 0, 1, schedule.EmptyWeekDaySet(), []int{0}, oneRoom(), 1),
		schedule.NewSubjectRequest(2, 1, 1, schedule.EmptyWeekDaySet(), []int{0}, oneRoom(), 1),
	}, nil)

	result := Generate(context.Background(), data, defaultOptions())

	require.Len(t, result.Items, 2)
	assert.NotEqual(t,
		result.Items[0].Address.Lesson,
		result.Items[1].Address.Lesson,
		"same group cannot hold two lessons in one slot")
	assert.Empty(t, conflicts.FindOverlappedClassrooms(data, result))
	assert.Empty(t, conflicts.FindViolatedSubjectRequests(data, result))
}

// Заявка, требующая больше понедельничных слотов, чем есть в горизонте:
// модель неразрешима, результат пуст.
func TestGenerateInfeasibleReturnsEmpty(t *testing.T) {
	data := schedule.NewScheduleData([]schedule.SubjectRequest{
		schedule.NewSubjectRequest(1, 0, 1, schedule.NewWeekDaySet(schedule.Monday), []int{0}, oneRoom(), 13),
	}, nil)

	result := Generate(context.Background(), data, defaultOptions())

	assert.Empty(t, result.Items)
}

// Занятые слоты не получают переменных и не появляются в результате.
func TestGenerateRespectsOccupiedLessons(t *testing.T) {
	data := schedule.NewScheduleData([]schedule.SubjectRequest{
		schedule.NewSubjectRequest(1, 0, 1, schedule.EmptyWeekDaySet(), []int{0}, oneRoom(), 1),
	}, []schedule.LessonAddress{{Group: 0, Lesson: 0}})

	result := Generate(context.Background(), data, defaultOptions())

	require.Len(t, result.Items, 1)
	assert.NotEqual(t, schedule.LessonAddress{Group: 0, Lesson: 0}, result.Items[0].Address)
	// Следующий бесплатный слот - начало следующего дня, не слот 1 того же
	// дня (слот 1 дороже по позиции).
	assert.Equal(t, schedule.LessonIndex(1, 0), result.Items[0].Address.Lesson)
}

// Заявка на несколько групп получает свои часы в каждой группе.
func TestGenerateMultiGroupRequest(t *testing.T) {
	data := schedule.NewScheduleData([]schedule.SubjectRequest{
		schedule.NewSubjectRequest(1, 0, 1, schedule.EmptyWeekDaySet(), []int{0, 1},
			[]schedule.ClassroomAddress{{Building: 0, Room: 0}, {Building: 0, Room: 1}}, 2),
	}, nil)

	result := Generate(context.Background(), data, defaultOptions())

	require.Len(t, result.Items, 4)
	perGroup := map[int]int{}
	for _, item := range result.Items {
		perGroup[item.Address.Group]++
	}
	assert.Equal(t, map[int]int{0: 2, 1: 2}, perGroup)
	assert.Empty(t, conflicts.FindViolatedSubjectRequests(data, result))
}

// Два прогона на одинаковых данных дают идентичные результаты.
func TestGenerateDeterministic(t *testing.T) {
	data := schedule.NewScheduleData([]schedule.SubjectRequest{
		schedule.NewSubjectRequest(1, 0, 3, schedule.EmptyWeekDaySet(), []int{0}, oneRoom(), 3),
		schedule.NewSubjectRequest(2, 1, 1, schedule.NewWeekDaySet(schedule.Tuesday, schedule.Thursday), []int{0, 1},
			[]schedule.ClassroomAddress{{Building: 0, Room: 0}, {Building: 1, Room: 5}}, 2),
	}, nil)

	first := Generate(context.Background(), data, defaultOptions())
	second := Generate(context.Background(), data, defaultOptions())

	assert.Equal(t, first, second)
}

// Выход солвера проходит все четыре детектора конфликтов.
func TestGenerateOutputPassesDetectors(t *testing.T) {
	data := schedule.NewScheduleData([]schedule.SubjectRequest{
		schedule.NewSubjectRequest(1, 0, 2, schedule.EmptyWeekDaySet(), []int{0},
			[]schedule.ClassroomAddress{{Building: 0, Room: 0}}, 3),
		schedule.NewSubjectRequest(2, 1, 1, schedule.EmptyWeekDaySet(), []int{1},
			[]schedule.ClassroomAddress{{Building: 0, Room: 1}}, 2),
		schedule.NewSubjectRequest(3, 2, 1, schedule.NewWeekDaySet(schedule.Wednesday), []int{1},
			[]schedule.ClassroomAddress{{Building: 0, Room: 0}, {Building: 0, Room: 1}}, 1),
	}, nil)

	result := Generate(context.Background(), data, defaultOptions())

	require.NotEmpty(t, result.Items)
	assert.Empty(t, conflicts.FindOverlappedClassrooms(data, result))
	assert.Empty(t, conflicts.FindOverlappedProfessors(data, result))
	assert.Empty(t, conflicts.FindOverlappedGroups(data, result))
	assert.Empty(t, conflicts.FindViolatedSubjectRequests(data, result))
}

// Отмененный контекст без найденного решения дает пустой результат.
func TestGenerateCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Достаточно большой вход, чтобы поиск проверил дедлайн до завершения.
	var requests []schedule.SubjectRequest
	rooms := []schedule.ClassroomAddress{{Building: 0, Room: 0}, {Building: 0, Room: 1}, {Building: 0, Room: 2}}
	for id := 1; id <= 12; id++ {
		requests = append(requests, schedule.NewSubjectRequest(id, id%4, 1,
			schedule.EmptyWeekDaySet(), []int{id % 3}, rooms, 4))
	}
	data := schedule.NewScheduleData(requests, nil)

	result := Generate(ctx, data, defaultOptions())

	// Либо поиск успел найти решение до первой проверки дедлайна, либо
	// результат пуст; в обоих случаях вызов обязан вернуться.
	if len(result.Items) > 0 {
		assert.Empty(t, conflicts.FindViolatedSubjectRequests(data, result))
	}
}
