package encoder

import (
	"testing"

	"timetable-service/internal/schedule"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func singleRequestData(days schedule.WeekDaySet, hours int) schedule.ScheduleData {
	return schedule.NewScheduleData([]schedule.SubjectRequest{
		schedule.NewSubjectRequest(1, 0, 1, days, []int{0},
			[]schedule.ClassroomAddress{{Building: 0, Room: 0}}, hours),
	}, nil)
}

func TestBuildVariableSpaceFullWeek(t *testing.T) {
	enc := Build(singleRequestData(schedule.EmptyWeekDaySet(), 1), schedule.MaxLessonsPerDay)

	// 12 дней * 6 слотов * 1 группа * 1 аудитория * 1 заявка.
	assert.Equal(t, 72, enc.Table.Len())
	assert.Equal(t, 72, enc.Model.NumVars())
}

func TestBuildPrunesForbiddenWeekdays(t *testing.T) {
	enc := Build(singleRequestData(schedule.NewWeekDaySet(schedule.Monday), 1), schedule.MaxLessonsPerDay)

	// Понедельник встречается дважды в 12-дневном горизонте.
	assert.Equal(t, 2*schedule.MaxLessonsPerDay, enc.Table.Len())
	for _, item := range enc.Table.Items() {
		assert.Equal(t, schedule.Monday, schedule.ScheduleDayToWeekDay(item.Index.Day))
	}
}

func TestBuildPrunesOccupiedLessons(t *testing.T) {
	data := schedule.NewScheduleData([]schedule.SubjectRequest{
		schedule.NewSubjectRequest(1, 0, 1, schedule.EmptyWeekDaySet(), []int{0},
			[]schedule.ClassroomAddress{{Building: 0, Room: 0}}, 1),
	}, []schedule.LessonAddress{{Group: 0, Lesson: 0}})

	enc := Build(data, schedule.MaxLessonsPerDay)

	assert.Equal(t, 71, enc.Table.Len())
	_, ok := enc.Table.Lookup(TupleIndex{Day: 0, Group: 0, Professor: 0, Lesson: 0, Classroom: 0, Subject: 0})
	assert.False(t, ok, "variable must not exist for a pre-occupied slot")
}

func TestBuildPrunesNonMemberGroupsAndProfessors(t *testing.T) {
	// Две заявки у разных преподавателей и разных групп: переменные
	// существуют только для своих комбинаций.
	data := schedule.NewScheduleData([]schedule.SubjectRequest{
		schedule.NewSubjectRequest(1, 10, 1, schedule.EmptyWeekDaySet(), []int{0},
			[]schedule.ClassroomAddress{{Building: 0, Room: 0}}, 1),
		schedule.NewSubjectRequest(2, 20, 1, schedule.EmptyWeekDaySet(), []int{1},
			[]schedule.ClassroomAddress{{Building: 0, Room: 0}}, 1),
	}, nil)

	enc := Build(data, schedule.MaxLessonsPerDay)

	// На каждую заявку: 12 дней * 6 слотов * 1 группа * 1 аудитория.
	assert.Equal(t, 2*72, enc.Table.Len())
	for _, item := range enc.Table.Items() {
		// Заявка s=0 (id 1): группа 0, преподаватель с индексом 0 (id 10).
		// Заявка s=1 (id 2): группа 1, преподаватель с индексом 1 (id 20).
		assert.Equal(t, item.Index.Subject, item.Index.Group)
		assert.Equal(t, item.Index.Subject, item.Index.Professor)
	}
}

func TestTableLookup(t *testing.T) {
	enc := Build(singleRequestData(schedule.EmptyWeekDaySet(), 1), schedule.MaxLessonsPerDay)

	v, ok := enc.Table.Lookup(TupleIndex{Day: 3, Group: 0, Professor: 0, Lesson: 2, Classroom: 0, Subject: 0})
	require.True(t, ok)
	assert.GreaterOrEqual(t, int(v), 0)

	_, ok = enc.Table.Lookup(TupleIndex{Day: 12, Group: 0, Professor: 0, Lesson: 0, Classroom: 0, Subject: 0})
	assert.False(t, ok)
}

func TestHoursConstraint(t *testing.T) {
	enc := Build(singleRequestData(schedule.EmptyWeekDaySet(), 3), schedule.MaxLessonsPerDay)

	sums := enc.Model.ExactSums()
	require.Len(t, sums, 1)
	assert.Equal(t, 3, sums[0].Sum)
	assert.Len(t, sums[0].Vars, 72)
}

func TestHoursConstraintPerGroup(t *testing.T) {
	data := schedule.NewScheduleData([]schedule.SubjectRequest{
		schedule.NewSubjectRequest(1, 0, 1, schedule.EmptyWeekDaySet(), []int{0, 1},
			[]schedule.ClassroomAddress{{Building: 0, Room: 0}}, 2),
	}, nil)

	enc := Build(data, schedule.MaxLessonsPerDay)

	// Одно равенство на каждую группу заявки.
	require.Len(t, enc.Model.ExactSums(), 2)
	for _, es := range enc.Model.ExactSums() {
		assert.Equal(t, 2, es.Sum)
	}
}

func TestLateSlotObjective(t *testing.T) {
	// desired = 1: слот 0 бесплатный, слот 1 стоит 1 + 1 (превышение).
	enc := Build(singleRequestData(schedule.EmptyWeekDaySet(), 1), 1)

	v0, ok := enc.Table.Lookup(TupleIndex{Day: 0, Group: 0, Professor: 0, Lesson: 0, Classroom: 0, Subject: 0})
	require.True(t, ok)
	v1, ok := enc.Table.Lookup(TupleIndex{Day: 0, Group: 0, Professor: 0, Lesson: 1, Classroom: 0, Subject: 0})
	require.True(t, ok)
	vSat, ok := enc.Table.Lookup(TupleIndex{Day: 5, Group: 0, Professor: 0, Lesson: 0, Classroom: 0, Subject: 0})
	require.True(t, ok)

	// Каждая переменная также несет complexity=1 от штрафа сложности.
	assert.Equal(t, int64(1), enc.Model.ObjectiveCoeff(v0), "slot 0: only complexity")
	assert.Equal(t, int64(3), enc.Model.ObjectiveCoeff(v1), "slot 1: position + over-cap + complexity")
	assert.Equal(t, int64(2), enc.Model.ObjectiveCoeff(vSat), "saturday slot 0: saturday + complexity")
}

func TestObjectiveAccumulatesComplexity(t *testing.T) {
	data := schedule.NewScheduleData([]schedule.SubjectRequest{
		schedule.NewSubjectRequest(1, 0, 5, schedule.EmptyWeekDaySet(), []int{0},
			[]schedule.ClassroomAddress{{Building: 0, Room: 0}}, 1),
	}, nil)

	enc := Build(data, schedule.MaxLessonsPerDay)

	v, ok := enc.Table.Lookup(TupleIndex{Day: 0, Group: 0, Professor: 0, Lesson: 0, Classroom: 0, Subject: 0})
	require.True(t, ok)
	// Слот 0 буднего дня при desired=6: только вклад сложности.
	assert.Equal(t, int64(5), enc.Model.ObjectiveCoeff(v))
}

func TestOneSubjectPerTimeConstraint(t *testing.T) {
	// Две заявки одной группы у одного преподавателя: в каждом слоте
	// группы допустима максимум одна из них.
	data := schedule.NewScheduleData([]schedule.SubjectRequest{
		schedule.NewSubjectRequest(1, 0, 1, schedule.EmptyWeekDaySet(), []int{0},
			[]schedule.ClassroomAddress{{Building: 0, Room: 0}}, 1),
		schedule.NewSubjectRequest(2, 0, 1, schedule.EmptyWeekDaySet(), []int{0},
			[]schedule.ClassroomAddress{{Building: 0, Room: 0}}, 1),
	}, nil)

	enc := Build(data, schedule.MaxLessonsPerDay)

	// 12 дней * 6 слотов, в каждой группе по две кандидатные переменные.
	assert.Len(t, enc.Model.AtMostOne(), 72)
	for _, group := range enc.Model.AtMostOne() {
		assert.Len(t, group, 2)
	}
}
