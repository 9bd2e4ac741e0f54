package solver

import (
	"context"

	"timetable-service/internal/encoder"
	"timetable-service/internal/schedule"

	"github.com/rs/zerolog/log"
)

// Generate runs the full pipeline over data: encode the constraint model,
// solve it with the bundled deterministic engine, and back-translate the
// boolean assignment into a sorted ScheduleResult. An uninitialized engine
// response (infeasible model, engine failure, or deadline expiry with no
// feasible assignment) yields an empty result.
func Generate(ctx context.Context, data schedule.ScheduleData, opts Options) schedule.ScheduleResult {
	return GenerateWithEngine(ctx, NewBacktrackEngine(), data, opts)
}

// GenerateWithEngine is Generate with a caller-supplied engine.
func GenerateWithEngine(ctx context.Context, engine Engine, data schedule.ScheduleData, opts Options) schedule.ScheduleResult {
	enc := encoder.Build(data, opts.DesiredLessonsPerDay)

	resp := engine.Solve(ctx, enc.Model, opts)
	log.Debug().
		Int("variables", enc.Table.Len()).
		Int("exact_sums", len(enc.Model.ExactSums())).
		Int("at_most_one", len(enc.Model.AtMostOne())).
		Bool("initialized", resp.Initialized).
		Int64("objective", resp.Objective).
		Msg("Solver response")

	if !resp.Initialized {
		return schedule.ScheduleResult{}
	}
	return makeScheduleFromResponse(resp, enc.Table, data)
}

// makeScheduleFromResponse walks the variable table in its sorted order and
// emits one ScheduleItem per variable assigned true, so the result ordering
// is fully determined by the assignment.
func makeScheduleFromResponse(resp Response, table *encoder.VarTable, data schedule.ScheduleData) schedule.ScheduleResult {
	groups := data.Groups()
	requests := data.SubjectRequests()

	var items []schedule.ScheduleItem
	for _, entry := range table.Items() {
		if !resp.Values[entry.Var] {
			continue
		}
		idx := entry.Index
		items = append(items, schedule.ScheduleItem{
			Address: schedule.LessonAddress{
				Group:  groups[idx.Group],
				Lesson: schedule.LessonIndex(idx.Day, idx.Lesson),
			},
			SubjectRequestID: requests[idx.Subject].ID(),
			Classroom:        idx.Classroom,
		})
	}
	return schedule.NewScheduleResult(items)
}
