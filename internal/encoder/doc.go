// Package encoder translates a schedule.ScheduleData into a boolean
// constraint model: it enumerates the sparse space of feasible
// (day, group, professor, lesson, classroom, subject) decision variables,
// emits the hard one-lesson-per-group-time and hours-demand constraints,
// and accumulates the soft late-slot and complexity penalties into a single
// linear minimization objective. The resulting Model is engine-agnostic;
// the companion VarTable maps solved booleans back onto the domain.
package encoder
