// Package conflicts recomputes resource overlaps and per-request violations
// over a (ScheduleData, ScheduleResult) pair. The four detectors are pure,
// order-independent functions; each returns records sorted by its primary
// key. They serve both as the post-solve correctness check and as the
// user-facing diagnostic surface for hand-edited or degraded results.
package conflicts

import (
	"sort"

	"timetable-service/internal/schedule"
)

// timeOf collapses a lesson address onto its group-independent time
// coordinate: two addresses share a physical time-slot iff their day*6+slot
// match, regardless of group.
func timeOf(addr schedule.LessonAddress) int {
	return schedule.LessonIndex(addr.Day(), addr.Slot())
}

type classroomTimeKey struct {
	classroom int
	time      int
}

// FindOverlappedClassrooms reports every classroom claimed by more than one
// item at the same (day, slot). One record per (classroom, time) bucket,
// sorted by classroom then time.
func FindOverlappedClassrooms(data schedule.ScheduleData, result schedule.ScheduleResult) []schedule.OverlappedClassroom {
	buckets := make(map[classroomTimeKey][]schedule.LessonAddress)
	for _, item := range result.Items {
		key := classroomTimeKey{classroom: item.Classroom, time: timeOf(item.Address)}
		buckets[key] = append(buckets[key], item.Address)
	}

	keys := make([]classroomTimeKey, 0, len(buckets))
	for key, lessons := range buckets {
		if len(lessons) > 1 {
			keys = append(keys, key)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].classroom != keys[j].classroom {
			return keys[i].classroom < keys[j].classroom
		}
		return keys[i].time < keys[j].time
	})

	out := make([]schedule.OverlappedClassroom, 0, len(keys))
	for _, key := range keys {
		out = append(out, schedule.OverlappedClassroom{
			Classroom: key.classroom,
			Lessons:   sortedLessons(buckets[key]),
		})
	}
	return out
}

type professorTimeKey struct {
	professor int
	time      int
}

// FindOverlappedProfessors resolves each item to its request's professor
// and reports professors booked into more than one item at the same
// (day, slot). Items referencing an unknown subject request are skipped;
// FindViolatedSubjectRequests surfaces those separately.
func FindOverlappedProfessors(data schedule.ScheduleData, result schedule.ScheduleResult) []schedule.OverlappedProfessor {
	buckets := make(map[professorTimeKey][]schedule.LessonAddress)
	for _, item := range result.Items {
		req, ok := data.SubjectRequestByID(item.SubjectRequestID)
		if !ok {
			continue
		}
		key := professorTimeKey{professor: req.Professor(), time: timeOf(item.Address)}
		buckets[key] = append(buckets[key], item.Address)
	}

	keys := make([]professorTimeKey, 0, len(buckets))
	for key, lessons := range buckets {
		if len(lessons) > 1 {
			keys = append(keys, key)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].professor != keys[j].professor {
			return keys[i].professor < keys[j].professor
		}
		return keys[i].time < keys[j].time
	})

	out := make([]schedule.OverlappedProfessor, 0, len(keys))
	for _, key := range keys {
		out = append(out, schedule.OverlappedProfessor{
			Professor: key.professor,
			Lessons:   sortedLessons(buckets[key]),
		})
	}
	return out
}

type subjectPair struct {
	first  int
	second int
}

// FindOverlappedGroups reports every pair of distinct subject requests that
// both claim overlapping group sets in the same time-slot. One record per
// (first, second) pair with first < second, sorted by first then second.
func FindOverlappedGroups(data schedule.ScheduleData, result schedule.ScheduleResult) []schedule.OverlappedGroups {
	byTime := make(map[int][]int) // time -> subject request IDs placed there
	for _, item := range result.Items {
		t := timeOf(item.Address)
		byTime[t] = append(byTime[t], item.SubjectRequestID)
	}

	pairs := make(map[subjectPair][]int)
	for _, ids := range byTime {
		ids = dedupeSortedCopy(ids)
		for i := 0; i < len(ids); i++ {
			for j := i + 1; j < len(ids); j++ {
				pair := subjectPair{first: ids[i], second: ids[j]}
				if _, seen := pairs[pair]; seen {
					continue
				}
				first, ok1 := data.SubjectRequestByID(pair.first)
				second, ok2 := data.SubjectRequestByID(pair.second)
				if !ok1 || !ok2 {
					continue
				}
				if shared := intersectSortedInts(first.Groups(), second.Groups()); len(shared) > 0 {
					pairs[pair] = shared
				}
			}
		}
	}

	keys := make([]subjectPair, 0, len(pairs))
	for pair := range pairs {
		keys = append(keys, pair)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].first != keys[j].first {
			return keys[i].first < keys[j].first
		}
		return keys[i].second < keys[j].second
	})

	out := make([]schedule.OverlappedGroups, 0, len(keys))
	for _, pair := range keys {
		out = append(out, schedule.OverlappedGroups{
			FirstSubjectID:  pair.first,
			SecondSubjectID: pair.second,
			Groups:          pairs[pair],
		})
	}
	return out
}

// FindViolatedSubjectRequests checks every subject request against its own
// placed items: the item count must equal the demanded hours summed over
// the request's groups, and every item must land on a permitted weekday in
// a permitted classroom. Items referencing an unknown request ID are
// violations of that ID. Records are sorted by subject request ID.
func FindViolatedSubjectRequests(data schedule.ScheduleData, result schedule.ScheduleResult) []schedule.ViolatedSubjectRequest {
	itemsByID := make(map[int][]schedule.ScheduleItem)
	for _, item := range result.Items {
		itemsByID[item.SubjectRequestID] = append(itemsByID[item.SubjectRequestID], item)
	}

	violated := make(map[int][]schedule.LessonAddress)

	for _, req := range data.SubjectRequests() {
		items := itemsByID[req.ID()]
		var offending []schedule.LessonAddress

		for _, item := range items {
			wrongDay := !req.Requested(item.Address.WeekDay())
			wrongRoom := item.Classroom < 0 ||
				item.Classroom >= len(data.Classrooms()) ||
				!req.RequestedClassroom(data.Classrooms()[item.Classroom])
			if wrongDay || wrongRoom {
				offending = append(offending, item.Address)
			}
		}

		countMismatch := len(items) != req.Hours()*len(req.Groups())
		if countMismatch {
			offending = offending[:0]
			for _, item := range items {
				offending = append(offending, item.Address)
			}
		}

		if countMismatch || len(offending) > 0 {
			violated[req.ID()] = offending
		}
	}

	// Items naming a request the data does not know about.
	for id, items := range itemsByID {
		if _, ok := data.SubjectRequestByID(id); ok {
			continue
		}
		for _, item := range items {
			violated[id] = append(violated[id], item.Address)
		}
	}

	ids := make([]int, 0, len(violated))
	for id := range violated {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	out := make([]schedule.ViolatedSubjectRequest, 0, len(ids))
	for _, id := range ids {
		out = append(out, schedule.ViolatedSubjectRequest{
			SubjectRequestID: id,
			Lessons:          sortedLessons(violated[id]),
		})
	}
	return out
}

// intersectSortedInts intersects two sorted unique slices. Either side
// being empty means no intersection: an empty group list never overlaps
// anything, including another empty list.
func intersectSortedInts(a, b []int) []int {
	if len(a) == 0 || len(b) == 0 {
		return nil
	}
	var out []int
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] < b[j]:
			i++
		case b[j] < a[i]:
			j++
		default:
			out = append(out, a[i])
			i++
			j++
		}
	}
	return out
}

func sortedLessons(in []schedule.LessonAddress) []schedule.LessonAddress {
	out := append([]schedule.LessonAddress(nil), in...)
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

func dedupeSortedCopy(in []int) []int {
	out := append([]int(nil), in...)
	sort.Ints(out)
	n := 0
	for i, v := range out {
		if i == 0 || v != out[n-1] {
			out[n] = v
			n++
		}
	}
	return out[:n]
}
