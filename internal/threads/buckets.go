package threads

import (
	"sort"
	"time"

	"github.com/kleincho/humint/internal/models"
)

// Buckets partitions threads by recency for the sidebar. A thread lands in
// exactly one bucket; threads older than seven days are omitted entirely
// (hidden from the list, not deleted).
type Buckets struct {
	Today        []models.Thread
	Yesterday    []models.Thread
	PreviousWeek []models.Thread
}

// Empty reports whether no bucket has any threads.
func (b Buckets) Empty() bool {
	return len(b.Today) == 0 && len(b.Yesterday) == 0 && len(b.PreviousWeek) == 0
}

// GroupByRecency buckets threads relative to now. Calendar-day comparison
// uses now's location. Each bucket is ordered by CreatedAt descending.
func GroupByRecency(threadList []models.Thread, now time.Time) Buckets {
	var buckets Buckets

	loc := now.Location()
	today := dayOf(now, loc)
	yesterday := today.AddDate(0, 0, -1)
	weekAgo := now.AddDate(0, 0, -7)

	for _, thread := range threadList {
		created := thread.CreatedAt.In(loc)
		day := dayOf(created, loc)

		switch {
		case day.Equal(today):
			buckets.Today = append(buckets.Today, thread)
		case day.Equal(yesterday):
			buckets.Yesterday = append(buckets.Yesterday, thread)
		case created.After(weekAgo):
			buckets.PreviousWeek = append(buckets.PreviousWeek, thread)
		}
	}

	sortNewestFirst(buckets.Today)
	sortNewestFirst(buckets.Yesterday)
	sortNewestFirst(buckets.PreviousWeek)

	return buckets
}

func dayOf(t time.Time, loc *time.Location) time.Time {
	year, month, day := t.In(loc).Date()
	return time.Date(year, month, day, 0, 0, 0, 0, loc)
}

func sortNewestFirst(threadList []models.Thread) {
	sort.SliceStable(threadList, func(i, j int) bool {
		return threadList[i].CreatedAt.After(threadList[j].CreatedAt)
	})
}
