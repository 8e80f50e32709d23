package meetings

import (
	"sort"
	"time"
)

// Calendar grid geometry. The grid's first rendered hour is 06:00 and each
// hour row is RowHeightPx tall; clients drawing the gridlines share these
// constants.
const (
	gridStartMinutes = 6 * 60
	RowHeightPx      = 60.0

	// minDurationMinutes is a rendering-legibility floor, not a
	// scheduling rule: very short meetings still get a readable block.
	minDurationMinutes = 30
)

// LayoutEntry augments a meeting with the geometry needed for
// absolute-positioned rendering. Recomputed fresh per day per render,
// never persisted.
type LayoutEntry struct {
	Meeting

	StartMinutes int `json:"start_minutes"`
	EndMinutes   int `json:"end_minutes"`

	// Duration in minutes, floored to minDurationMinutes.
	Duration int `json:"duration"`

	// LeftOffset is the horizontal column within the meeting's overlap
	// cluster; TotalOverlapping is the cluster size. Together they give
	// equal-width side-by-side columns.
	LeftOffset       int `json:"left_offset"`
	TotalOverlapping int `json:"total_overlapping"`
}

// timeLayouts are tried in order when parsing meeting times.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseMeetingTime(s string, loc *time.Location) (time.Time, bool) {
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// MeetingsForDay filters meetings to the target calendar day and computes
// their render geometry. Pure and idempotent: same inputs, same output.
// Meetings with unparseable times are dropped, never an error.
//
// Slot assignment within an overlap cluster is by encounter order over the
// start-sorted list, with the cluster size as the column count. This can use
// more columns than an interval-coloring optimum when overlaps are
// non-transitive; that is the intended visual output, do not tighten it.
func MeetingsForDay(meetings []Meeting, day time.Time) []LayoutEntry {
	loc := day.Location()
	dayStr := day.Format("2006-01-02")

	var entries []LayoutEntry
	for _, m := range meetings {
		start, ok := parseMeetingTime(m.StartTime, loc)
		if !ok {
			continue
		}
		end, ok := parseMeetingTime(m.EndTime, loc)
		if !ok {
			continue
		}
		// Day match is by formatted date string to sidestep
		// timezone-boundary mismatches.
		if start.In(loc).Format("2006-01-02") != dayStr {
			continue
		}

		startLocal := start.In(loc)
		endLocal := end.In(loc)
		startMin := startLocal.Hour()*60 + startLocal.Minute()
		endMin := endLocal.Hour()*60 + endLocal.Minute()
		dur := endMin - startMin
		if dur < minDurationMinutes {
			dur = minDurationMinutes
		}
		entries = append(entries, LayoutEntry{
			Meeting:      m,
			StartMinutes: startMin,
			EndMinutes:   endMin,
			Duration:     dur,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].StartMinutes < entries[j].StartMinutes
	})

	assignSlots(entries)

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].StartMinutes < entries[j].StartMinutes
	})
	return entries
}

// assignSlots partitions entries into overlap clusters and hands out column
// indexes in the order members join their cluster.
func assignSlots(entries []LayoutEntry) {
	visited := make([]bool, len(entries))
	for i := range entries {
		if visited[i] {
			continue
		}
		cluster := []int{i}
		visited[i] = true

		// Grow the cluster to its transitive closure: a meeting joins
		// if it overlaps any current member.
		for grew := true; grew; {
			grew = false
			for j := range entries {
				if visited[j] {
					continue
				}
				for _, k := range cluster {
					if overlaps(entries[j], entries[k]) {
						cluster = append(cluster, j)
						visited[j] = true
						grew = true
						break
					}
				}
			}
		}

		for slot, idx := range cluster {
			entries[idx].LeftOffset = slot
			entries[idx].TotalOverlapping = len(cluster)
		}
	}
}

func overlaps(a, b LayoutEntry) bool {
	return a.StartMinutes < b.EndMinutes && a.EndMinutes > b.StartMinutes
}

// TopPosition converts a start offset to pixels from the top of the grid.
// Meetings starting before 06:00 clamp to 0 and render visually truncated.
func TopPosition(startMinutes int) float64 {
	top := float64(startMinutes-gridStartMinutes) / 60 * RowHeightPx
	if top < 0 {
		return 0
	}
	return top
}

// Height converts a duration in minutes to pixels.
func Height(durationMinutes int) float64 {
	return float64(durationMinutes) / 60 * RowHeightPx
}
