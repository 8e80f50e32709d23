package meetings

import (
	"reflect"
	"testing"
	"time"
)

var testDay = time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)

func dayMeeting(id, start, end string) Meeting {
	return Meeting{
		ID:        id,
		Title:     id,
		StartTime: "2025-06-02T" + start + ":00Z",
		EndTime:   "2025-06-02T" + end + ":00Z",
		Status:    MeetingStatusConfirmed,
	}
}

func TestMeetingsForDayFiltersByDay(t *testing.T) {
	meetings := []Meeting{
		dayMeeting("same-day", "09:00", "10:00"),
		{
			ID:        "other-day",
			StartTime: "2025-06-03T09:00:00Z",
			EndTime:   "2025-06-03T10:00:00Z",
		},
	}
	got := MeetingsForDay(meetings, testDay)
	if len(got) != 1 || got[0].ID != "same-day" {
		t.Fatalf("got %d entries, want only same-day meeting", len(got))
	}
	if got[0].StartMinutes != 9*60 {
		t.Fatalf("startMinutes = %d, want 540", got[0].StartMinutes)
	}
	if got[0].Duration != 60 {
		t.Fatalf("duration = %d, want 60", got[0].Duration)
	}
}

func TestMeetingsForDayDropsUnparseableDates(t *testing.T) {
	meetings := []Meeting{
		{ID: "bad-start", StartTime: "not-a-date", EndTime: "2025-06-02T10:00:00Z"},
		{ID: "bad-end", StartTime: "2025-06-02T09:00:00Z", EndTime: "???"},
		dayMeeting("good", "11:00", "12:00"),
	}
	got := MeetingsForDay(meetings, testDay)
	if len(got) != 1 || got[0].ID != "good" {
		t.Fatalf("got %v, want only the parseable meeting", ids(got))
	}
}

func TestMeetingsForDayIsIdempotent(t *testing.T) {
	meetings := []Meeting{
		dayMeeting("a", "09:00", "09:45"),
		dayMeeting("b", "09:30", "10:15"),
		dayMeeting("c", "14:00", "14:10"),
	}
	first := MeetingsForDay(meetings, testDay)
	second := MeetingsForDay(meetings, testDay)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("layout differs across identical calls:\n%v\n%v", first, second)
	}
}

func TestTwoOverlappingMeetingsShareCluster(t *testing.T) {
	meetings := []Meeting{
		dayMeeting("a", "09:00", "09:45"),
		dayMeeting("b", "09:30", "10:15"),
	}
	got := MeetingsForDay(meetings, testDay)
	if len(got) != 2 {
		t.Fatalf("got %d entries, want 2", len(got))
	}
	for _, e := range got {
		if e.TotalOverlapping != 2 {
			t.Fatalf("%s totalOverlapping = %d, want 2", e.ID, e.TotalOverlapping)
		}
	}
	if got[0].LeftOffset == got[1].LeftOffset {
		t.Fatalf("offsets must be distinct, both %d", got[0].LeftOffset)
	}
	for _, e := range got {
		if e.LeftOffset != 0 && e.LeftOffset != 1 {
			t.Fatalf("%s leftOffset = %d, want 0 or 1", e.ID, e.LeftOffset)
		}
	}
}

func TestThreeMutuallyOverlappingMeetings(t *testing.T) {
	meetings := []Meeting{
		dayMeeting("a", "09:00", "10:00"),
		dayMeeting("b", "09:15", "10:15"),
		dayMeeting("c", "09:30", "10:30"),
	}
	got := MeetingsForDay(meetings, testDay)
	if len(got) != 3 {
		t.Fatalf("got %d entries, want 3", len(got))
	}
	seen := map[int]bool{}
	for _, e := range got {
		if e.TotalOverlapping != 3 {
			t.Fatalf("%s totalOverlapping = %d, want 3", e.ID, e.TotalOverlapping)
		}
		seen[e.LeftOffset] = true
	}
	if !seen[0] || !seen[1] || !seen[2] {
		t.Fatalf("offsets must be a permutation of {0,1,2}, got %v", seen)
	}
}

// A overlaps B and B overlaps C, but A and C do not touch. All three still
// share one cluster of size 3; this deliberately over-allocates columns.
func TestTransitiveOverlapFormsOneCluster(t *testing.T) {
	meetings := []Meeting{
		dayMeeting("a", "09:00", "09:40"),
		dayMeeting("b", "09:30", "10:10"),
		dayMeeting("c", "10:00", "10:40"),
	}
	got := MeetingsForDay(meetings, testDay)
	for _, e := range got {
		if e.TotalOverlapping != 3 {
			t.Fatalf("%s totalOverlapping = %d, want 3", e.ID, e.TotalOverlapping)
		}
	}
}

func TestDisjointMeetingsGetOwnClusters(t *testing.T) {
	meetings := []Meeting{
		dayMeeting("a", "09:00", "09:30"),
		dayMeeting("b", "11:00", "11:30"),
	}
	got := MeetingsForDay(meetings, testDay)
	for _, e := range got {
		if e.TotalOverlapping != 1 || e.LeftOffset != 0 {
			t.Fatalf("%s = slot %d of %d, want slot 0 of 1", e.ID, e.LeftOffset, e.TotalOverlapping)
		}
	}
}

func TestShortMeetingFlooredToThirtyMinutes(t *testing.T) {
	got := MeetingsForDay([]Meeting{dayMeeting("short", "14:00", "14:10")}, testDay)
	if len(got) != 1 {
		t.Fatalf("got %d entries, want 1", len(got))
	}
	if got[0].Duration != 30 {
		t.Fatalf("duration = %d, want floor of 30", got[0].Duration)
	}
	// EndMinutes keeps the real end; only Duration is floored.
	if got[0].EndMinutes != 14*60+10 {
		t.Fatalf("endMinutes = %d, want 850", got[0].EndMinutes)
	}
}

func TestResultSortedByStartMinutes(t *testing.T) {
	meetings := []Meeting{
		dayMeeting("late", "15:00", "16:00"),
		dayMeeting("early", "08:00", "09:00"),
		dayMeeting("mid", "12:00", "13:00"),
	}
	got := MeetingsForDay(meetings, testDay)
	for i := 1; i < len(got); i++ {
		if got[i-1].StartMinutes > got[i].StartMinutes {
			t.Fatalf("output not sorted: %v", ids(got))
		}
	}
}

func TestTopPosition(t *testing.T) {
	cases := []struct {
		startMinutes int
		want         float64
	}{
		{6 * 60, 0},            // grid origin
		{9 * 60, 180},          // three hours in
		{9*60 + 30, 210},       // half rows
		{5 * 60, 0},            // before the grid clamps to 0
		{0, 0},
	}
	for _, c := range cases {
		if got := TopPosition(c.startMinutes); got != c.want {
			t.Fatalf("TopPosition(%d) = %v, want %v", c.startMinutes, got, c.want)
		}
	}
}

func TestHeight(t *testing.T) {
	if got := Height(60); got != RowHeightPx {
		t.Fatalf("Height(60) = %v, want %v", got, RowHeightPx)
	}
	if got := Height(30); got != RowHeightPx/2 {
		t.Fatalf("Height(30) = %v, want %v", got, RowHeightPx/2)
	}
}

func ids(entries []LayoutEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.ID
	}
	return out
}
