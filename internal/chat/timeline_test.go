package chat

import (
	"testing"
	"time"
)

func TestTimelineAppendAssignsIdentity(t *testing.T) {
	tl := NewTimeline()

	u := tl.AppendUser("hello")
	a := tl.AppendAssistant("hi there", false)
	r := tl.AppendAssistant("task done", true)

	if u.Role != RoleUser || a.Role != RoleAssistant {
		t.Errorf("roles = %q, %q", u.Role, a.Role)
	}
	if u.ID == "" || a.ID == "" || u.ID == a.ID {
		t.Errorf("ids not unique: %q, %q", u.ID, a.ID)
	}
	if u.Timestamp.IsZero() {
		t.Error("timestamp not set")
	}
	if !r.TaskResult || a.TaskResult {
		t.Error("task result flag misassigned")
	}
	if tl.Len() != 3 {
		t.Errorf("len = %d, want 3", tl.Len())
	}
}

func TestTimelineReplaceIsWholesale(t *testing.T) {
	tl := NewTimeline()
	tl.AppendUser("local echo")
	tl.AppendAssistant("partial reply", false)

	canonical := []Message{
		{ID: "m1", Role: RoleUser, Content: "local echo", Timestamp: time.Now()},
		{ID: "m2", Role: RoleAssistant, Content: "full reply", Timestamp: time.Now()},
		{ID: "m3", Role: RoleAssistant, Content: "task output", TaskResult: true, Timestamp: time.Now()},
	}
	tl.Replace(canonical)

	got := tl.Snapshot()
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	for i := range canonical {
		if got[i].ID != canonical[i].ID {
			t.Errorf("entry %d id = %q, want %q", i, got[i].ID, canonical[i].ID)
		}
	}
}

func TestTimelineReplacePreservesGivenOrder(t *testing.T) {
	// The store's order is authoritative even when timestamps disagree
	// with it. No re-sort happens.
	now := time.Now()
	out := []Message{
		{ID: "late", Role: RoleAssistant, Content: "b", Timestamp: now},
		{ID: "early", Role: RoleUser, Content: "a", Timestamp: now.Add(-time.Hour)},
	}
	tl := NewTimeline()
	tl.Replace(out)

	got := tl.Snapshot()
	if got[0].ID != "late" || got[1].ID != "early" {
		t.Errorf("order changed: %q, %q", got[0].ID, got[1].ID)
	}
}

func TestTimelineSnapshotIsolated(t *testing.T) {
	tl := NewTimeline()
	tl.AppendUser("one")

	snap := tl.Snapshot()
	snap[0].Content = "mutated"
	tl.AppendUser("two")

	if got := tl.Snapshot()[0].Content; got != "one" {
		t.Errorf("timeline entry = %q, want %q", got, "one")
	}
	if len(snap) != 1 {
		t.Errorf("snapshot len = %d, want 1", len(snap))
	}
}

func TestTimelineClear(t *testing.T) {
	tl := NewTimeline()
	tl.AppendUser("one")
	tl.AppendAssistant("two", false)
	tl.Clear()

	if tl.Len() != 0 {
		t.Errorf("len after clear = %d, want 0", tl.Len())
	}
}
