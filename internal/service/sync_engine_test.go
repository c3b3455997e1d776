package service

import (
	"testing"
	"time"

	"github.com/ananyateklu/second-brain-sub000/internal/model"
)

func TestApplyRemoteTaskFieldMapping(t *testing.T) {
	now := time.Now()
	cases := []struct {
		name         string
		remote       model.TickTickTask
		wantStatus   model.TaskStatus
		wantPriority model.TaskPriority
	}{
		{"completed high", model.TickTickTask{Status: 2, Priority: 5}, model.TaskCompleted, model.PriorityHigh},
		{"open medium", model.TickTickTask{Status: 0, Priority: 3}, model.TaskIncomplete, model.PriorityMedium},
		{"open low", model.TickTickTask{Status: 0, Priority: 1}, model.TaskIncomplete, model.PriorityLow},
		{"unknown status and priority", model.TickTickTask{Status: 1, Priority: 9}, model.TaskIncomplete, model.PriorityLow},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var task model.Task
			applyRemoteTask(&task, &tc.remote, now, true)
			if task.Status != tc.wantStatus {
				t.Errorf("status = %v, want %v", task.Status, tc.wantStatus)
			}
			if task.Priority != tc.wantPriority {
				t.Errorf("priority = %v, want %v", task.Priority, tc.wantPriority)
			}
		})
	}
}

func TestApplyRemoteTaskContentFallback(t *testing.T) {
	var task model.Task
	applyRemoteTask(&task, &model.TickTickTask{Title: "a", Content: "body", Desc: "ignored"}, time.Now(), true)
	if task.Description != "body" {
		t.Errorf("description = %q, want content to win", task.Description)
	}

	applyRemoteTask(&task, &model.TickTickTask{Title: "a", Desc: "fallback"}, time.Now(), true)
	if task.Description != "fallback" {
		t.Errorf("description = %q, want desc fallback", task.Description)
	}

	applyRemoteTask(&task, &model.TickTickTask{Title: "a"}, time.Now(), true)
	if task.Description != "" {
		t.Errorf("description = %q, want empty", task.Description)
	}
}

func TestApplyRemoteTaskTags(t *testing.T) {
	var task model.Task
	applyRemoteTask(&task, &model.TickTickTask{Tags: []string{"work", "urgent"}}, time.Now(), true)
	if task.Tags != "work,urgent" {
		t.Errorf("tags = %q, want comma-joined", task.Tags)
	}

	// Tags excluded: the local value stays as it was.
	task.Tags = "mine"
	applyRemoteTask(&task, &model.TickTickTask{Tags: []string{"theirs"}}, time.Now(), false)
	if task.Tags != "mine" {
		t.Errorf("tags = %q, want untouched when excluded", task.Tags)
	}
}

func TestParseTickTickTime(t *testing.T) {
	if got := parseTickTickTime("2026-01-05T10:30:00.000+0000"); got == nil {
		t.Error("provider layout did not parse")
	}
	if got := parseTickTickTime("2026-01-05T10:30:00Z"); got == nil {
		t.Error("RFC3339 did not parse")
	}
	if got := parseTickTickTime("not-a-date"); got != nil {
		t.Errorf("garbage parsed to %v", got)
	}
	if got := parseTickTickTime(""); got != nil {
		t.Errorf("empty string parsed to %v", got)
	}
}

func TestDedupeRemoteFirstWins(t *testing.T) {
	remote := []model.TickTickTask{
		{ID: "r1", Title: "first"},
		{ID: "r2", Title: "other"},
		{ID: "r1", Title: "second"},
	}
	out := dedupeRemote(remote)
	if len(out) != 2 {
		t.Fatalf("len = %d, want 2", len(out))
	}
	if out[0].Title != "first" {
		t.Errorf("kept %q, want first occurrence", out[0].Title)
	}
}

func fixedTime(t *testing.T, s string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t.Fatalf("bad fixture time %q: %v", s, err)
	}
	return parsed
}

func TestPlanTaskSyncFromRemote(t *testing.T) {
	now := fixedTime(t, "2026-02-01T12:00:00Z")

	local := []model.Task{
		{ID: "l-alive", Title: "alive", UpdatedAt: now},
		{ID: "l-deleted", Title: "deleted", IsDeleted: true, UpdatedAt: now},
		{ID: "l-orphan", Title: "orphan", UpdatedAt: now},
	}
	remote := []model.TickTickTask{
		{ID: "r-alive", Title: "alive changed"},
		{ID: "r-deleted", Title: "deleted"},
		{ID: "r-hard-gone", Title: "recreate me"},
		{ID: "r-new", Title: "brand new"},
	}
	mappings := []model.SyncMapping{
		{ID: "m1", LocalID: "l-alive", RemoteID: "r-alive"},
		{ID: "m2", LocalID: "l-deleted", RemoteID: "r-deleted"},
		{ID: "m3", LocalID: "l-hard-gone", RemoteID: "r-hard-gone"},
	}

	actions := planTaskSync(local, remote, mappings, model.SyncFromRemote, model.ResolveNewer, true)

	kinds := map[string]actionKind{}
	for _, a := range actions {
		if a.remote != nil {
			kinds[a.remote.ID] = a.kind
		}
	}
	if kinds["r-alive"] != actionUpdateLocal {
		t.Errorf("r-alive: got %v, want update", kinds["r-alive"])
	}
	if kinds["r-deleted"] != actionRestoreLocal {
		t.Errorf("r-deleted: got %v, want restore", kinds["r-deleted"])
	}
	if kinds["r-hard-gone"] != actionCreateLocal {
		t.Errorf("r-hard-gone: got %v, want create", kinds["r-hard-gone"])
	}
	if kinds["r-new"] != actionCreateLocal {
		t.Errorf("r-new: got %v, want create", kinds["r-new"])
	}

	// One-way import never touches unmatched local items.
	for _, a := range actions {
		if a.local != nil && a.local.ID == "l-orphan" {
			t.Error("unmatched local task was touched by from-remote sync")
		}
	}
}

func TestPlanTaskSyncFromRemoteNoChangesTouchesOnly(t *testing.T) {
	now := fixedTime(t, "2026-02-01T12:00:00Z")
	local := []model.Task{{
		ID: "l1", Title: "same", Priority: model.PriorityLow, UpdatedAt: now,
	}}
	remote := []model.TickTickTask{{ID: "r1", Title: "same", Priority: 1}}
	mappings := []model.SyncMapping{{ID: "m1", LocalID: "l1", RemoteID: "r1"}}

	actions := planTaskSync(local, remote, mappings, model.SyncFromRemote, model.ResolveNewer, true)
	if len(actions) != 1 || actions[0].kind != actionTouchMapping {
		t.Fatalf("actions = %+v, want a single mapping touch", actions)
	}
}

func TestPlanTaskSyncTwoWayConflicts(t *testing.T) {
	base := fixedTime(t, "2026-02-01T12:00:00Z")

	newer := base.Add(time.Hour)
	local := []model.Task{
		{ID: "l-localnewer", Title: "local version", UpdatedAt: newer},
		{ID: "l-tie", Title: "local version", UpdatedAt: base},
		{ID: "l-remotenewer", Title: "local version", UpdatedAt: base},
	}
	remote := []model.TickTickTask{
		{ID: "r-localnewer", Title: "remote version", ModifiedTime: base.Format(time.RFC3339)},
		{ID: "r-tie", Title: "remote version", ModifiedTime: base.Format(time.RFC3339)},
		{ID: "r-remotenewer", Title: "remote version", ModifiedTime: newer.Format(time.RFC3339)},
	}
	mappings := []model.SyncMapping{
		{ID: "m1", LocalID: "l-localnewer", RemoteID: "r-localnewer"},
		{ID: "m2", LocalID: "l-tie", RemoteID: "r-tie"},
		{ID: "m3", LocalID: "l-remotenewer", RemoteID: "r-remotenewer"},
	}

	actions := planTaskSync(local, remote, mappings, model.SyncTwoWay, model.ResolveNewer, true)
	kinds := map[string]actionKind{}
	for _, a := range actions {
		kinds[a.mapping.ID] = a.kind
	}

	if kinds["m1"] != actionUpdateRemote {
		t.Errorf("strictly newer local: got %v, want push to remote", kinds["m1"])
	}
	// Equal timestamps are not "strictly newer": remote wins the tie.
	if kinds["m2"] != actionUpdateLocal {
		t.Errorf("tie: got %v, want remote overwrite", kinds["m2"])
	}
	if kinds["m3"] != actionUpdateLocal {
		t.Errorf("newer remote: got %v, want remote overwrite", kinds["m3"])
	}
}

func TestPlanTaskSyncTwoWayEdges(t *testing.T) {
	now := fixedTime(t, "2026-02-01T12:00:00Z")

	local := []model.Task{
		{ID: "l-pushme", Title: "unmapped local", UpdatedAt: now},
		{ID: "l-remote-gone", Title: "remote side vanished", UpdatedAt: now},
		{ID: "l-both-gone", Title: "soft deleted", IsDeleted: true, UpdatedAt: now},
	}
	remote := []model.TickTickTask{
		{ID: "r-pullme", Title: "unmapped remote"},
	}
	mappings := []model.SyncMapping{
		{ID: "m-remote-gone", LocalID: "l-remote-gone", RemoteID: "r-gone"},
		{ID: "m-both-gone", LocalID: "l-both-gone", RemoteID: "r-also-gone"},
		{ID: "m-hard-gone", LocalID: "l-never-existed", RemoteID: "r-hard-gone"},
	}

	actions := planTaskSync(local, remote, mappings, model.SyncTwoWay, model.ResolveNewer, true)

	var pushCreate, pullCreate, deleted int
	for _, a := range actions {
		switch a.kind {
		case actionCreateRemote:
			pushCreate++
		case actionCreateLocal:
			pullCreate++
		case actionDeleteMapping:
			deleted++
		}
	}
	if pushCreate != 2 {
		t.Errorf("remote creates = %d, want 2 (unmapped local + remote-gone)", pushCreate)
	}
	if pullCreate != 1 {
		t.Errorf("local creates = %d, want 1 (unmapped remote)", pullCreate)
	}
	if deleted != 2 {
		t.Errorf("mapping deletes = %d, want 2 (both sides gone)", deleted)
	}
}

func TestPlanNoteSyncNeverDeletes(t *testing.T) {
	notes := []model.Note{
		{ID: "n-alive", Title: "old title"},
		{ID: "n-deleted", Title: "gone", IsDeleted: true},
	}
	remote := []model.TickTickTask{
		{ID: "r-alive", Title: "new title"},
		{ID: "r-deleted", Title: "still here"},
		{ID: "r-new", Title: "fresh"},
	}
	mappings := []model.SyncMapping{
		{ID: "m1", LocalID: "n-alive", RemoteID: "r-alive", ItemType: model.ItemTypeNote},
		{ID: "m2", LocalID: "n-deleted", RemoteID: "r-deleted", ItemType: model.ItemTypeNote},
	}

	actions := planNoteSync(notes, remote, mappings)
	for _, a := range actions {
		if a.kind != actionCreateLocal && a.kind != actionUpdateLocal {
			t.Errorf("notes variant emitted %v; only create/update are allowed", a.kind)
		}
		// The soft-deleted note must stay untouched: no restore in this variant.
		if a.note != nil && a.note.ID == "n-deleted" {
			t.Error("soft-deleted note was touched")
		}
	}
}
