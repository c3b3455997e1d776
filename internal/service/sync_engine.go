package service

import (
	"strings"
	"time"

	"github.com/ananyateklu/second-brain-sub000/internal/model"
)

// The reconciliation engine is a pure decision function: it works off one
// consistent snapshot of {local items, remote items, mappings} and emits the
// actions needed to converge. The store is only touched again when the
// actions are applied, so a pass never re-reads mid-loop.

type actionKind int

const (
	actionCreateLocal actionKind = iota
	actionUpdateLocal
	actionRestoreLocal
	actionCreateRemote
	actionUpdateRemote
	actionDeleteMapping
	// actionTouchMapping refreshes a mapping's timestamp without mutating
	// either side; emitted when the sides already agree so a re-sync with no
	// remote changes reports zero creates and updates.
	actionTouchMapping
)

type syncAction struct {
	kind   actionKind
	remote *model.TickTickTask
	local  *model.Task
	note   *model.Note
	// mapping is the existing ledger row to refresh or re-point. Nil means
	// the action has to create a fresh one.
	mapping *model.SyncMapping
}

// dedupeRemote drops duplicate remote ids, first occurrence wins. A buggy
// remote feed can list the same id twice; processing it twice would double
// the mutations for that item.
func dedupeRemote(remote []model.TickTickTask) []model.TickTickTask {
	seen := make(map[string]bool, len(remote))
	out := remote[:0:0]
	for _, rt := range remote {
		if seen[rt.ID] {
			continue
		}
		seen[rt.ID] = true
		out = append(out, rt)
	}
	return out
}

// planTaskSync computes the actions for one task-sync pass. withTags false
// excludes tags from both change detection and projection.
func planTaskSync(local []model.Task, remote []model.TickTickTask,
	mappings []model.SyncMapping, direction model.SyncDirection,
	strategy model.ResolutionStrategy, withTags bool) []syncAction {

	remote = dedupeRemote(remote)

	tasksByID := make(map[string]*model.Task, len(local))
	for i := range local {
		tasksByID[local[i].ID] = &local[i]
	}
	remoteByID := make(map[string]*model.TickTickTask, len(remote))
	for i := range remote {
		remoteByID[remote[i].ID] = &remote[i]
	}
	mapByRemote := make(map[string]*model.SyncMapping, len(mappings))
	mapByLocal := make(map[string]*model.SyncMapping, len(mappings))
	for i := range mappings {
		mapByRemote[mappings[i].RemoteID] = &mappings[i]
		mapByLocal[mappings[i].LocalID] = &mappings[i]
	}

	var actions []syncAction

	pullRemote := func(rt *model.TickTickTask) {
		m := mapByRemote[rt.ID]
		if m == nil {
			actions = append(actions, syncAction{kind: actionCreateLocal, remote: rt})
			return
		}
		lt := tasksByID[m.LocalID]
		switch {
		case lt == nil:
			// Hard-deleted locally: recreate and re-point the ledger row.
			actions = append(actions, syncAction{kind: actionCreateLocal, remote: rt, mapping: m})
		case lt.IsDeleted:
			actions = append(actions, syncAction{kind: actionRestoreLocal, remote: rt, local: lt, mapping: m})
		case remoteDiffers(lt, rt, withTags):
			actions = append(actions, syncAction{kind: actionUpdateLocal, remote: rt, local: lt, mapping: m})
		default:
			actions = append(actions, syncAction{kind: actionTouchMapping, local: lt, mapping: m})
		}
	}

	switch direction {
	case model.SyncFromRemote:
		// Remote is authoritative for matched items; local items with no
		// remote counterpart are left alone.
		for i := range remote {
			pullRemote(&remote[i])
		}

	case model.SyncToRemote:
		// Push only: alive local state goes out, nothing local is mutated.
		for i := range local {
			lt := &local[i]
			if lt.IsDeleted {
				continue
			}
			m := mapByLocal[lt.ID]
			if m == nil {
				actions = append(actions, syncAction{kind: actionCreateRemote, local: lt})
				continue
			}
			if remoteByID[m.RemoteID] == nil {
				actions = append(actions, syncAction{kind: actionCreateRemote, local: lt, mapping: m})
			} else {
				actions = append(actions, syncAction{kind: actionUpdateRemote, local: lt, mapping: m})
			}
		}

	case model.SyncTwoWay:
		for i := range mappings {
			m := &mappings[i]
			lt := tasksByID[m.LocalID]
			rt := remoteByID[m.RemoteID]
			switch {
			case lt != nil && rt != nil:
				if lt.IsDeleted {
					// Remote still has it: the soft-delete loses.
					actions = append(actions, syncAction{kind: actionRestoreLocal, remote: rt, local: lt, mapping: m})
					continue
				}
				if !remoteDiffers(lt, rt, withTags) {
					actions = append(actions, syncAction{kind: actionTouchMapping, local: lt, mapping: m})
				} else if localWins(lt, rt, strategy) {
					actions = append(actions, syncAction{kind: actionUpdateRemote, local: lt, mapping: m})
				} else {
					actions = append(actions, syncAction{kind: actionUpdateLocal, remote: rt, local: lt, mapping: m})
				}
			case lt != nil && rt == nil:
				if lt.IsDeleted {
					actions = append(actions, syncAction{kind: actionDeleteMapping, mapping: m})
				} else {
					actions = append(actions, syncAction{kind: actionCreateRemote, local: lt, mapping: m})
				}
			case lt == nil && rt != nil:
				actions = append(actions, syncAction{kind: actionCreateLocal, remote: rt, mapping: m})
			default:
				actions = append(actions, syncAction{kind: actionDeleteMapping, mapping: m})
			}
		}
		for i := range local {
			lt := &local[i]
			if lt.IsDeleted || mapByLocal[lt.ID] != nil {
				continue
			}
			actions = append(actions, syncAction{kind: actionCreateRemote, local: lt})
		}
		for i := range remote {
			rt := &remote[i]
			if mapByRemote[rt.ID] != nil {
				continue
			}
			actions = append(actions, syncAction{kind: actionCreateLocal, remote: rt})
		}
	}

	return actions
}

// remoteDiffers reports whether projecting the remote task onto the local
// one would change any synced field.
func remoteDiffers(lt *model.Task, rt *model.TickTickTask, withTags bool) bool {
	proj := *lt
	applyRemoteTask(&proj, rt, lt.UpdatedAt, withTags)
	if proj.Title != lt.Title || proj.Description != lt.Description ||
		proj.Status != lt.Status || proj.Priority != lt.Priority || proj.Tags != lt.Tags {
		return true
	}
	switch {
	case proj.DueDate == nil && lt.DueDate == nil:
		return false
	case proj.DueDate == nil || lt.DueDate == nil:
		return true
	}
	return !proj.DueDate.Equal(*lt.DueDate)
}

// localWins resolves a both-sides-present conflict. Under "newer" the local
// side wins only if strictly more recent; ties go to remote.
func localWins(lt *model.Task, rt *model.TickTickTask, strategy model.ResolutionStrategy) bool {
	switch strategy {
	case model.ResolveLocalWins:
		return true
	case model.ResolveRemoteWins:
		return false
	}
	remoteMod := parseTickTickTime(rt.ModifiedTime)
	if remoteMod == nil {
		remoteMod = parseTickTickTime(rt.CreatedTime)
	}
	if remoteMod == nil {
		return false
	}
	return lt.UpdatedAt.After(*remoteMod)
}

// planNoteSync is the simplified notes variant: one-way from-remote,
// create/update only. No restore, no deletes, no mapping cleanup.
func planNoteSync(notes []model.Note, remote []model.TickTickTask, mappings []model.SyncMapping) []syncAction {
	remote = dedupeRemote(remote)

	notesByID := make(map[string]*model.Note, len(notes))
	for i := range notes {
		notesByID[notes[i].ID] = &notes[i]
	}
	mapByRemote := make(map[string]*model.SyncMapping, len(mappings))
	for i := range mappings {
		mapByRemote[mappings[i].RemoteID] = &mappings[i]
	}

	var actions []syncAction
	for i := range remote {
		rt := &remote[i]
		m := mapByRemote[rt.ID]
		if m == nil {
			actions = append(actions, syncAction{kind: actionCreateLocal, remote: rt})
			continue
		}
		n := notesByID[m.LocalID]
		if n == nil || n.IsDeleted {
			continue
		}
		if !noteDiffers(n, rt) {
			continue
		}
		actions = append(actions, syncAction{kind: actionUpdateLocal, remote: rt, note: n, mapping: m})
	}
	return actions
}

// tickTickTimeLayouts covers the provider's date formats. TickTick emits a
// zone offset without a colon.
var tickTickTimeLayouts = []string{
	"2006-01-02T15:04:05.000-0700",
	"2006-01-02T15:04:05-0700",
	time.RFC3339,
}

func parseTickTickTime(s string) *time.Time {
	if s == "" {
		return nil
	}
	for _, layout := range tickTickTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

func formatTickTickTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02T15:04:05.000-0700")
}

// applyRemoteTask overwrites local fields from the remote snapshot. The same
// mapping applies on every create, update and restore path. withTags false
// leaves local tags untouched.
func applyRemoteTask(t *model.Task, rt *model.TickTickTask, now time.Time, withTags bool) {
	t.Title = rt.Title
	t.Description = rt.Content
	if t.Description == "" {
		t.Description = rt.Desc
	}
	if rt.Status == 2 {
		t.Status = model.TaskCompleted
	} else {
		t.Status = model.TaskIncomplete
	}
	switch rt.Priority {
	case 5:
		t.Priority = model.PriorityHigh
	case 3:
		t.Priority = model.PriorityMedium
	default:
		t.Priority = model.PriorityLow
	}
	t.DueDate = parseTickTickTime(rt.DueDate)
	if withTags {
		t.Tags = strings.Join(rt.Tags, ",")
	}
	t.UpdatedAt = now
}

func taskFromRemote(userID, id string, rt *model.TickTickTask, now time.Time, withTags bool) *model.Task {
	t := &model.Task{ID: id, UserID: userID}
	applyRemoteTask(t, rt, now, withTags)
	t.CreatedAt = now
	if created := parseTickTickTime(rt.CreatedTime); created != nil {
		t.CreatedAt = *created
	}
	if modified := parseTickTickTime(rt.ModifiedTime); modified != nil {
		t.UpdatedAt = *modified
	}
	return t
}

func remoteTaskFromLocal(t *model.Task, projectID, remoteID string, withTags bool) *model.TickTickTask {
	rt := &model.TickTickTask{
		ID:        remoteID,
		ProjectID: projectID,
		Title:     t.Title,
		Content:   t.Description,
		DueDate:   formatTickTickTime(t.DueDate),
	}
	if t.Status == model.TaskCompleted {
		rt.Status = 2
	}
	switch t.Priority {
	case model.PriorityHigh:
		rt.Priority = 5
	case model.PriorityMedium:
		rt.Priority = 3
	default:
		rt.Priority = 1
	}
	if withTags && t.Tags != "" {
		rt.Tags = strings.Split(t.Tags, ",")
	}
	return rt
}

func noteDiffers(n *model.Note, rt *model.TickTickTask) bool {
	proj := *n
	applyRemoteNote(&proj, rt, n.UpdatedAt)
	return proj.Title != n.Title || proj.Content != n.Content || proj.Tags != n.Tags
}

func applyRemoteNote(n *model.Note, rt *model.TickTickTask, now time.Time) {
	n.Title = rt.Title
	n.Content = rt.Content
	if n.Content == "" {
		n.Content = rt.Desc
	}
	n.Tags = strings.Join(rt.Tags, ",")
	n.UpdatedAt = now
}

func noteFromRemote(userID, id string, rt *model.TickTickTask, now time.Time) *model.Note {
	n := &model.Note{ID: id, UserID: userID}
	applyRemoteNote(n, rt, now)
	n.CreatedAt = now
	if created := parseTickTickTime(rt.CreatedTime); created != nil {
		n.CreatedAt = *created
	}
	return n
}
