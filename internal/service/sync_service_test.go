package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"testing"
	"time"

	"github.com/ananyateklu/second-brain-sub000/internal/model"
)

// fakeStore is an in-memory SyncStore. UpsertMapping mirrors the database's
// unique constraint on (user, provider, item_type, remote_id).
type fakeStore struct {
	creds    *model.Credentials
	tasks    []model.Task
	notes    []model.Note
	mappings []model.SyncMapping
	history  []string

	failCreateTitle string
}

func (f *fakeStore) GetCredentials(ctx context.Context, userID string) (*model.Credentials, error) {
	if f.creds == nil {
		return nil, sql.ErrNoRows
	}
	c := *f.creds
	return &c, nil
}

func (f *fakeStore) ListTasks(ctx context.Context, userID string, includeDeleted bool) ([]model.Task, error) {
	var out []model.Task
	for _, t := range f.tasks {
		if t.IsDeleted && !includeDeleted {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (f *fakeStore) CreateTask(ctx context.Context, t *model.Task) error {
	if f.failCreateTitle != "" && t.Title == f.failCreateTitle {
		return errors.New("simulated insert failure")
	}
	f.tasks = append(f.tasks, *t)
	return nil
}

func (f *fakeStore) UpdateTask(ctx context.Context, t *model.Task) error {
	for i := range f.tasks {
		if f.tasks[i].ID == t.ID {
			f.tasks[i] = *t
			return nil
		}
	}
	return sql.ErrNoRows
}

func (f *fakeStore) ListNotes(ctx context.Context, userID string, includeDeleted bool) ([]model.Note, error) {
	var out []model.Note
	for _, n := range f.notes {
		if n.IsDeleted && !includeDeleted {
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

func (f *fakeStore) CreateNote(ctx context.Context, n *model.Note) error {
	f.notes = append(f.notes, *n)
	return nil
}

func (f *fakeStore) UpdateNote(ctx context.Context, n *model.Note) error {
	for i := range f.notes {
		if f.notes[i].ID == n.ID {
			f.notes[i] = *n
			return nil
		}
	}
	return sql.ErrNoRows
}

func (f *fakeStore) ListMappings(ctx context.Context, userID, provider string, itemType model.ItemType) ([]model.SyncMapping, error) {
	var out []model.SyncMapping
	for _, m := range f.mappings {
		if m.ItemType == itemType {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeStore) UpsertMapping(ctx context.Context, m *model.SyncMapping) error {
	for i := range f.mappings {
		if f.mappings[i].ItemType == m.ItemType && f.mappings[i].RemoteID == m.RemoteID {
			f.mappings[i].LocalID = m.LocalID
			f.mappings[i].LastSyncedAt = m.LastSyncedAt
			return nil
		}
	}
	// Enforce the same constraints the table carries: the primary key and
	// the unique (item_type, local_id) pair.
	for i := range f.mappings {
		if f.mappings[i].ID == m.ID {
			return errors.New(`duplicate key value violates unique constraint "sync_mappings_pkey"`)
		}
		if f.mappings[i].ItemType == m.ItemType && f.mappings[i].LocalID == m.LocalID {
			return errors.New("duplicate key value violates unique constraint on local_id")
		}
	}
	f.mappings = append(f.mappings, *m)
	return nil
}

func (f *fakeStore) UpdateMapping(ctx context.Context, m *model.SyncMapping) error {
	for i := range f.mappings {
		if f.mappings[i].ID == m.ID {
			f.mappings[i].LocalID = m.LocalID
			f.mappings[i].RemoteID = m.RemoteID
			f.mappings[i].LastSyncedAt = m.LastSyncedAt
			return nil
		}
	}
	return sql.ErrNoRows
}

func (f *fakeStore) DeleteMapping(ctx context.Context, userID, provider, id string) error {
	for i := range f.mappings {
		if f.mappings[i].ID == id {
			f.mappings = append(f.mappings[:i], f.mappings[i+1:]...)
			return nil
		}
	}
	return nil
}

func (f *fakeStore) DeleteMappings(ctx context.Context, userID, provider string) error {
	f.mappings = nil
	return nil
}

func (f *fakeStore) CreateSyncHistory(ctx context.Context, userID, syncType, status string, durationMs int64, details json.RawMessage) error {
	f.history = append(f.history, status)
	return nil
}

// fakeClient serves a canned remote snapshot and records pushes.
type fakeClient struct {
	remote    []model.TickTickTask
	fetchErr  error
	createErr error

	fetches int
	pushed  []model.TickTickTask
	updated []model.TickTickTask
}

func (f *fakeClient) FetchProjectTasks(ctx context.Context, token, projectID string) ([]model.TickTickTask, error) {
	f.fetches++
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return append([]model.TickTickTask(nil), f.remote...), nil
}

func (f *fakeClient) CreateTask(ctx context.Context, token string, task *model.TickTickTask) (*model.TickTickTask, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	created := *task
	created.ID = fmt.Sprintf("remote-%d", len(f.pushed)+1)
	f.pushed = append(f.pushed, created)
	return &created, nil
}

func (f *fakeClient) UpdateTask(ctx context.Context, token string, task *model.TickTickTask) error {
	f.updated = append(f.updated, *task)
	return nil
}

func (f *fakeClient) DeleteTask(ctx context.Context, token, projectID, taskID string) error {
	return nil
}

func validCreds() *model.Credentials {
	return &model.Credentials{
		UserID:      "u1",
		AccessToken: "tok",
		ExpiresAt:   time.Now().Add(2 * time.Hour),
	}
}

func newTestSyncService(t *testing.T, store *fakeStore, client *fakeClient) *SyncService {
	t.Helper()
	return NewSyncService(store, client, nil, nil, log.New(io.Discard, "", 0))
}

func TestSyncRequiresProjectID(t *testing.T) {
	client := &fakeClient{}
	svc := newTestSyncService(t, &fakeStore{creds: validCreds()}, client)

	if _, err := svc.Sync(context.Background(), "u1", model.SyncRequest{}); err == nil {
		t.Fatal("expected an error for a missing project id")
	}
	if client.fetches != 0 {
		t.Error("remote was contacted despite the invalid request")
	}
}

func TestSyncCredentialGate(t *testing.T) {
	t.Run("not connected", func(t *testing.T) {
		svc := newTestSyncService(t, &fakeStore{}, &fakeClient{})
		_, err := svc.Sync(context.Background(), "u1", model.SyncRequest{ProjectID: "p1"})
		if !errors.Is(err, ErrNotConnected) {
			t.Fatalf("err = %v, want ErrNotConnected", err)
		}
	})

	t.Run("token about to expire", func(t *testing.T) {
		store := &fakeStore{creds: &model.Credentials{
			UserID:      "u1",
			AccessToken: "tok",
			ExpiresAt:   time.Now().Add(30 * time.Second),
		}}
		svc := newTestSyncService(t, store, &fakeClient{})
		_, err := svc.Sync(context.Background(), "u1", model.SyncRequest{ProjectID: "p1"})
		if !errors.Is(err, ErrTokenExpired) {
			t.Fatalf("err = %v, want ErrTokenExpired", err)
		}
	})
}

func TestSyncFetchFailureRecordsHistory(t *testing.T) {
	store := &fakeStore{creds: validCreds()}
	client := &fakeClient{fetchErr: errors.New("upstream down")}
	svc := newTestSyncService(t, store, client)

	_, err := svc.Sync(context.Background(), "u1", model.SyncRequest{ProjectID: "p1"})
	if !errors.Is(err, ErrRemoteFetch) {
		t.Fatalf("err = %v, want ErrRemoteFetch", err)
	}
	if len(store.history) != 1 || store.history[0] != "failed" {
		t.Errorf("history = %v, want one failed entry", store.history)
	}
}

func TestSyncCreatesLocalTaskFromRemote(t *testing.T) {
	store := &fakeStore{creds: validCreds()}
	client := &fakeClient{remote: []model.TickTickTask{
		{ID: "r1", ProjectID: "p1", Title: "Buy milk", Priority: 5},
	}}
	svc := newTestSyncService(t, store, client)

	result, err := svc.Sync(context.Background(), "u1", model.SyncRequest{ProjectID: "p1"})
	if err != nil {
		t.Fatal(err)
	}
	if result.Created != 1 || result.Updated != 0 || result.Errors != 0 {
		t.Fatalf("result = %+v, want exactly one create", result)
	}
	if len(store.tasks) != 1 {
		t.Fatalf("tasks = %d, want 1", len(store.tasks))
	}
	got := store.tasks[0]
	if got.Title != "Buy milk" || got.Priority != model.PriorityHigh || got.Status != model.TaskIncomplete {
		t.Errorf("projected task = %+v", got)
	}
	if len(store.mappings) != 1 || store.mappings[0].RemoteID != "r1" || store.mappings[0].LocalID != got.ID {
		t.Errorf("mappings = %+v, want one row linking r1", store.mappings)
	}
	if store.history[len(store.history)-1] != "success" {
		t.Errorf("history = %v, want trailing success", store.history)
	}
}

func TestSyncIsIdempotent(t *testing.T) {
	store := &fakeStore{creds: validCreds()}
	client := &fakeClient{remote: []model.TickTickTask{
		{ID: "r1", Title: "stable", Priority: 3},
		{ID: "r2", Title: "also stable", Status: 2},
	}}
	svc := newTestSyncService(t, store, client)
	req := model.SyncRequest{ProjectID: "p1"}

	first, err := svc.Sync(context.Background(), "u1", req)
	if err != nil {
		t.Fatal(err)
	}
	if first.Created != 2 {
		t.Fatalf("first run created = %d, want 2", first.Created)
	}

	for run := 2; run <= 3; run++ {
		result, err := svc.Sync(context.Background(), "u1", req)
		if err != nil {
			t.Fatal(err)
		}
		if result.Created != 0 || result.Updated != 0 || result.Deleted != 0 || result.Errors != 0 {
			t.Errorf("run %d result = %+v, want all zero", run, result)
		}
	}
	if len(store.tasks) != 2 {
		t.Errorf("tasks = %d, want no duplicates", len(store.tasks))
	}
	if len(store.mappings) != 2 {
		t.Errorf("mappings = %d, want no duplicates", len(store.mappings))
	}
}

func TestSyncRestoresSoftDeletedTask(t *testing.T) {
	deletedAt := time.Now().Add(-time.Hour)
	store := &fakeStore{
		creds: validCreds(),
		tasks: []model.Task{{
			ID: "l1", UserID: "u1", Title: "resurrect me",
			Priority: model.PriorityLow, IsDeleted: true, DeletedAt: &deletedAt,
		}},
		mappings: []model.SyncMapping{{
			ID: "m1", UserID: "u1", Provider: model.ProviderTickTick,
			ItemType: model.ItemTypeTask, LocalID: "l1", RemoteID: "r1",
		}},
	}
	client := &fakeClient{remote: []model.TickTickTask{{ID: "r1", Title: "resurrect me"}}}
	svc := newTestSyncService(t, store, client)

	result, err := svc.Sync(context.Background(), "u1", model.SyncRequest{ProjectID: "p1"})
	if err != nil {
		t.Fatal(err)
	}
	if result.Created != 0 || result.Updated != 1 {
		t.Fatalf("result = %+v, want one update and no create", result)
	}
	if len(store.tasks) != 1 {
		t.Fatalf("restore created a duplicate: %d tasks", len(store.tasks))
	}
	got := store.tasks[0]
	if got.IsDeleted || got.DeletedAt != nil {
		t.Errorf("task still soft-deleted: %+v", got)
	}
}

func TestSyncIsolatesPerItemFailures(t *testing.T) {
	store := &fakeStore{creds: validCreds(), failCreateTitle: "boom"}
	client := &fakeClient{remote: []model.TickTickTask{
		{ID: "r1", Title: "one"},
		{ID: "r2", Title: "two"},
		{ID: "r3", Title: "boom"},
		{ID: "r4", Title: "four"},
		{ID: "r5", Title: "five"},
	}}
	svc := newTestSyncService(t, store, client)

	result, err := svc.Sync(context.Background(), "u1", model.SyncRequest{ProjectID: "p1"})
	if err != nil {
		t.Fatal(err)
	}
	if result.Created != 4 || result.Errors != 1 {
		t.Fatalf("result = %+v, want 4 created and 1 error", result)
	}
	if result.Success != true {
		t.Error("pass with isolated failures should still report success")
	}
	// The failed item must not get a dangling mapping.
	for _, m := range store.mappings {
		if m.RemoteID == "r3" {
			t.Error("failed create left a mapping behind")
		}
	}
}

func TestSyncTwoWayPushesUnmappedLocal(t *testing.T) {
	store := &fakeStore{
		creds: validCreds(),
		tasks: []model.Task{{
			ID: "l1", UserID: "u1", Title: "local only",
			Priority: model.PriorityMedium, UpdatedAt: time.Now(),
		}},
	}
	client := &fakeClient{}
	svc := newTestSyncService(t, store, client)

	result, err := svc.Sync(context.Background(), "u1", model.SyncRequest{
		ProjectID: "p1", Direction: string(model.SyncTwoWay),
	})
	if err != nil {
		t.Fatal(err)
	}
	if result.Created != 1 {
		t.Fatalf("result = %+v, want one remote create", result)
	}
	if len(client.pushed) != 1 || client.pushed[0].Title != "local only" || client.pushed[0].Priority != 3 {
		t.Fatalf("pushed = %+v", client.pushed)
	}
	if len(store.mappings) != 1 || store.mappings[0].RemoteID != client.pushed[0].ID {
		t.Errorf("mappings = %+v, want a row pointing at the new remote id", store.mappings)
	}
}

func TestSyncTwoWayRepointsMappingWhenRemoteGone(t *testing.T) {
	store := &fakeStore{
		creds: validCreds(),
		tasks: []model.Task{{
			ID: "l1", UserID: "u1", Title: "survivor",
			Priority: model.PriorityLow, UpdatedAt: time.Now(),
		}},
		mappings: []model.SyncMapping{{
			ID: "m1", UserID: "u1", Provider: model.ProviderTickTick,
			ItemType: model.ItemTypeTask, LocalID: "l1", RemoteID: "r-old",
		}},
	}
	client := &fakeClient{}
	svc := newTestSyncService(t, store, client)
	req := model.SyncRequest{ProjectID: "p1", Direction: string(model.SyncTwoWay)}

	result, err := svc.Sync(context.Background(), "u1", req)
	if err != nil {
		t.Fatal(err)
	}
	if result.Created != 1 || result.Errors != 0 {
		t.Fatalf("result = %+v, want one clean remote create", result)
	}
	if len(client.pushed) != 1 {
		t.Fatalf("pushed = %d, want 1", len(client.pushed))
	}

	// The old row must be re-pointed, not duplicated.
	var rows int
	for _, m := range store.mappings {
		if m.LocalID == "l1" {
			rows++
			if m.RemoteID != client.pushed[0].ID {
				t.Errorf("mapping remote id = %q, want %q", m.RemoteID, client.pushed[0].ID)
			}
			if m.ID != "m1" {
				t.Errorf("mapping id = %q, want the original row reused", m.ID)
			}
		}
	}
	if rows != 1 {
		t.Fatalf("local l1 has %d mapping rows, want 1", rows)
	}

	// With the pushed task now in the remote snapshot, the next pass must
	// converge instead of pushing another copy.
	client.remote = append(client.remote, client.pushed[0])
	again, err := svc.Sync(context.Background(), "u1", req)
	if err != nil {
		t.Fatal(err)
	}
	if again.Created != 0 || again.Updated != 0 || again.Errors != 0 {
		t.Errorf("second pass = %+v, want all zero", again)
	}
	if len(client.pushed) != 1 {
		t.Errorf("pushed = %d after second pass, want still 1", len(client.pushed))
	}
}

func TestSyncExcludesTagsWhenOptedOut(t *testing.T) {
	store := &fakeStore{
		creds: validCreds(),
		tasks: []model.Task{{
			ID: "l1", UserID: "u1", Title: "keep my tags", Tags: "mine",
			Priority: model.PriorityLow, UpdatedAt: time.Now(),
		}},
		mappings: []model.SyncMapping{{
			ID: "m1", UserID: "u1", Provider: model.ProviderTickTick,
			ItemType: model.ItemTypeTask, LocalID: "l1", RemoteID: "r1",
		}},
	}
	client := &fakeClient{remote: []model.TickTickTask{
		{ID: "r1", Title: "keep my tags", Priority: 1, Tags: []string{"theirs"}},
		{ID: "r2", Title: "fresh", Tags: []string{"theirs"}},
	}}
	svc := newTestSyncService(t, store, client)

	off := false
	result, err := svc.Sync(context.Background(), "u1", model.SyncRequest{
		ProjectID: "p1", IncludeTags: &off,
	})
	if err != nil {
		t.Fatal(err)
	}
	// r1 differs only in tags, so nothing counts as updated.
	if result.Created != 1 || result.Updated != 0 {
		t.Fatalf("result = %+v, want one create and no update", result)
	}
	for _, task := range store.tasks {
		switch task.ID {
		case "l1":
			if task.Tags != "mine" {
				t.Errorf("local tags = %q, want untouched", task.Tags)
			}
		default:
			if task.Tags != "" {
				t.Errorf("created task tags = %q, want empty", task.Tags)
			}
		}
	}
}

func TestSyncSingleFlightPerUser(t *testing.T) {
	store := &fakeStore{creds: validCreds()}
	svc := newTestSyncService(t, store, &fakeClient{})

	if err := svc.acquire("u1"); err != nil {
		t.Fatal(err)
	}
	_, err := svc.Sync(context.Background(), "u1", model.SyncRequest{ProjectID: "p1"})
	if !errors.Is(err, ErrSyncInProgress) {
		t.Fatalf("err = %v, want ErrSyncInProgress", err)
	}

	// Another user is not blocked.
	if _, err := svc.Sync(context.Background(), "u2", model.SyncRequest{ProjectID: "p1"}); errors.Is(err, ErrSyncInProgress) {
		t.Error("guard leaked across users")
	}

	svc.release("u1")
	if _, err := svc.Sync(context.Background(), "u1", model.SyncRequest{ProjectID: "p1"}); err != nil {
		t.Fatalf("after release: %v", err)
	}
}

func TestSyncNotes(t *testing.T) {
	store := &fakeStore{creds: validCreds()}
	client := &fakeClient{remote: []model.TickTickTask{
		{ID: "r1", Title: "meeting notes", Content: "agenda"},
		{ID: "r2", Title: "reading list", Desc: "from desc"},
	}}
	svc := newTestSyncService(t, store, client)
	req := model.SyncRequest{ProjectID: "p1", SyncType: "notes"}

	result, err := svc.Sync(context.Background(), "u1", req)
	if err != nil {
		t.Fatal(err)
	}
	if result.Created != 2 {
		t.Fatalf("result = %+v, want 2 notes created", result)
	}
	if store.notes[1].Content != "from desc" {
		t.Errorf("note content = %q, want desc fallback", store.notes[1].Content)
	}
	for _, m := range store.mappings {
		if m.ItemType != model.ItemTypeNote {
			t.Errorf("mapping item type = %v, want note", m.ItemType)
		}
	}

	again, err := svc.Sync(context.Background(), "u1", req)
	if err != nil {
		t.Fatal(err)
	}
	if again.Created != 0 || again.Updated != 0 {
		t.Errorf("second run = %+v, want all zero", again)
	}
}

func TestResetSyncClearsMappings(t *testing.T) {
	store := &fakeStore{mappings: []model.SyncMapping{{ID: "m1"}, {ID: "m2"}}}
	svc := newTestSyncService(t, store, &fakeClient{})

	if err := svc.ResetSync(context.Background(), "u1"); err != nil {
		t.Fatal(err)
	}
	if len(store.mappings) != 0 {
		t.Errorf("mappings = %d, want 0", len(store.mappings))
	}
}
