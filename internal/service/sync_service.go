package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ananyateklu/second-brain-sub000/internal/model"
)

var (
	ErrNotConnected   = errors.New("ticktick integration is not connected")
	ErrTokenExpired   = errors.New("ticktick token expired, reconnect required")
	ErrSyncInProgress = errors.New("a sync for this user is already running")
	ErrRemoteFetch    = errors.New("ticktick fetch failed")
)

// tokenExpiryLeeway refuses tokens about to expire instead of racing the
// provider mid-pass. There is no refresh flow; the user reconnects.
const tokenExpiryLeeway = time.Minute

// SyncStore is the persistence surface the sync pass needs.
// *repository.PostgresRepo implements it.
type SyncStore interface {
	GetCredentials(ctx context.Context, userID string) (*model.Credentials, error)

	ListTasks(ctx context.Context, userID string, includeDeleted bool) ([]model.Task, error)
	CreateTask(ctx context.Context, t *model.Task) error
	UpdateTask(ctx context.Context, t *model.Task) error

	ListNotes(ctx context.Context, userID string, includeDeleted bool) ([]model.Note, error)
	CreateNote(ctx context.Context, n *model.Note) error
	UpdateNote(ctx context.Context, n *model.Note) error

	ListMappings(ctx context.Context, userID, provider string, itemType model.ItemType) ([]model.SyncMapping, error)
	UpsertMapping(ctx context.Context, m *model.SyncMapping) error
	UpdateMapping(ctx context.Context, m *model.SyncMapping) error
	DeleteMapping(ctx context.Context, userID, provider, id string) error
	DeleteMappings(ctx context.Context, userID, provider string) error

	CreateSyncHistory(ctx context.Context, userID, syncType, status string, durationMs int64, details json.RawMessage) error
}

// RemoteTaskClient is the provider surface. *TickTickClient implements it.
type RemoteTaskClient interface {
	FetchProjectTasks(ctx context.Context, token, projectID string) ([]model.TickTickTask, error)
	CreateTask(ctx context.Context, token string, task *model.TickTickTask) (*model.TickTickTask, error)
	UpdateTask(ctx context.Context, token string, task *model.TickTickTask) error
	DeleteTask(ctx context.Context, token, projectID, taskID string) error
}

type SyncService struct {
	store    SyncStore
	client   RemoteTaskClient
	activity *ActivityService
	game     *GamificationService
	logger   *log.Logger

	mu       sync.Mutex
	inflight map[string]bool
}

func NewSyncService(store SyncStore, client RemoteTaskClient, activity *ActivityService, game *GamificationService, logger *log.Logger) *SyncService {
	if logger == nil {
		logger = log.New(os.Stderr, "[sync] ", log.LstdFlags)
	}
	return &SyncService{
		store:    store,
		client:   client,
		activity: activity,
		game:     game,
		logger:   logger,
		inflight: make(map[string]bool),
	}
}

// acquire is the per-user single-flight guard: two overlapping passes for
// one user would race on mapping upserts.
func (s *SyncService) acquire(userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inflight[userID] {
		return ErrSyncInProgress
	}
	s.inflight[userID] = true
	return nil
}

func (s *SyncService) release(userID string) {
	s.mu.Lock()
	delete(s.inflight, userID)
	s.mu.Unlock()
}

// Sync runs one reconciliation pass for a user. Failures before the per-item
// loop (credential gate, remote fetch) abort the whole pass; failures inside
// it are isolated per item and aggregated into the result's error count.
func (s *SyncService) Sync(ctx context.Context, userID string, req model.SyncRequest) (*model.SyncResult, error) {
	if req.ProjectID == "" {
		return nil, errors.New("projectId is required")
	}
	if err := s.acquire(userID); err != nil {
		return nil, err
	}
	defer s.release(userID)

	start := time.Now()

	creds, err := s.store.GetCredentials(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotConnected
		}
		return nil, err
	}
	if time.Until(creds.ExpiresAt) <= tokenExpiryLeeway {
		return nil, ErrTokenExpired
	}

	remote, err := s.client.FetchProjectTasks(ctx, creds.AccessToken, req.ProjectID)
	if err != nil {
		s.recordHistory(userID, req.SyncType, "failed", time.Since(start), &model.SyncResult{Message: err.Error()})
		return nil, fmt.Errorf("%w: %v", ErrRemoteFetch, err)
	}

	var result *model.SyncResult
	if req.SyncType == "notes" {
		result, err = s.syncNotes(ctx, userID, remote)
	} else {
		result, err = s.syncTasks(ctx, userID, creds.AccessToken, req, remote)
	}
	if err != nil {
		s.recordHistory(userID, req.SyncType, "failed", time.Since(start), &model.SyncResult{Message: err.Error()})
		return nil, err
	}

	result.Success = true
	result.LastSynced = time.Now()
	result.Message = fmt.Sprintf("sync complete: %d created, %d updated, %d deleted, %d errors",
		result.Created, result.Updated, result.Deleted, result.Errors)

	s.recordHistory(userID, req.SyncType, "success", time.Since(start), result)
	s.notifySync(ctx, userID, req, result)
	return result, nil
}

func (s *SyncService) syncTasks(ctx context.Context, userID, token string, req model.SyncRequest, remote []model.TickTickTask) (*model.SyncResult, error) {
	local, err := s.store.ListTasks(ctx, userID, true)
	if err != nil {
		return nil, err
	}
	mappings, err := s.store.ListMappings(ctx, userID, model.ProviderTickTick, model.ItemTypeTask)
	if err != nil {
		return nil, err
	}

	direction := model.SyncDirection(req.Direction)
	if direction == "" {
		direction = model.SyncFromRemote
	}
	strategy := model.ResolutionStrategy(req.ResolutionStrategy)
	if strategy == "" {
		strategy = model.ResolveNewer
	}

	withTags := req.WithTags()
	actions := planTaskSync(local, remote, mappings, direction, strategy, withTags)

	result := &model.SyncResult{}
	now := time.Now()
	for _, a := range actions {
		if err := s.applyTaskAction(ctx, userID, token, req.ProjectID, a, now, withTags, result); err != nil {
			s.logger.Printf("user %s: task action failed: %v", userID, err)
			result.Errors++
		}
	}
	return result, nil
}

func (s *SyncService) applyTaskAction(ctx context.Context, userID, token, projectID string, a syncAction, now time.Time, withTags bool, result *model.SyncResult) error {
	switch a.kind {
	case actionCreateLocal:
		t := taskFromRemote(userID, uuid.NewString(), a.remote, now, withTags)
		if err := s.store.CreateTask(ctx, t); err != nil {
			return fmt.Errorf("create task from remote %s: %w", a.remote.ID, err)
		}
		if err := s.touchMapping(ctx, userID, a.mapping, t.ID, a.remote.ID, now); err != nil {
			return err
		}
		result.Created++

	case actionUpdateLocal, actionRestoreLocal:
		t := *a.local
		applyRemoteTask(&t, a.remote, now, withTags)
		if a.kind == actionRestoreLocal {
			t.IsDeleted = false
			t.DeletedAt = nil
		}
		if err := s.store.UpdateTask(ctx, &t); err != nil {
			return fmt.Errorf("update task %s from remote %s: %w", t.ID, a.remote.ID, err)
		}
		if err := s.touchMapping(ctx, userID, a.mapping, t.ID, a.remote.ID, now); err != nil {
			return err
		}
		result.Updated++

	case actionCreateRemote:
		rt := remoteTaskFromLocal(a.local, projectID, "", withTags)
		created, err := s.client.CreateTask(ctx, token, rt)
		if err != nil {
			return fmt.Errorf("push task %s to remote: %w", a.local.ID, err)
		}
		if err := s.touchMapping(ctx, userID, a.mapping, a.local.ID, created.ID, now); err != nil {
			return err
		}
		result.Created++

	case actionUpdateRemote:
		rt := remoteTaskFromLocal(a.local, projectID, a.mapping.RemoteID, withTags)
		if err := s.client.UpdateTask(ctx, token, rt); err != nil {
			return fmt.Errorf("push task %s to remote %s: %w", a.local.ID, a.mapping.RemoteID, err)
		}
		if err := s.touchMapping(ctx, userID, a.mapping, a.local.ID, a.mapping.RemoteID, now); err != nil {
			return err
		}
		result.Updated++

	case actionDeleteMapping:
		if err := s.store.DeleteMapping(ctx, userID, model.ProviderTickTick, a.mapping.ID); err != nil {
			return fmt.Errorf("delete mapping %s: %w", a.mapping.ID, err)
		}
		result.Deleted++

	case actionTouchMapping:
		return s.touchMapping(ctx, userID, a.mapping, a.mapping.LocalID, a.mapping.RemoteID, now)
	}
	return nil
}

// touchMapping refreshes an existing ledger row (re-pointing it when the
// local or remote side changed) or creates a fresh one. An existing row is
// always updated by its primary key: the remote-id-keyed upsert cannot
// re-point a row to a remote id that has no row yet.
func (s *SyncService) touchMapping(ctx context.Context, userID string, existing *model.SyncMapping, localID, remoteID string, now time.Time) error {
	if existing != nil {
		m := *existing
		m.LocalID = localID
		m.RemoteID = remoteID
		m.LastSyncedAt = now
		if err := s.store.UpdateMapping(ctx, &m); err != nil {
			return fmt.Errorf("update mapping %s<->%s: %w", localID, remoteID, err)
		}
		return nil
	}
	m := model.SyncMapping{
		ID:           uuid.NewString(),
		UserID:       userID,
		Provider:     model.ProviderTickTick,
		ItemType:     model.ItemTypeTask,
		LocalID:      localID,
		RemoteID:     remoteID,
		LastSyncedAt: now,
	}
	if err := s.store.UpsertMapping(ctx, &m); err != nil {
		return fmt.Errorf("upsert mapping %s<->%s: %w", localID, remoteID, err)
	}
	return nil
}

func (s *SyncService) syncNotes(ctx context.Context, userID string, remote []model.TickTickTask) (*model.SyncResult, error) {
	notes, err := s.store.ListNotes(ctx, userID, true)
	if err != nil {
		return nil, err
	}
	mappings, err := s.store.ListMappings(ctx, userID, model.ProviderTickTick, model.ItemTypeNote)
	if err != nil {
		return nil, err
	}

	actions := planNoteSync(notes, remote, mappings)

	result := &model.SyncResult{}
	now := time.Now()
	for _, a := range actions {
		if err := s.applyNoteAction(ctx, userID, a, now, result); err != nil {
			s.logger.Printf("user %s: note action failed: %v", userID, err)
			result.Errors++
		}
	}
	return result, nil
}

func (s *SyncService) applyNoteAction(ctx context.Context, userID string, a syncAction, now time.Time, result *model.SyncResult) error {
	switch a.kind {
	case actionCreateLocal:
		n := noteFromRemote(userID, uuid.NewString(), a.remote, now)
		if err := s.store.CreateNote(ctx, n); err != nil {
			return fmt.Errorf("create note from remote %s: %w", a.remote.ID, err)
		}
		m := model.SyncMapping{
			ID:           uuid.NewString(),
			UserID:       userID,
			Provider:     model.ProviderTickTick,
			ItemType:     model.ItemTypeNote,
			LocalID:      n.ID,
			RemoteID:     a.remote.ID,
			LastSyncedAt: now,
		}
		if err := s.store.UpsertMapping(ctx, &m); err != nil {
			return fmt.Errorf("upsert note mapping: %w", err)
		}
		result.Created++

	case actionUpdateLocal:
		n := *a.note
		applyRemoteNote(&n, a.remote, now)
		if err := s.store.UpdateNote(ctx, &n); err != nil {
			return fmt.Errorf("update note %s from remote %s: %w", n.ID, a.remote.ID, err)
		}
		a.mapping.LastSyncedAt = now
		if err := s.store.UpdateMapping(ctx, a.mapping); err != nil {
			return fmt.Errorf("refresh note mapping: %w", err)
		}
		result.Updated++
	}
	return nil
}

// ResetSync wipes all mappings for the user. Local and remote data stay.
func (s *SyncService) ResetSync(ctx context.Context, userID string) error {
	return s.store.DeleteMappings(ctx, userID, model.ProviderTickTick)
}

func (s *SyncService) recordHistory(userID, syncType, status string, duration time.Duration, result *model.SyncResult) {
	details, _ := json.Marshal(result)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.store.CreateSyncHistory(ctx, userID, syncType, status, duration.Milliseconds(), details); err != nil {
		s.logger.Printf("user %s: could not record sync history: %v", userID, err)
	}
}

// notifySync fires the audit and gamification side effects. Neither is
// allowed to fail the sync.
func (s *SyncService) notifySync(ctx context.Context, userID string, req model.SyncRequest, result *model.SyncResult) {
	itemType := model.ItemTypeTask
	if req.SyncType == "notes" {
		itemType = model.ItemTypeNote
	}
	if s.activity != nil {
		s.activity.LogActivity(ctx, userID, "sync", itemType, req.ProjectID, "TickTick sync",
			result.Message, map[string]int{
				"created": result.Created,
				"updated": result.Updated,
				"deleted": result.Deleted,
				"errors":  result.Errors,
			})
	}
	if s.game != nil && result.Created+result.Updated > 0 {
		if _, err := s.game.AwardSyncXP(ctx, userID); err != nil {
			s.logger.Printf("user %s: could not award sync xp: %v", userID, err)
		}
	}
}
