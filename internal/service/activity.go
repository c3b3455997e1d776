package service

import (
	"context"
	"encoding/json"
	"log"
	"os"

	"github.com/ananyateklu/second-brain-sub000/internal/model"
)

type ActivityStore interface {
	CreateActivityLog(ctx context.Context, a *model.ActivityLog) error
	ListActivityLogs(ctx context.Context, userID string, limit int) ([]model.ActivityLog, error)

	GetTask(ctx context.Context, userID, id string, includeDeleted bool) (*model.Task, error)
	GetNote(ctx context.Context, userID, id string, includeDeleted bool) (*model.Note, error)
	GetIdea(ctx context.Context, userID, id string) (*model.Idea, error)
	GetReminder(ctx context.Context, userID, id string) (*model.Reminder, error)
}

// ActivityService is a fire-and-forget audit sink: a failed write is logged
// and never propagated to the operation that triggered it.
type ActivityService struct {
	store  ActivityStore
	logger *log.Logger
}

func NewActivityService(store ActivityStore, logger *log.Logger) *ActivityService {
	if logger == nil {
		logger = log.New(os.Stderr, "[activity] ", log.LstdFlags)
	}
	return &ActivityService{store: store, logger: logger}
}

func (s *ActivityService) LogActivity(ctx context.Context, userID, actionType string, itemType model.ItemType, itemID, itemTitle, description string, metadata any) {
	var raw json.RawMessage
	if metadata != nil {
		b, err := json.Marshal(metadata)
		if err != nil {
			s.logger.Printf("user %s: could not marshal activity metadata: %v", userID, err)
		} else {
			raw = b
		}
	}

	a := &model.ActivityLog{
		UserID:      userID,
		ActionType:  actionType,
		ItemType:    itemType,
		ItemID:      itemID,
		ItemTitle:   itemTitle,
		Description: description,
		Metadata:    raw,
	}
	if err := s.store.CreateActivityLog(ctx, a); err != nil {
		s.logger.Printf("user %s: could not write activity log: %v", userID, err)
	}
}

func (s *ActivityService) ListActivities(ctx context.Context, userID string, limit int) ([]model.ActivityLog, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.store.ListActivityLogs(ctx, userID, limit)
}

// ResolveItemTitle looks up the title of a linked item. Each variant of the
// closed set has its own resolver branch; unknown types fail in
// model.ParseItemType before reaching this.
func (s *ActivityService) ResolveItemTitle(ctx context.Context, userID string, itemType model.ItemType, id string) (string, error) {
	switch itemType {
	case model.ItemTypeTask:
		t, err := s.store.GetTask(ctx, userID, id, true)
		if err != nil {
			return "", err
		}
		return t.Title, nil
	case model.ItemTypeNote:
		n, err := s.store.GetNote(ctx, userID, id, true)
		if err != nil {
			return "", err
		}
		return n.Title, nil
	case model.ItemTypeIdea:
		i, err := s.store.GetIdea(ctx, userID, id)
		if err != nil {
			return "", err
		}
		return i.Title, nil
	case model.ItemTypeReminder:
		m, err := s.store.GetReminder(ctx, userID, id)
		if err != nil {
			return "", err
		}
		return m.Title, nil
	}
	_, err := model.ParseItemType(string(itemType))
	return "", err
}
