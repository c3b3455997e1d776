package service

import (
	"context"
	"time"

	"github.com/ananyateklu/second-brain-sub000/internal/model"
)

type StatsStore interface {
	GetUserStats(ctx context.Context, userID string) (*model.UserStats, error)
	SaveUserStats(ctx context.Context, s *model.UserStats) error
}

type GamificationService struct {
	store         StatsStore
	xpPerCreate   int
	xpPerComplete int
	xpPerSync     int
}

func NewGamificationService(store StatsStore, xpPerCreate, xpPerComplete, xpPerSync int) *GamificationService {
	return &GamificationService{
		store:         store,
		xpPerCreate:   xpPerCreate,
		xpPerComplete: xpPerComplete,
		xpPerSync:     xpPerSync,
	}
}

// LevelForXP maps total XP to a level. Level 2 costs 100 XP and each next
// level costs 50 more than the one before it.
func LevelForXP(xp int) int {
	level := 1
	need := 100
	for xp >= need {
		xp -= need
		level++
		need += 50
	}
	return level
}

func (s *GamificationService) AwardXP(ctx context.Context, userID string, points int) (*model.UserStats, error) {
	stats, err := s.store.GetUserStats(ctx, userID)
	if err != nil {
		return nil, err
	}
	stats.XP += points
	stats.Level = LevelForXP(stats.XP)
	stats.UpdatedAt = time.Now()
	if err := s.store.SaveUserStats(ctx, stats); err != nil {
		return nil, err
	}
	return stats, nil
}

func (s *GamificationService) AwardCreateXP(ctx context.Context, userID string) (*model.UserStats, error) {
	return s.AwardXP(ctx, userID, s.xpPerCreate)
}

func (s *GamificationService) AwardCompleteXP(ctx context.Context, userID string) (*model.UserStats, error) {
	return s.AwardXP(ctx, userID, s.xpPerComplete)
}

func (s *GamificationService) AwardSyncXP(ctx context.Context, userID string) (*model.UserStats, error) {
	return s.AwardXP(ctx, userID, s.xpPerSync)
}

func (s *GamificationService) GetStats(ctx context.Context, userID string) (*model.UserStats, error) {
	return s.store.GetUserStats(ctx, userID)
}
