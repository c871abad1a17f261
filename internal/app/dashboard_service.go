package app

import (
	"context"
	"fmt"

	"studymate/internal/model"
	"studymate/internal/repository"
)

const recentActivityLimit = 10

type DashboardStats struct {
	Documents int64 `json:"documents"`
	Summaries int64 `json:"summaries"`
	Chats     int64 `json:"chats"`
	Quizzes   int64 `json:"quizzes"`
}

type DashboardService struct {
	docs     *repository.DocumentRepository
	activity *repository.ActivityRepository
}

func NewDashboardService(docs *repository.DocumentRepository, activity *repository.ActivityRepository) *DashboardService {
	return &DashboardService{docs: docs, activity: activity}
}

func (s *DashboardService) Stats(ctx context.Context) (*DashboardStats, error) {
	documents, err := s.docs.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	counts, err := s.activity.CountByAction(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return &DashboardStats{
		Documents: documents,
		Summaries: counts[model.ActionSummary],
		Chats:     counts[model.ActionChat],
		Quizzes:   counts[model.ActionQuizCompleted],
	}, nil
}

// RecentActivity returns the latest entries, newest first.
func (s *DashboardService) RecentActivity(ctx context.Context) ([]model.ActivityLog, error) {
	entries, err := s.activity.ListRecent(ctx, recentActivityLimit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	if entries == nil {
		entries = []model.ActivityLog{}
	}
	return entries, nil
}
