package query

import (
	"context"
	"time"

	"github.com/eaglebank/ledger-service/internal/repository"
	"github.com/eaglebank/ledger-service/shared/cqrs"
	"github.com/eaglebank/ledger-service/shared/models"
)

// StatisticsQueryService recomputes the summary on every call.
type StatisticsQueryService struct {
	store repository.AccountStore
}

func NewStatisticsQueryService(store repository.AccountStore) *StatisticsQueryService {
	return &StatisticsQueryService{store: store}
}

func (s *StatisticsQueryService) ComputeStatistics(ctx context.Context) (*models.Statistics, error) {
	accounts, err := s.store.ListAccounts(ctx)
	if err != nil {
		return nil, err
	}
	stats := models.Summarize(accounts)
	return &stats, nil
}

// ActivityQueryService reads the per-day activity log.
type ActivityQueryService struct {
	store repository.ActivityStore
}

func NewActivityQueryService(store repository.ActivityStore) *ActivityQueryService {
	return &ActivityQueryService{store: store}
}

func (s *ActivityQueryService) ListActivity(ctx context.Context, q cqrs.ActivityQuery) ([]models.ActivityEntry, error) {
	day := q.Day
	if day.IsZero() {
		day = time.Now().UTC()
	}
	return s.store.ListActivity(ctx, day)
}
