package service

import (
	"context"
	"math"

	"okurmen-backend/internal/model"
	"okurmen-backend/internal/repository"
)

// RecentResultCount is how many results the dashboard lists.
const RecentResultCount = 10

// RecentResult is a stored result with its taker attached.
type RecentResult struct {
	model.Result
	User *UserSummary `json:"user"`
}

// DashboardData holds the metrics of the admin dashboard.
type DashboardData struct {
	TotalUsers        int64                `json:"totalUsers"`
	TotalQuestions    int64                `json:"totalQuestions"`
	TotalTests        int64                `json:"totalTests"`
	AvgScore          int                  `json:"avgScore"`
	LevelDistribution map[model.Tier]int64 `json:"levelDistribution"`
	RecentResults     []RecentResult       `json:"recentResults"`
}

type DashboardService interface {
	GetDashboard(ctx context.Context) (*DashboardData, error)
}

type dashboardService struct {
	stats   repository.StatsRepository
	results repository.ResultRepository
	users   repository.UserRepository
}

func NewDashboardService(
	stats repository.StatsRepository,
	results repository.ResultRepository,
	users repository.UserRepository,
) DashboardService {
	return &dashboardService{stats: stats, results: results, users: users}
}

// GetDashboard computes the totals. The average ignores zero percentages.
func (s *dashboardService) GetDashboard(ctx context.Context) (*DashboardData, error) {
	totals, err := s.stats.GetTotals(ctx)
	if err != nil {
		return nil, storeError("dashboard totals", "Statistics", err)
	}

	recent, err := s.results.ListResults(ctx, RecentResultCount)
	if err != nil {
		return nil, storeError("recent results", "Results", err)
	}
	summaries, err := userSummaries(ctx, s.users, recent)
	if err != nil {
		return nil, err
	}

	data := &DashboardData{
		TotalUsers:        totals.Users,
		TotalQuestions:    totals.Questions,
		TotalTests:        totals.Tests,
		AvgScore:          int(math.Round(totals.AvgScore)),
		LevelDistribution: totals.ByTier,
		RecentResults:     make([]RecentResult, 0, len(recent)),
	}
	for _, r := range recent {
		data.RecentResults = append(data.RecentResults, RecentResult{Result: r, User: summaries[r.UserID]})
	}
	return data, nil
}
