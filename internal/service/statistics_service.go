package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"enib-internships/backend/internal/model"
	"enib-internships/backend/internal/repository"
	"enib-internships/backend/internal/statistics"
)

var ErrCampaignStatisticsNotFound = errors.New("批次统计不存在")

// StatisticsService 统计查询与全量重建
type StatisticsService interface {
	// Resync 清空缓存并按数据库计数重建；进程启动时调用一次
	Resync(ctx context.Context) error
	Global() statistics.GlobalSnapshot
	Campaign(id string) (*statistics.CampaignSnapshot, error)
	Campaigns() []statistics.CampaignSnapshot
}

type statisticsService struct {
	repo   *repository.Repository
	cache  *statistics.Cache
	logger *zap.Logger
}

// NewStatisticsService 创建 StatisticsService 实例
func NewStatisticsService(repo *repository.Repository, cache *statistics.Cache, logger *zap.Logger) StatisticsService {
	return &statisticsService{repo: repo, cache: cache, logger: logger}
}

func (s *statisticsService) Resync(ctx context.Context) error {
	byState, err := s.repo.Internship.CountByState(ctx)
	if err != nil {
		s.logger.Error("统计实习状态失败", zap.Error(err))
		return err
	}
	mentors, err := s.repo.Mentor.Count(ctx)
	if err != nil {
		return err
	}
	students, err := s.repo.Student.Count(ctx)
	if err != nil {
		return err
	}
	propositions, err := s.repo.Proposition.Count(ctx)
	if err != nil {
		return err
	}
	counts, err := s.repo.Campaign.Counts(ctx)
	if err != nil {
		s.logger.Error("统计批次失败", zap.Error(err))
		return err
	}

	global := statistics.GlobalSnapshot{
		States:       make(statistics.StateCounts, len(model.InternshipStates)),
		Mentors:      int(mentors),
		Students:     int(students),
		Propositions: int(propositions),
	}
	for state, n := range byState {
		global.States[state] = int(n)
	}
	campaigns := make([]statistics.CampaignSnapshot, 0, len(counts))
	for _, c := range counts {
		campaigns = append(campaigns, statistics.CampaignSnapshot{
			CampaignID:   c.CampaignID,
			Internships:  c.Internships,
			Available:    c.Available,
			Attributed:   c.Attributed,
			Mentors:      c.Mentors,
			Students:     c.Students,
			Propositions: c.Propositions,
		})
	}

	s.cache.Reset()
	s.cache.Init(global, campaigns...)

	s.logger.Info("统计缓存已重建",
		zap.Int("internships", s.cache.Global().Total),
		zap.Int("campaigns", len(campaigns)),
	)
	return nil
}

func (s *statisticsService) Global() statistics.GlobalSnapshot {
	return s.cache.Global()
}

func (s *statisticsService) Campaign(id string) (*statistics.CampaignSnapshot, error) {
	snap, ok := s.cache.Campaign(id)
	if !ok {
		return nil, ErrCampaignStatisticsNotFound
	}
	return &snap, nil
}

func (s *statisticsService) Campaigns() []statistics.CampaignSnapshot {
	return s.cache.Campaigns()
}
