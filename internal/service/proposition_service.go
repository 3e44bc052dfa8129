package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"enib-internships/backend/internal/dto"
	"enib-internships/backend/internal/model"
	"enib-internships/backend/internal/repository"
	"enib-internships/backend/internal/statistics"
)

var (
	ErrPropositionNotFound     = errors.New("指导意向不存在")
	ErrPropositionNotAvailable = errors.New("该实习不在此批次的可选列表中")
	ErrPropositionLimitReached = errors.New("已达到本批次的指导意向上限")
	ErrPropositionMentorNeeded = errors.New("缺少导师身份")
)

// PropositionService 导师指导意向业务接口
type PropositionService interface {
	Create(ctx context.Context, campaignID string, req *dto.PropositionRequest, callerMentorID string) (*dto.PropositionResponse, error)
	ListByCampaign(ctx context.Context, campaignID string) ([]dto.PropositionResponse, error)
	Delete(ctx context.Context, campaignID, id string) error
}

type propositionService struct {
	repo   *repository.Repository
	stats  *statistics.Cache
	logger *zap.Logger
}

// NewPropositionService 创建 PropositionService 实例
func NewPropositionService(repo *repository.Repository, stats *statistics.Cache, logger *zap.Logger) PropositionService {
	return &propositionService{repo: repo, stats: stats, logger: logger}
}

// Create 管理员可通过 req.MentorID 代导师提交；否则使用调用者自身的导师身份
func (s *propositionService) Create(ctx context.Context, campaignID string, req *dto.PropositionRequest, callerMentorID string) (*dto.PropositionResponse, error) {
	campaign, err := s.repo.Campaign.GetByID(ctx, campaignID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCampaignNotFound
		}
		return nil, err
	}

	mentorID := req.MentorID
	if mentorID == "" {
		mentorID = callerMentorID
	}
	if mentorID == "" {
		return nil, ErrPropositionMentorNeeded
	}
	if _, err := s.repo.Mentor.GetByID(ctx, mentorID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMentorNotFound
		}
		return nil, err
	}

	internship, err := s.repo.Internship.GetByID(ctx, req.InternshipID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInternshipNotFound
		}
		return nil, err
	}
	if internship.AvailableCampaignID == nil || *internship.AvailableCampaignID != campaignID {
		return nil, ErrPropositionNotAvailable
	}

	if campaign.MaxProposition > 0 {
		n, err := s.repo.Proposition.CountByMentor(ctx, campaignID, mentorID)
		if err != nil {
			return nil, err
		}
		if n >= int64(campaign.MaxProposition) {
			return nil, ErrPropositionLimitReached
		}
	}

	p := &model.MentoringProposition{
		Comment:      req.Comment,
		CampaignID:   campaignID,
		MentorID:     mentorID,
		InternshipID: req.InternshipID,
	}
	if err := s.repo.Proposition.Create(ctx, p); err != nil {
		s.logger.Error("创建指导意向失败", zap.String("campaign_id", campaignID), zap.Error(err))
		return nil, err
	}
	s.stats.AddProposition()
	s.stats.LinkProposition(campaignID)

	return toPropositionResponse(p), nil
}

func (s *propositionService) ListByCampaign(ctx context.Context, campaignID string) ([]dto.PropositionResponse, error) {
	list, err := s.repo.Proposition.ListByCampaign(ctx, campaignID)
	if err != nil {
		s.logger.Error("列出指导意向失败", zap.String("campaign_id", campaignID), zap.Error(err))
		return nil, err
	}
	result := make([]dto.PropositionResponse, 0, len(list))
	for i := range list {
		result = append(result, *toPropositionResponse(&list[i]))
	}
	return result, nil
}

func (s *propositionService) Delete(ctx context.Context, campaignID, id string) error {
	p, err := s.repo.Proposition.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPropositionNotFound
		}
		return err
	}
	if p.CampaignID != campaignID {
		return ErrPropositionNotFound
	}
	if err := s.repo.Proposition.Delete(ctx, id); err != nil {
		s.logger.Error("删除指导意向失败", zap.String("id", id), zap.Error(err))
		return err
	}
	s.stats.RemoveProposition()
	s.stats.UnlinkProposition(campaignID)
	return nil
}
