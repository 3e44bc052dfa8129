package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"enib-internships/backend/internal/dto"
	"enib-internships/backend/internal/model"
	"enib-internships/backend/internal/repository"
	"enib-internships/backend/internal/statistics"
	pkgerrors "enib-internships/backend/pkg/errors"
)

var ErrMentorEmailTaken = errors.New("导师邮箱已被使用")

// MentorService 导师业务接口
type MentorService interface {
	Create(ctx context.Context, req *dto.MentorRequest) (*dto.MentorResponse, error)
	GetByID(ctx context.Context, id string) (*dto.MentorResponse, error)
	List(ctx context.Context) ([]dto.MentorResponse, error)
	Update(ctx context.Context, id string, req *dto.MentorRequest) (*dto.MentorResponse, error)
	Delete(ctx context.Context, id string) error
}

type mentorService struct {
	repo   *repository.Repository
	stats  *statistics.Cache
	logger *zap.Logger
}

// NewMentorService 创建 MentorService 实例
func NewMentorService(repo *repository.Repository, stats *statistics.Cache, logger *zap.Logger) MentorService {
	return &mentorService{repo: repo, stats: stats, logger: logger}
}

func (s *mentorService) Create(ctx context.Context, req *dto.MentorRequest) (*dto.MentorResponse, error) {
	m := &model.Mentor{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     strings.ToLower(req.Email),
		Role:      mentorRole(req.Role),
	}
	if err := s.repo.Mentor.Create(ctx, m); err != nil {
		if errors.Is(err, pkgerrors.ErrDuplicate) {
			return nil, ErrMentorEmailTaken
		}
		s.logger.Error("创建导师失败", zap.Error(err))
		return nil, err
	}
	s.stats.AddMentor()
	return toMentorResponse(m), nil
}

func (s *mentorService) GetByID(ctx context.Context, id string) (*dto.MentorResponse, error) {
	m, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return toMentorResponse(m), nil
}

func (s *mentorService) List(ctx context.Context) ([]dto.MentorResponse, error) {
	list, err := s.repo.Mentor.List(ctx)
	if err != nil {
		return nil, err
	}
	result := make([]dto.MentorResponse, 0, len(list))
	for i := range list {
		result = append(result, *toMentorResponse(&list[i]))
	}
	return result, nil
}

func (s *mentorService) Update(ctx context.Context, id string, req *dto.MentorRequest) (*dto.MentorResponse, error) {
	m, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	m.FirstName = req.FirstName
	m.LastName = req.LastName
	m.Email = strings.ToLower(req.Email)
	m.Role = mentorRole(req.Role)
	if err := s.repo.Mentor.Update(ctx, m); err != nil {
		if errors.Is(err, pkgerrors.ErrDuplicate) {
			return nil, ErrMentorEmailTaken
		}
		s.logger.Error("更新导师失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toMentorResponse(m), nil
}

func (s *mentorService) Delete(ctx context.Context, id string) error {
	if _, err := s.load(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Mentor.Delete(ctx, id); err != nil {
		s.logger.Error("删除导师失败", zap.String("id", id), zap.Error(err))
		return err
	}
	s.stats.RemoveMentor()
	return nil
}

func (s *mentorService) load(ctx context.Context, id string) (*model.Mentor, error) {
	m, err := s.repo.Mentor.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMentorNotFound
		}
		return nil, err
	}
	return m, nil
}

func mentorRole(role string) model.MentorRole {
	if model.MentorRole(role) == model.MentorRoleAdmin {
		return model.MentorRoleAdmin
	}
	return model.MentorRoleDefault
}
