package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"enib-internships/backend/internal/dto"
	"enib-internships/backend/internal/model"
	"enib-internships/backend/internal/repository"
	pkgerrors "enib-internships/backend/pkg/errors"
)

var (
	ErrInternshipTypeNotFound  = errors.New("实习类别不存在")
	ErrInternshipTypeDuplicate = errors.New("实习类别名称已存在")
)

// InternshipTypeService 实习类别业务接口
type InternshipTypeService interface {
	Create(ctx context.Context, req *dto.InternshipTypeRequest) (*dto.InternshipTypeResponse, error)
	List(ctx context.Context) ([]dto.InternshipTypeResponse, error)
	Update(ctx context.Context, id string, req *dto.InternshipTypeRequest) (*dto.InternshipTypeResponse, error)
	Delete(ctx context.Context, id string) error
}

type internshipTypeService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewInternshipTypeService 创建 InternshipTypeService 实例
func NewInternshipTypeService(repo *repository.Repository, logger *zap.Logger) InternshipTypeService {
	return &internshipTypeService{repo: repo, logger: logger}
}

func (s *internshipTypeService) Create(ctx context.Context, req *dto.InternshipTypeRequest) (*dto.InternshipTypeResponse, error) {
	t := &model.InternshipType{Label: req.Label, Description: req.Description}
	if err := s.repo.InternshipType.Create(ctx, t); err != nil {
		if errors.Is(err, pkgerrors.ErrDuplicate) {
			return nil, ErrInternshipTypeDuplicate
		}
		s.logger.Error("创建实习类别失败", zap.Error(err))
		return nil, err
	}
	return toInternshipTypeResponse(t), nil
}

func (s *internshipTypeService) List(ctx context.Context) ([]dto.InternshipTypeResponse, error) {
	list, err := s.repo.InternshipType.List(ctx)
	if err != nil {
		return nil, err
	}
	result := make([]dto.InternshipTypeResponse, 0, len(list))
	for i := range list {
		result = append(result, *toInternshipTypeResponse(&list[i]))
	}
	return result, nil
}

func (s *internshipTypeService) Update(ctx context.Context, id string, req *dto.InternshipTypeRequest) (*dto.InternshipTypeResponse, error) {
	t, err := s.repo.InternshipType.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInternshipTypeNotFound
		}
		return nil, err
	}
	t.Label = req.Label
	t.Description = req.Description
	if err := s.repo.InternshipType.Update(ctx, t); err != nil {
		if errors.Is(err, pkgerrors.ErrDuplicate) {
			return nil, ErrInternshipTypeDuplicate
		}
		s.logger.Error("更新实习类别失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toInternshipTypeResponse(t), nil
}

func (s *internshipTypeService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.InternshipType.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInternshipTypeNotFound
		}
		return err
	}
	return s.repo.InternshipType.Delete(ctx, id)
}
