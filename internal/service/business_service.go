package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"enib-internships/backend/internal/dto"
	"enib-internships/backend/internal/model"
	"enib-internships/backend/internal/repository"
)

var ErrBusinessNotFound = errors.New("企业不存在")

// BusinessService 企业业务接口
type BusinessService interface {
	Create(ctx context.Context, req *dto.BusinessRequest) (*dto.BusinessResponse, error)
	GetByID(ctx context.Context, id string) (*dto.BusinessResponse, error)
	List(ctx context.Context, keyword string) ([]dto.BusinessResponse, error)
	Update(ctx context.Context, id string, req *dto.BusinessRequest) (*dto.BusinessResponse, error)
	Delete(ctx context.Context, id string) error
}

type businessService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewBusinessService 创建 BusinessService 实例
func NewBusinessService(repo *repository.Repository, logger *zap.Logger) BusinessService {
	return &businessService{repo: repo, logger: logger}
}

func (s *businessService) Create(ctx context.Context, req *dto.BusinessRequest) (*dto.BusinessResponse, error) {
	b := &model.Business{}
	applyBusinessRequest(b, req)
	if err := s.repo.Business.Create(ctx, b); err != nil {
		s.logger.Error("创建企业失败", zap.Error(err))
		return nil, err
	}
	return toBusinessResponse(b), nil
}

func (s *businessService) GetByID(ctx context.Context, id string) (*dto.BusinessResponse, error) {
	b, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return toBusinessResponse(b), nil
}

func (s *businessService) List(ctx context.Context, keyword string) ([]dto.BusinessResponse, error) {
	list, err := s.repo.Business.List(ctx, keyword)
	if err != nil {
		return nil, err
	}
	result := make([]dto.BusinessResponse, 0, len(list))
	for i := range list {
		result = append(result, *toBusinessResponse(&list[i]))
	}
	return result, nil
}

func (s *businessService) Update(ctx context.Context, id string, req *dto.BusinessRequest) (*dto.BusinessResponse, error) {
	b, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	applyBusinessRequest(b, req)
	if err := s.repo.Business.Update(ctx, b); err != nil {
		s.logger.Error("更新企业失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toBusinessResponse(b), nil
}

func (s *businessService) Delete(ctx context.Context, id string) error {
	if _, err := s.load(ctx, id); err != nil {
		return err
	}
	return s.repo.Business.Delete(ctx, id)
}

func (s *businessService) load(ctx context.Context, id string) (*model.Business, error) {
	b, err := s.repo.Business.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBusinessNotFound
		}
		return nil, err
	}
	return b, nil
}

func applyBusinessRequest(b *model.Business, req *dto.BusinessRequest) {
	b.Name = req.Name
	b.Country = req.Country
	if b.Country == "" {
		b.Country = "France"
	}
	b.City = req.City
	b.PostalCode = req.PostalCode
	b.Address = req.Address
	b.Additional = req.Additional
}
