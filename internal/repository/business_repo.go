package repository

import (
	"context"

	"gorm.io/gorm"

	"enib-internships/backend/internal/model"
)

// BusinessRepository 企业数据访问接口
type BusinessRepository interface {
	Create(ctx context.Context, b *model.Business) error
	GetByID(ctx context.Context, id string) (*model.Business, error)
	List(ctx context.Context, keyword string) ([]model.Business, error)
	Update(ctx context.Context, b *model.Business) error
	Delete(ctx context.Context, id string) error
}

type businessRepo struct {
	db *gorm.DB
}

// NewBusinessRepo 创建 BusinessRepository 实例
func NewBusinessRepo(db *gorm.DB) BusinessRepository {
	return &businessRepo{db: db}
}

func (r *businessRepo) Create(ctx context.Context, b *model.Business) error {
	return r.db.WithContext(ctx).Create(b).Error
}

func (r *businessRepo) GetByID(ctx context.Context, id string) (*model.Business, error) {
	var b model.Business
	if err := r.db.WithContext(ctx).Where("business_id = ?", id).First(&b).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *businessRepo) List(ctx context.Context, keyword string) ([]model.Business, error) {
	var list []model.Business
	query := r.db.WithContext(ctx).Model(&model.Business{})
	if keyword != "" {
		like := "%" + keyword + "%"
		query = query.Where("name ILIKE ? OR city ILIKE ?", like, like)
	}
	err := query.Order("name ASC").Find(&list).Error
	return list, err
}

func (r *businessRepo) Update(ctx context.Context, b *model.Business) error {
	return r.db.WithContext(ctx).Save(b).Error
}

// Delete 软删除
func (r *businessRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("business_id = ?", id).Delete(&model.Business{}).Error
}
