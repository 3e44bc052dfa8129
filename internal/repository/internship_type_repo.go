package repository

import (
	"context"

	"gorm.io/gorm"

	"enib-internships/backend/internal/model"
)

// InternshipTypeRepository 实习类别数据访问接口
type InternshipTypeRepository interface {
	Create(ctx context.Context, t *model.InternshipType) error
	GetByID(ctx context.Context, id string) (*model.InternshipType, error)
	List(ctx context.Context) ([]model.InternshipType, error)
	Update(ctx context.Context, t *model.InternshipType) error
	Delete(ctx context.Context, id string) error
}

type internshipTypeRepo struct {
	db *gorm.DB
}

// NewInternshipTypeRepo 创建 InternshipTypeRepository 实例
func NewInternshipTypeRepo(db *gorm.DB) InternshipTypeRepository {
	return &internshipTypeRepo{db: db}
}

func (r *internshipTypeRepo) Create(ctx context.Context, t *model.InternshipType) error {
	return translate(r.db.WithContext(ctx).Create(t).Error)
}

func (r *internshipTypeRepo) GetByID(ctx context.Context, id string) (*model.InternshipType, error) {
	var t model.InternshipType
	if err := r.db.WithContext(ctx).Where("internship_type_id = ?", id).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *internshipTypeRepo) List(ctx context.Context) ([]model.InternshipType, error) {
	var types []model.InternshipType
	err := r.db.WithContext(ctx).Order("label ASC").Find(&types).Error
	return types, err
}

func (r *internshipTypeRepo) Update(ctx context.Context, t *model.InternshipType) error {
	return translate(r.db.WithContext(ctx).Save(t).Error)
}

func (r *internshipTypeRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("internship_type_id = ?", id).Delete(&model.InternshipType{}).Error
}
