package repository

import (
	"context"

	"gorm.io/gorm"

	"enib-internships/backend/internal/model"
)

// FileRepository 附件元数据访问接口
type FileRepository interface {
	Create(ctx context.Context, f *model.File) error
	GetByID(ctx context.Context, id string) (*model.File, error)
	ListByInternship(ctx context.Context, internshipID string) ([]model.File, error)
	Delete(ctx context.Context, id string) error
}

type fileRepo struct {
	db *gorm.DB
}

// NewFileRepo 创建 FileRepository 实例
func NewFileRepo(db *gorm.DB) FileRepository {
	return &fileRepo{db: db}
}

func (r *fileRepo) Create(ctx context.Context, f *model.File) error {
	return r.db.WithContext(ctx).Create(f).Error
}

func (r *fileRepo) GetByID(ctx context.Context, id string) (*model.File, error) {
	var f model.File
	if err := r.db.WithContext(ctx).Where("file_id = ?", id).First(&f).Error; err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *fileRepo) ListByInternship(ctx context.Context, internshipID string) ([]model.File, error) {
	var list []model.File
	err := r.db.WithContext(ctx).
		Where("internship_id = ?", internshipID).
		Order("created_at ASC").
		Find(&list).Error
	return list, err
}

func (r *fileRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("file_id = ?", id).Delete(&model.File{}).Error
}
