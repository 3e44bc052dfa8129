package repository

import (
	"context"

	"gorm.io/gorm"

	"enib-internships/backend/internal/model"
)

// MentorRepository 导师数据访问接口
type MentorRepository interface {
	Create(ctx context.Context, m *model.Mentor) error
	GetByID(ctx context.Context, id string) (*model.Mentor, error)
	GetByEmail(ctx context.Context, email string) (*model.Mentor, error)
	List(ctx context.Context) ([]model.Mentor, error)
	Update(ctx context.Context, m *model.Mentor) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}

type mentorRepo struct {
	db *gorm.DB
}

// NewMentorRepo 创建 MentorRepository 实例
func NewMentorRepo(db *gorm.DB) MentorRepository {
	return &mentorRepo{db: db}
}

func (r *mentorRepo) Create(ctx context.Context, m *model.Mentor) error {
	return translate(r.db.WithContext(ctx).Create(m).Error)
}

func (r *mentorRepo) GetByID(ctx context.Context, id string) (*model.Mentor, error) {
	var m model.Mentor
	if err := r.db.WithContext(ctx).Where("mentor_id = ?", id).First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *mentorRepo) GetByEmail(ctx context.Context, email string) (*model.Mentor, error) {
	var m model.Mentor
	if err := r.db.WithContext(ctx).Where("LOWER(email) = LOWER(?)", email).First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *mentorRepo) List(ctx context.Context) ([]model.Mentor, error) {
	var list []model.Mentor
	err := r.db.WithContext(ctx).Order("last_name ASC, first_name ASC").Find(&list).Error
	return list, err
}

func (r *mentorRepo) Update(ctx context.Context, m *model.Mentor) error {
	return translate(r.db.WithContext(ctx).Save(m).Error)
}

func (r *mentorRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("mentor_id = ?", id).Delete(&model.Mentor{}).Error
}

func (r *mentorRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Mentor{}).Count(&n).Error
	return n, err
}
