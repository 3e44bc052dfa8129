package repository

import (
	"context"

	"gorm.io/gorm"

	"enib-internships/backend/internal/model"
)

// PropositionRepository 指导意向数据访问接口
type PropositionRepository interface {
	Create(ctx context.Context, p *model.MentoringProposition) error
	GetByID(ctx context.Context, id string) (*model.MentoringProposition, error)
	ListByCampaign(ctx context.Context, campaignID string) ([]model.MentoringProposition, error)
	CountByMentor(ctx context.Context, campaignID, mentorID string) (int64, error)
	Delete(ctx context.Context, id string) error
	DeleteByCampaign(ctx context.Context, campaignID string) (int64, error)
	Count(ctx context.Context) (int64, error)
}

type propositionRepo struct {
	db *gorm.DB
}

// NewPropositionRepo 创建 PropositionRepository 实例
func NewPropositionRepo(db *gorm.DB) PropositionRepository {
	return &propositionRepo{db: db}
}

func (r *propositionRepo) Create(ctx context.Context, p *model.MentoringProposition) error {
	return r.db.WithContext(ctx).Omit("Mentor").Create(p).Error
}

func (r *propositionRepo) GetByID(ctx context.Context, id string) (*model.MentoringProposition, error) {
	var p model.MentoringProposition
	if err := r.db.WithContext(ctx).Where("proposition_id = ?", id).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *propositionRepo) ListByCampaign(ctx context.Context, campaignID string) ([]model.MentoringProposition, error) {
	var list []model.MentoringProposition
	err := r.db.WithContext(ctx).
		Preload("Mentor").
		Where("campaign_id = ?", campaignID).
		Order("created_at ASC").
		Find(&list).Error
	return list, err
}

func (r *propositionRepo) CountByMentor(ctx context.Context, campaignID, mentorID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.MentoringProposition{}).
		Where("campaign_id = ? AND mentor_id = ?", campaignID, mentorID).
		Count(&n).Error
	return n, err
}

func (r *propositionRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("proposition_id = ?", id).Delete(&model.MentoringProposition{}).Error
}

func (r *propositionRepo) DeleteByCampaign(ctx context.Context, campaignID string) (int64, error) {
	res := r.db.WithContext(ctx).Where("campaign_id = ?", campaignID).Delete(&model.MentoringProposition{})
	return res.RowsAffected, res.Error
}

func (r *propositionRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.MentoringProposition{}).Count(&n).Error
	return n, err
}
