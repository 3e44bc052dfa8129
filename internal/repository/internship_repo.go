package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"enib-internships/backend/internal/model"
	pkgerrors "enib-internships/backend/pkg/errors"
)

// InternshipFilter 实习列表过滤条件
type InternshipFilter struct {
	State            model.InternshipState
	InternshipTypeID string
	CampaignID       string // 匹配 available 或 validated 批次
	MentorID         string
	StudentID        string
	Page             int
	PageSize         int
}

// InternshipRepository 实习数据访问接口
type InternshipRepository interface {
	Create(ctx context.Context, i *model.Internship) error
	GetByID(ctx context.Context, id string) (*model.Internship, error)
	List(ctx context.Context, filter InternshipFilter) ([]model.Internship, int64, error)
	UpdateDetails(ctx context.Context, i *model.Internship) error
	Delete(ctx context.Context, id string) error

	// Transition 以 state 为条件原子写入新状态与关联字段；未命中返回 ErrStateConflict
	Transition(ctx context.Context, id string, from, to model.InternshipState, fields map[string]interface{}) error

	ListEligibleForCampaign(ctx context.Context, internshipTypeID string) ([]model.Internship, error)
	LinkAvailableCampaign(ctx context.Context, internshipID, campaignID string) error
	ListByCampaign(ctx context.Context, campaignID string) ([]model.Internship, error)
	CountByState(ctx context.Context) (map[model.InternshipState]int64, error)
}

type internshipRepo struct {
	db *gorm.DB
}

// NewInternshipRepo 创建 InternshipRepository 实例
func NewInternshipRepo(db *gorm.DB) InternshipRepository {
	return &internshipRepo{db: db}
}

// withRelations 预加载全部关联
func withRelations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Business").
		Preload("InternshipType").
		Preload("AvailableCampaign").
		Preload("ValidatedCampaign").
		Preload("Mentor").
		Preload("Student").
		Preload("Files").
		Preload("MentoringPropositions")
}

func (r *internshipRepo) Create(ctx context.Context, i *model.Internship) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(i).Error
}

func (r *internshipRepo) GetByID(ctx context.Context, id string) (*model.Internship, error) {
	var i model.Internship
	err := withRelations(r.db.WithContext(ctx)).
		Where("internship_id = ?", id).
		First(&i).Error
	if err != nil {
		return nil, err
	}
	return &i, nil
}

func (r *internshipRepo) List(ctx context.Context, filter InternshipFilter) ([]model.Internship, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Internship{})
	if filter.State != "" {
		query = query.Where("state = ?", filter.State)
	}
	if filter.InternshipTypeID != "" {
		query = query.Where("internship_type_id = ?", filter.InternshipTypeID)
	}
	if filter.CampaignID != "" {
		query = query.Where("available_campaign_id = ? OR validated_campaign_id = ?", filter.CampaignID, filter.CampaignID)
	}
	if filter.MentorID != "" {
		query = query.Where("mentor_id = ?", filter.MentorID)
	}
	if filter.StudentID != "" {
		query = query.Where("student_id = ?", filter.StudentID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page, pageSize := filter.Page, filter.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	var list []model.Internship
	err := query.
		Preload("Business").
		Preload("InternshipType").
		Preload("Student").
		Preload("Mentor").
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&list).Error
	return list, total, err
}

// UpdateDetails 只写入描述性字段；状态与关联列由 Transition 维护
func (r *internshipRepo) UpdateDetails(ctx context.Context, i *model.Internship) error {
	return r.db.WithContext(ctx).
		Model(&model.Internship{}).
		Where("internship_id = ?", i.InternshipID).
		Updates(map[string]interface{}{
			"subject":            i.Subject,
			"description":        i.Description,
			"country":            i.Country,
			"city":               i.City,
			"postal_code":        i.PostalCode,
			"address":            i.Address,
			"additional":         i.Additional,
			"is_international":   i.IsInternational,
			"business_id":        i.BusinessID,
			"internship_type_id": i.InternshipTypeID,
		}).Error
}

func (r *internshipRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("internship_id = ?", id).Delete(&model.Internship{}).Error
}

func (r *internshipRepo) Transition(ctx context.Context, id string, from, to model.InternshipState, fields map[string]interface{}) error {
	updates := make(map[string]interface{}, len(fields)+2)
	for k, v := range fields {
		updates[k] = v
	}
	updates["state"] = to
	updates["updated_at"] = gorm.Expr("NOW()")

	res := r.db.WithContext(ctx).
		Model(&model.Internship{}).
		Where("internship_id = ? AND state = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return pkgerrors.ErrStateConflict
	}
	return nil
}

// ListEligibleForCampaign 尚未关联任何批次且类别匹配的实习
func (r *internshipRepo) ListEligibleForCampaign(ctx context.Context, internshipTypeID string) ([]model.Internship, error) {
	var list []model.Internship
	err := r.db.WithContext(ctx).
		Where("available_campaign_id IS NULL AND validated_campaign_id IS NULL").
		Where("internship_type_id = ?", internshipTypeID).
		Order("created_at ASC").
		Find(&list).Error
	return list, err
}

// LinkAvailableCampaign 条件写入 available_campaign_id；实习已被其他批次占用时返回 ErrStateConflict
func (r *internshipRepo) LinkAvailableCampaign(ctx context.Context, internshipID, campaignID string) error {
	res := r.db.WithContext(ctx).
		Model(&model.Internship{}).
		Where("internship_id = ?", internshipID).
		Where("available_campaign_id IS NULL AND validated_campaign_id IS NULL").
		Updates(map[string]interface{}{
			"available_campaign_id": campaignID,
			"updated_at":            gorm.Expr("NOW()"),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return pkgerrors.ErrStateConflict
	}
	return nil
}

func (r *internshipRepo) ListByCampaign(ctx context.Context, campaignID string) ([]model.Internship, error) {
	var list []model.Internship
	err := r.db.WithContext(ctx).
		Preload("Business").
		Preload("Student").
		Preload("Mentor").
		Where("available_campaign_id = ? OR validated_campaign_id = ?", campaignID, campaignID).
		Order("subject ASC").
		Find(&list).Error
	return list, err
}

func (r *internshipRepo) CountByState(ctx context.Context) (map[model.InternshipState]int64, error) {
	var rows []struct {
		State model.InternshipState
		N     int64
	}
	err := r.db.WithContext(ctx).
		Model(&model.Internship{}).
		Select("state, COUNT(*) AS n").
		Group("state").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[model.InternshipState]int64, len(rows))
	for _, row := range rows {
		counts[row.State] = row.N
	}
	return counts, nil
}
