package repository

import (
	"context"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"enib-internships/backend/internal/model"
	pkgerrors "enib-internships/backend/pkg/errors"
)

// CampaignCounts 单个批次的统计计数（用于统计缓存全量加载）
type CampaignCounts struct {
	CampaignID   string
	Internships  int
	Available    int
	Attributed   int
	Mentors      int
	Students     int
	Propositions int
}

// CampaignRepository 批次数据访问接口
type CampaignRepository interface {
	Create(ctx context.Context, c *model.Campaign) error
	GetByID(ctx context.Context, id string) (*model.Campaign, error)
	List(ctx context.Context) ([]model.Campaign, error)
	Update(ctx context.Context, c *model.Campaign) error
	Delete(ctx context.Context, id string) error

	AddMentor(ctx context.Context, campaignID, mentorID string) (bool, error)
	RemoveMentor(ctx context.Context, campaignID, mentorID string) (bool, error)
	ListMentors(ctx context.Context, campaignID string) ([]model.Mentor, error)

	MarkLaunched(ctx context.Context, id string, at time.Time) error
	ClearLaunched(ctx context.Context, id string) error
	SaveLaunchSummary(ctx context.Context, id string, summary datatypes.JSON) error

	Counts(ctx context.Context) ([]CampaignCounts, error)
}

type campaignRepo struct {
	db *gorm.DB
}

// NewCampaignRepo 创建 CampaignRepository 实例
func NewCampaignRepo(db *gorm.DB) CampaignRepository {
	return &campaignRepo{db: db}
}

func (r *campaignRepo) Create(ctx context.Context, c *model.Campaign) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(c).Error
}

func (r *campaignRepo) GetByID(ctx context.Context, id string) (*model.Campaign, error) {
	var c model.Campaign
	err := r.db.WithContext(ctx).
		Preload("InternshipType").
		Where("campaign_id = ?", id).
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *campaignRepo) List(ctx context.Context) ([]model.Campaign, error) {
	var list []model.Campaign
	err := r.db.WithContext(ctx).
		Preload("InternshipType").
		Order("created_at DESC").
		Find(&list).Error
	return list, err
}

// Update 不写入发布状态列，它们只由发布流程维护
func (r *campaignRepo) Update(ctx context.Context, c *model.Campaign) error {
	return r.db.WithContext(ctx).
		Omit(clause.Associations, "launched_at", "launch_summary").
		Save(c).Error
}

// Delete 指导意向与导师关联由外键级联删除
func (r *campaignRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("campaign_id = ?", id).Delete(&model.Campaign{}).Error
}

// AddMentor 幂等关联导师；返回是否新建了关联
func (r *campaignRepo) AddMentor(ctx context.Context, campaignID, mentorID string) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.CampaignMentor{CampaignID: campaignID, MentorID: mentorID})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// RemoveMentor 返回是否确实删除了关联
func (r *campaignRepo) RemoveMentor(ctx context.Context, campaignID, mentorID string) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("campaign_id = ? AND mentor_id = ?", campaignID, mentorID).
		Delete(&model.CampaignMentor{})
	return res.RowsAffected > 0, res.Error
}

func (r *campaignRepo) ListMentors(ctx context.Context, campaignID string) ([]model.Mentor, error) {
	var list []model.Mentor
	err := r.db.WithContext(ctx).
		Joins("JOIN campaign_mentors cm ON cm.mentor_id = mentors.mentor_id").
		Where("cm.campaign_id = ?", campaignID).
		Order("mentors.last_name ASC").
		Find(&list).Error
	return list, err
}

// MarkLaunched 行锁内检查并设置 launched_at；已发布时返回 ErrStateConflict
func (r *campaignRepo) MarkLaunched(ctx context.Context, id string, at time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c model.Campaign
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("campaign_id = ?", id).
			First(&c).Error; err != nil {
			return err
		}
		if c.LaunchedAt != nil {
			return pkgerrors.ErrStateConflict
		}
		return tx.Model(&model.Campaign{}).
			Where("campaign_id = ?", id).
			Update("launched_at", at).Error
	})
}

func (r *campaignRepo) ClearLaunched(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Model(&model.Campaign{}).
		Where("campaign_id = ?", id).
		Update("launched_at", nil).Error
}

func (r *campaignRepo) SaveLaunchSummary(ctx context.Context, id string, summary datatypes.JSON) error {
	return r.db.WithContext(ctx).
		Model(&model.Campaign{}).
		Where("campaign_id = ?", id).
		Update("launch_summary", summary).Error
}

const campaignCountsSQL = `
SELECT c.campaign_id,
  (SELECT COUNT(*) FROM internships i
    WHERE i.available_campaign_id = c.campaign_id OR i.validated_campaign_id = c.campaign_id) AS internships,
  (SELECT COUNT(*) FROM internships i WHERE i.available_campaign_id = c.campaign_id) AS available,
  (SELECT COUNT(*) FROM internships i WHERE i.validated_campaign_id = c.campaign_id) AS attributed,
  (SELECT COUNT(*) FROM campaign_mentors cm WHERE cm.campaign_id = c.campaign_id) AS mentors,
  (SELECT COUNT(*) FROM internships i
    WHERE (i.available_campaign_id = c.campaign_id OR i.validated_campaign_id = c.campaign_id)
      AND i.student_id IS NOT NULL) AS students,
  (SELECT COUNT(*) FROM mentoring_propositions p WHERE p.campaign_id = c.campaign_id) AS propositions
FROM campaigns c`

func (r *campaignRepo) Counts(ctx context.Context) ([]CampaignCounts, error) {
	var rows []CampaignCounts
	err := r.db.WithContext(ctx).Raw(campaignCountsSQL).Scan(&rows).Error
	return rows, err
}
