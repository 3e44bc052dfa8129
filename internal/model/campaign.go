package model

import (
	"time"

	"gorm.io/datatypes"
)

// Campaign 实习分配批次表 — 对应 campaigns
type Campaign struct {
	CampaignID       string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"campaign_id"`
	Name             string         `gorm:"type:varchar(200);not null"                     json:"name"`
	Description      string         `gorm:"type:text"                                      json:"description,omitempty"`
	Semester         string         `gorm:"type:varchar(10);not null"                      json:"semester"`
	MaxProposition   int            `gorm:"not null;default:0"                             json:"max_proposition"`
	IsPublished      bool           `gorm:"not null;default:false"                         json:"is_published"`
	StartAt          *time.Time     `gorm:"type:timestamptz"                               json:"start_at,omitempty"`
	EndAt            *time.Time     `gorm:"type:timestamptz"                               json:"end_at,omitempty"`
	InternshipTypeID *string        `gorm:"type:uuid"                                      json:"internship_type_id,omitempty"`
	LaunchedAt       *time.Time     `gorm:"type:timestamptz"                               json:"launched_at,omitempty"`
	LaunchSummary    datatypes.JSON `gorm:"type:jsonb"                                     json:"launch_summary,omitempty"`
	BaseModel

	// 关联（仅查询时 Preload）
	InternshipType *InternshipType `gorm:"foreignKey:InternshipTypeID;references:InternshipTypeID" json:"internship_type,omitempty"`
	Mentors        []Mentor        `gorm:"many2many:campaign_mentors;joinForeignKey:CampaignID;joinReferences:MentorID" json:"mentors,omitempty"`
}

// TableName 指定表名
func (Campaign) TableName() string { return "campaigns" }

// CampaignMentor 批次-导师关联表 — 对应 campaign_mentors
type CampaignMentor struct {
	CampaignID string    `gorm:"type:uuid;primaryKey"                    json:"campaign_id"`
	MentorID   string    `gorm:"type:uuid;primaryKey"                    json:"mentor_id"`
	CreatedAt  time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"      json:"created_at"`
}

// TableName 指定表名
func (CampaignMentor) TableName() string { return "campaign_mentors" }

// LaunchSummary 批次发布结果摘要（序列化后存入 launch_summary）
type LaunchSummary struct {
	Succeeded   bool      `json:"succeeded"`
	Internships int       `json:"internships"`
	Mentors     int       `json:"mentors"`
	Emails      int       `json:"emails"`
	Error       string    `json:"error,omitempty"`
	FinishedAt  time.Time `json:"finished_at"`
}
