package dto

import "time"

// ── 批次模块 DTO ──

// CampaignRequest 创建/更新批次请求
type CampaignRequest struct {
	Name             string     `json:"name"               binding:"required,min=1,max=200"`
	Description      string     `json:"description"`
	Semester         string     `json:"semester"           binding:"required,oneof=S1 S2 S3 S4 S5 S6 S7 S8 S9 S10"`
	MaxProposition   int        `json:"max_proposition"    binding:"min=0"`
	IsPublished      bool       `json:"is_published"`
	StartAt          *time.Time `json:"start_at"`
	EndAt            *time.Time `json:"end_at"`
	InternshipTypeID *string    `json:"internship_type_id" binding:"omitempty,uuid"`
}

// CampaignResponse 批次响应
type CampaignResponse struct {
	ID             string                  `json:"id"`
	Name           string                  `json:"name"`
	Description    string                  `json:"description,omitempty"`
	Semester       string                  `json:"semester"`
	MaxProposition int                     `json:"max_proposition"`
	IsPublished    bool                    `json:"is_published"`
	StartAt        *string                 `json:"start_at,omitempty"`
	EndAt          *string                 `json:"end_at,omitempty"`
	InternshipType *InternshipTypeResponse `json:"internship_type,omitempty"`
	LaunchedAt     *string                 `json:"launched_at,omitempty"`
	LaunchSummary  interface{}             `json:"launch_summary,omitempty"`
	CreatedAt      string                  `json:"created_at"`
}

// LaunchRequest 发布批次参数
type LaunchRequest struct {
	Session string `form:"session"` // 接收进度事件的 WebSocket 会话
}

// ── 指导意向 ──

// PropositionRequest 创建指导意向请求
type PropositionRequest struct {
	InternshipID string `json:"internship_id" binding:"required,uuid"`
	MentorID     string `json:"mentor_id"     binding:"omitempty,uuid"` // 管理员代为提交时指定
	Comment      string `json:"comment"       binding:"max=2000"`
}

// PropositionResponse 指导意向响应
type PropositionResponse struct {
	ID           string          `json:"id"`
	CampaignID   string          `json:"campaign_id"`
	InternshipID string          `json:"internship_id"`
	Comment      string          `json:"comment,omitempty"`
	Mentor       *MentorResponse `json:"mentor,omitempty"`
	MentorID     string          `json:"mentor_id"`
	CreatedAt    string          `json:"created_at"`
}
