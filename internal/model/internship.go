package model

import "time"

// InternshipState 实习生命周期状态
type InternshipState string

const (
	StateWaiting           InternshipState = "waiting"
	StatePublished         InternshipState = "published"
	StateAttributedStudent InternshipState = "attributed_student"
	StateAvailableCampaign InternshipState = "available_campaign"
	StateAttributedMentor  InternshipState = "attributed_mentor"
	StateRunning           InternshipState = "running"
	StateValidation        InternshipState = "validation"
	StateArchived          InternshipState = "archived"
)

// InternshipStates 按前进顺序排列的全部状态
var InternshipStates = []InternshipState{
	StateWaiting,
	StatePublished,
	StateAttributedStudent,
	StateAvailableCampaign,
	StateAttributedMentor,
	StateRunning,
	StateValidation,
	StateArchived,
}

// nextStates 每个状态唯一合法的下一状态；archived 为终态
var nextStates = map[InternshipState]InternshipState{
	StateWaiting:           StatePublished,
	StatePublished:         StateAttributedStudent,
	StateAttributedStudent: StateAvailableCampaign,
	StateAvailableCampaign: StateAttributedMentor,
	StateAttributedMentor:  StateRunning,
	StateRunning:           StateValidation,
	StateValidation:        StateArchived,
}

// NextState 返回 s 的下一状态；终态或未知状态返回 false
func NextState(s InternshipState) (InternshipState, bool) {
	next, ok := nextStates[s]
	return next, ok
}

// IsValid 是否为已知状态
func (s InternshipState) IsValid() bool {
	for _, st := range InternshipStates {
		if st == s {
			return true
		}
	}
	return false
}

// InternshipResult 实习结果
type InternshipResult string

const (
	ResultValidated    InternshipResult = "validated"
	ResultNonValidated InternshipResult = "non-validated"
	ResultUnknown      InternshipResult = "unknown"
	ResultCanceled     InternshipResult = "canceled"
)

// ParseResult 无法识别的取值一律视为 unknown
func ParseResult(v string) InternshipResult {
	switch r := InternshipResult(v); r {
	case ResultValidated, ResultNonValidated, ResultUnknown, ResultCanceled:
		return r
	}
	return ResultUnknown
}

// Internship 实习表 — 对应 internships
// state 及各关联外键只由状态机与批次发布流程写入
type Internship struct {
	InternshipID        string           `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"internship_id"`
	Subject             string           `gorm:"type:varchar(255);not null"                     json:"subject"`
	Description         string           `gorm:"type:text"                                      json:"description,omitempty"`
	Country             string           `gorm:"type:varchar(100);not null;default:'France'"    json:"country"`
	City                string           `gorm:"type:varchar(100)"                              json:"city,omitempty"`
	PostalCode          string           `gorm:"type:varchar(20)"                               json:"postal_code,omitempty"`
	Address             string           `gorm:"type:varchar(255)"                              json:"address,omitempty"`
	Additional          string           `gorm:"type:varchar(255)"                              json:"additional,omitempty"`
	IsInternational     bool             `gorm:"not null;default:false"                         json:"is_international"`
	State               InternshipState  `gorm:"type:varchar(30);not null;default:'waiting'"    json:"state"`
	Result              InternshipResult `gorm:"type:varchar(20);not null;default:'unknown'"    json:"result"`
	PublishAt           *time.Time       `gorm:"type:timestamptz"                               json:"publish_at,omitempty"`
	StartAt             *time.Time       `gorm:"type:timestamptz"                               json:"start_at,omitempty"`
	EndAt               *time.Time       `gorm:"type:timestamptz"                               json:"end_at,omitempty"`
	BusinessID          *string          `gorm:"type:uuid"                                      json:"business_id,omitempty"`
	InternshipTypeID    *string          `gorm:"type:uuid"                                      json:"internship_type_id,omitempty"`
	AvailableCampaignID *string          `gorm:"type:uuid"                                      json:"available_campaign_id,omitempty"`
	ValidatedCampaignID *string          `gorm:"type:uuid"                                      json:"validated_campaign_id,omitempty"`
	MentorID            *string          `gorm:"type:uuid"                                      json:"mentor_id,omitempty"`
	StudentID           *string          `gorm:"type:uuid"                                      json:"student_id,omitempty"`
	BaseModel

	// 关联（仅查询时 Preload）
	Business              *Business              `gorm:"foreignKey:BusinessID;references:BusinessID"                 json:"business,omitempty"`
	InternshipType        *InternshipType        `gorm:"foreignKey:InternshipTypeID;references:InternshipTypeID"     json:"internship_type,omitempty"`
	AvailableCampaign     *Campaign              `gorm:"foreignKey:AvailableCampaignID;references:CampaignID"        json:"available_campaign,omitempty"`
	ValidatedCampaign     *Campaign              `gorm:"foreignKey:ValidatedCampaignID;references:CampaignID"        json:"validated_campaign,omitempty"`
	Mentor                *Mentor                `gorm:"foreignKey:MentorID;references:MentorID"                     json:"mentor,omitempty"`
	Student               *Student               `gorm:"foreignKey:StudentID;references:StudentID"                   json:"student,omitempty"`
	Files                 []File                 `gorm:"foreignKey:InternshipID;references:InternshipID"             json:"files,omitempty"`
	MentoringPropositions []MentoringProposition `gorm:"foreignKey:InternshipID;references:InternshipID"             json:"mentoring_propositions,omitempty"`
}

// TableName 指定表名
func (Internship) TableName() string { return "internships" }
