package model

// MentoringProposition 导师指导意向表 — 对应 mentoring_propositions
type MentoringProposition struct {
	PropositionID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"proposition_id"`
	Comment       string `gorm:"type:text"                                      json:"comment,omitempty"`
	CampaignID    string `gorm:"type:uuid;not null"                             json:"campaign_id"`
	MentorID      string `gorm:"type:uuid;not null"                             json:"mentor_id"`
	InternshipID  string `gorm:"type:uuid;not null"                             json:"internship_id"`
	BaseModel

	Mentor *Mentor `gorm:"foreignKey:MentorID;references:MentorID" json:"mentor,omitempty"`
}

// TableName 指定表名
func (MentoringProposition) TableName() string { return "mentoring_propositions" }
