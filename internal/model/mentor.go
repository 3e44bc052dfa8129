package model

import "strings"

// MentorRole 导师角色
type MentorRole string

const (
	MentorRoleDefault MentorRole = "default"
	MentorRoleAdmin   MentorRole = "admin"
)

// Mentor 导师表 — 对应 mentors
type Mentor struct {
	MentorID  string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"mentor_id"`
	FirstName string     `gorm:"type:varchar(100);not null"                     json:"first_name"`
	LastName  string     `gorm:"type:varchar(100);not null"                     json:"last_name"`
	Email     string     `gorm:"type:varchar(255);not null;uniqueIndex"         json:"email"`
	Role      MentorRole `gorm:"type:varchar(20);not null;default:'default'"    json:"role"`
	BaseModel
}

// TableName 指定表名
func (Mentor) TableName() string { return "mentors" }

// FullName 展示用姓名："Prénom NOM"
func (m *Mentor) FullName() string {
	return strings.TrimSpace(m.FirstName + " " + strings.ToUpper(m.LastName))
}
