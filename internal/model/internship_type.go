package model

// InternshipType 实习类别表 — 对应 internship_types
type InternshipType struct {
	InternshipTypeID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"internship_type_id"`
	Label            string `gorm:"type:varchar(100);not null;uniqueIndex"         json:"label"`
	Description      string `gorm:"type:text"                                      json:"description,omitempty"`
	BaseModel
}

// TableName 指定表名
func (InternshipType) TableName() string { return "internship_types" }
