package model

// File 实习附件元数据表 — 对应 files
type File struct {
	FileID       string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"file_id"`
	InternshipID string `gorm:"type:uuid;not null"                             json:"internship_id"`
	Name         string `gorm:"type:varchar(255);not null"                     json:"name"`
	Type         string `gorm:"type:varchar(100);not null"                     json:"type"`
	Path         string `gorm:"type:varchar(500);not null"                     json:"-"`
	Size         int64  `gorm:"not null;default:0"                             json:"size"`
	BaseModel
}

// TableName 指定表名
func (File) TableName() string { return "files" }
