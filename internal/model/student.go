package model

// Student 学生表 — 对应 students
type Student struct {
	StudentID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"student_id"`
	FirstName string `gorm:"type:varchar(100);not null"                     json:"first_name"`
	LastName  string `gorm:"type:varchar(100);not null"                     json:"last_name"`
	Email     string `gorm:"type:varchar(255);not null;uniqueIndex"         json:"email"`
	Semester  string `gorm:"type:varchar(10);not null"                      json:"semester"` // S1 … S10
	BaseModel
}

// TableName 指定表名
func (Student) TableName() string { return "students" }
