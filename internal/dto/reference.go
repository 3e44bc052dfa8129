package dto

// ── 实习类别 ──

// InternshipTypeRequest 创建/更新实习类别请求
type InternshipTypeRequest struct {
	Label       string `json:"label"       binding:"required,min=1,max=100"`
	Description string `json:"description" binding:"max=2000"`
}

// InternshipTypeResponse 实习类别响应
type InternshipTypeResponse struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Description string `json:"description,omitempty"`
}

// ── 企业 ──

// BusinessRequest 创建/更新企业请求
type BusinessRequest struct {
	Name       string `json:"name"        binding:"required,min=1,max=200"`
	Country    string `json:"country"     binding:"omitempty,max=100"`
	City       string `json:"city"        binding:"omitempty,max=100"`
	PostalCode string `json:"postal_code" binding:"omitempty,max=20"`
	Address    string `json:"address"     binding:"omitempty,max=255"`
	Additional string `json:"additional"  binding:"omitempty,max=255"`
}

// BusinessResponse 企业响应
type BusinessResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Country    string `json:"country"`
	City       string `json:"city,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
	Address    string `json:"address,omitempty"`
	Additional string `json:"additional,omitempty"`
}

// ── 学生 ──

// StudentRequest 创建/更新学生请求
type StudentRequest struct {
	FirstName string `json:"first_name" binding:"required,max=100"`
	LastName  string `json:"last_name"  binding:"required,max=100"`
	Email     string `json:"email"      binding:"required,email"`
	Semester  string `json:"semester"   binding:"required,oneof=S1 S2 S3 S4 S5 S6 S7 S8 S9 S10"`
}

// StudentResponse 学生响应
type StudentResponse struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Semester  string `json:"semester"`
}

// ── 导师 ──

// MentorRequest 创建/更新导师请求
type MentorRequest struct {
	FirstName string `json:"first_name" binding:"required,max=100"`
	LastName  string `json:"last_name"  binding:"required,max=100"`
	Email     string `json:"email"      binding:"required,email"`
	Role      string `json:"role"       binding:"omitempty,oneof=default admin"`
}

// MentorResponse 导师响应
type MentorResponse struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	FullName  string `json:"full_name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
}
