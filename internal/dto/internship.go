package dto

// ── 实习模块 DTO ──

// InternshipRequest 创建/更新实习请求（状态与关联不可直接修改）
type InternshipRequest struct {
	Subject          string  `json:"subject"            binding:"required,min=1,max=255"`
	Description      string  `json:"description"`
	Country          string  `json:"country"            binding:"omitempty,max=100"`
	City             string  `json:"city"               binding:"omitempty,max=100"`
	PostalCode       string  `json:"postal_code"        binding:"omitempty,max=20"`
	Address          string  `json:"address"            binding:"omitempty,max=255"`
	Additional       string  `json:"additional"         binding:"omitempty,max=255"`
	IsInternational  bool    `json:"is_international"`
	BusinessID       *string `json:"business_id"        binding:"omitempty,uuid"`
	InternshipTypeID *string `json:"internship_type_id" binding:"omitempty,uuid"`
}

// InternshipListRequest 实习列表查询参数
type InternshipListRequest struct {
	PaginationRequest
	State            string `form:"state"`
	InternshipTypeID string `form:"internship_type_id"`
	CampaignID       string `form:"campaign_id"`
	MentorID         string `form:"mentor_id"`
	StudentID        string `form:"student_id"`
}

// TransitionRequest 状态流转参数，按目标状态取用对应字段
type TransitionRequest struct {
	StudentID  string `json:"student_id"`
	CampaignID string `json:"campaign_id"`
	MentorID   string `json:"mentor_id"`
	EndAt      *int64 `json:"end_at"` // Unix 毫秒
	Result     string `json:"result"`
}

// ForbiddenTransitionData 非法流转时返回给调用方的状态信息
type ForbiddenTransitionData struct {
	Current string `json:"current"`
	Target  string `json:"target"`
	Next    string `json:"next,omitempty"`
	Missing string `json:"missing,omitempty"`
}

// CampaignRef 批次简要信息
type CampaignRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// InternshipResponse 实习响应（含全部关联）
type InternshipResponse struct {
	ID                string                  `json:"id"`
	Subject           string                  `json:"subject"`
	Description       string                  `json:"description,omitempty"`
	Country           string                  `json:"country"`
	City              string                  `json:"city,omitempty"`
	PostalCode        string                  `json:"postal_code,omitempty"`
	Address           string                  `json:"address,omitempty"`
	Additional        string                  `json:"additional,omitempty"`
	IsInternational   bool                    `json:"is_international"`
	State             string                  `json:"state"`
	Result            string                  `json:"result"`
	PublishAt         *string                 `json:"publish_at,omitempty"`
	StartAt           *string                 `json:"start_at,omitempty"`
	EndAt             *string                 `json:"end_at,omitempty"`
	Business          *BusinessResponse       `json:"business,omitempty"`
	InternshipType    *InternshipTypeResponse `json:"internship_type,omitempty"`
	AvailableCampaign *CampaignRef            `json:"available_campaign,omitempty"`
	ValidatedCampaign *CampaignRef            `json:"validated_campaign,omitempty"`
	Mentor            *MentorResponse         `json:"mentor,omitempty"`
	Student           *StudentResponse        `json:"student,omitempty"`
	Files             []FileResponse          `json:"files,omitempty"`
	PropositionCount  int                     `json:"proposition_count"`
	CreatedAt         string                  `json:"created_at"`
	UpdatedAt         string                  `json:"updated_at"`
}

// ── 附件 ──

// FileRequest 登记附件元数据（文件本体由上传网关保存）
type FileRequest struct {
	Name string `json:"name" binding:"required,max=255"`
	Type string `json:"type" binding:"required,max=100"`
	Path string `json:"path" binding:"required,max=500"`
	Size int64  `json:"size" binding:"min=0"`
}

// FileResponse 附件响应
type FileResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Type      string `json:"type"`
	Size      int64  `json:"size"`
	CreatedAt string `json:"created_at"`
}
