package dto

// ── 认证模块 DTO ──

// CASLoginRequest CAS 回调参数
type CASLoginRequest struct {
	Ticket string `form:"ticket" binding:"required"`
}

// SessionUser 当前登录用户
type SessionUser struct {
	Email     string `json:"email"`
	Role      string `json:"role"` // admin | mentor | student
	ProfileID string `json:"profile_id,omitempty"`
	Name      string `json:"name,omitempty"`
}

// TokenResponse 登录成功响应
type TokenResponse struct {
	AccessToken string      `json:"access_token"`
	ExpiresIn   int         `json:"expires_in"` // 秒
	User        SessionUser `json:"user"`
}

// CASRedirectResponse 未携带 ticket 时返回 CAS 登录地址
type CASRedirectResponse struct {
	LoginURL string `json:"login_url"`
}
