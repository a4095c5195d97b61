package dto

// ── 科目模块 DTO ──

// CreateSubjectRequest 创建科目请求
type CreateSubjectRequest struct {
	Name string `json:"name" binding:"required,min=1,max=100"`
	Code string `json:"code" binding:"omitempty,max=20"`
}

// UpdateSubjectRequest 更新科目请求
type UpdateSubjectRequest struct {
	Name *string `json:"name" binding:"omitempty,min=1,max=100"`
	Code *string `json:"code" binding:"omitempty,max=20"`
}

// SubjectResponse 科目信息响应
type SubjectResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Code      string `json:"code,omitempty"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}
