package dto

// ── 教师模块 DTO ──

// CreateTeacherRequest 创建教师请求
type CreateTeacherRequest struct {
	Name  string `json:"name"  binding:"required,min=1,max=100"`
	Email string `json:"email" binding:"omitempty,email"`
}

// UpdateTeacherRequest 更新教师请求
type UpdateTeacherRequest struct {
	Name     *string `json:"name"     binding:"omitempty,min=1,max=100"`
	Email    *string `json:"email"    binding:"omitempty,email"`
	IsActive *bool   `json:"is_active"`
}

// TeacherListRequest 教师列表查询参数
type TeacherListRequest struct {
	PaginationRequest
}

// TeacherResponse 教师信息响应
type TeacherResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email,omitempty"`
	IsActive  bool   `json:"is_active"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}
