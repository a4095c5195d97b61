package dto

// ── 学校模块 DTO ──

// CreateSchoolRequest 创建学校请求
type CreateSchoolRequest struct {
	Name     string `json:"name"     binding:"required,min=2,max=200"`
	Timezone string `json:"timezone" binding:"omitempty,max=50"`
}

// UpdateSchoolRequest 更新学校请求
type UpdateSchoolRequest struct {
	Name     *string `json:"name"      binding:"omitempty,min=2,max=200"`
	Timezone *string `json:"timezone"  binding:"omitempty,max=50"`
	IsActive *bool   `json:"is_active"`
}

// SchoolResponse 学校信息响应
type SchoolResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Timezone  string `json:"timezone"`
	IsActive  bool   `json:"is_active"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}
