package dto

// ── 班级模块 DTO ──

// CreateClassRequest 创建班级请求
type CreateClassRequest struct {
	Name       string  `json:"name"        binding:"required,min=1,max=100"`
	GradeLevel int     `json:"grade_level" binding:"required,min=1,max=12"`
	Homeroom   *string `json:"homeroom"    binding:"omitempty,max=50"`
}

// UpdateClassRequest 更新班级请求
type UpdateClassRequest struct {
	Name       *string `json:"name"        binding:"omitempty,min=1,max=100"`
	GradeLevel *int    `json:"grade_level" binding:"omitempty,min=1,max=12"`
	Homeroom   *string `json:"homeroom"    binding:"omitempty,max=50"`
	IsActive   *bool   `json:"is_active"`
}

// SetClassSubjectsRequest 设置班级科目配置请求（整体替换）
type SetClassSubjectsRequest struct {
	Subjects []ClassSubjectItem `json:"subjects" binding:"required,dive"`
}

// ClassSubjectItem 班级科目配置项
type ClassSubjectItem struct {
	SubjectID   string  `json:"subject_id"   binding:"required,uuid"`
	TeacherID   *string `json:"teacher_id"   binding:"omitempty,uuid"`
	WeeklyHours int     `json:"weekly_hours" binding:"omitempty,min=1,max=20"`
}

// ClassListRequest 班级列表查询参数
type ClassListRequest struct {
	GradeLevel *int `form:"grade_level" binding:"omitempty,min=1,max=12"`
	PaginationRequest
}

// ClassResponse 班级信息响应
type ClassResponse struct {
	ID         string                 `json:"id"`
	Name       string                 `json:"name"`
	GradeLevel int                    `json:"grade_level"`
	Homeroom   *string                `json:"homeroom,omitempty"`
	IsActive   bool                   `json:"is_active"`
	Subjects   []ClassSubjectResponse `json:"subjects,omitempty"`
	CreatedAt  string                 `json:"created_at"`
	UpdatedAt  string                 `json:"updated_at"`
}

// ClassSubjectResponse 班级科目配置响应
type ClassSubjectResponse struct {
	ID          string        `json:"id"`
	Subject     *SubjectBrief `json:"subject,omitempty"`
	Teacher     *TeacherBrief `json:"teacher,omitempty"`
	WeeklyHours int           `json:"weekly_hours"`
}
