package dto

// ── 课程单元模块 DTO ──

// CreateLessonRequest 创建课程单元请求
type CreateLessonRequest struct {
	SubjectID string `json:"subject_id" binding:"required,uuid"`
	Title     string `json:"title"      binding:"required,min=1,max=200"`
	Sequence  int    `json:"sequence"   binding:"omitempty,min=1"`
}

// UpdateLessonRequest 更新课程单元请求
type UpdateLessonRequest struct {
	Title    *string `json:"title"    binding:"omitempty,min=1,max=200"`
	Sequence *int    `json:"sequence" binding:"omitempty,min=1"`
}

// LessonListRequest 课程单元列表查询参数
type LessonListRequest struct {
	SubjectID string `form:"subject_id" binding:"omitempty,uuid"`
	PaginationRequest
}

// LessonResponse 课程单元信息响应
type LessonResponse struct {
	ID        string        `json:"id"`
	Subject   *SubjectBrief `json:"subject,omitempty"`
	Title     string        `json:"title"`
	Sequence  int           `json:"sequence"`
	CreatedAt string        `json:"created_at"`
	UpdatedAt string        `json:"updated_at"`
}
