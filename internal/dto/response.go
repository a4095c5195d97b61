package dto

// ── 通用简要信息 ──

// ClassBrief 班级简要信息
type ClassBrief struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SubjectBrief 科目简要信息
type SubjectBrief struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Code string `json:"code,omitempty"`
}

// TeacherBrief 教师简要信息
type TeacherBrief struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// LessonBrief 课程单元简要信息
type LessonBrief struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// ── 分页请求 ──

// PaginationRequest 通用分页参数
type PaginationRequest struct {
	Page     int `form:"page"      binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// GetPage 获取页码（含默认值）
func (p *PaginationRequest) GetPage() int {
	if p.Page <= 0 {
		return 1
	}
	return p.Page
}

// GetPageSize 获取每页数量（含默认值）
func (p *PaginationRequest) GetPageSize() int {
	if p.PageSize <= 0 {
		return 20
	}
	return p.PageSize
}

// GetOffset 计算偏移量
func (p *PaginationRequest) GetOffset() int {
	return (p.GetPage() - 1) * p.GetPageSize()
}
