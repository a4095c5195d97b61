package dto

// ── 排课生成模块 DTO ──

// GenerateTimetableRequest 批量排课请求
// 针对每个班级在 days_of_week × 每日时间窗内按 session_duration 切分候选节次
type GenerateTimetableRequest struct {
	ClassIDs        []string `json:"class_ids"        binding:"required,min=1,dive,uuid"`
	TeacherIDs      []string `json:"teacher_ids"      binding:"omitempty,dive,uuid"` // 可选：仅使用这些教师的科目配置
	StartTime       string   `json:"start_time"       binding:"required"`            // 每日窗口起点 "08:00"
	EndTime         string   `json:"end_time"         binding:"required"`            // 每日窗口终点 "16:00"
	SessionDuration int      `json:"session_duration" binding:"required"`            // 单节时长（分钟，30-120）
	DaysOfWeek      []int    `json:"days_of_week"     binding:"required,min=1,dive,min=1,max=7"`
}

// GenerationResult 单个班级的排课结果
// 一个班级失败不影响其他班级；冲突被跳过的槽位只体现在 created 与 requested 的差值里
type GenerationResult struct {
	ClassID      string   `json:"class_id"`
	ClassName    string   `json:"class_name,omitempty"`
	Success      bool     `json:"success"`
	CreatedSlots int      `json:"created_slots"`
	Requested    int      `json:"requested"` // 候选槽位总数（days × 每日节次数）
	Error        string   `json:"error,omitempty"`
	Explanation  string   `json:"explanation,omitempty"` // AI 建议服务的说明文字
	Suggestions  []string `json:"suggestions,omitempty"` // AI 建议服务的附加建议
}

// GenerateTimetableResponse 批量排课响应
type GenerateTimetableResponse struct {
	Results []GenerationResult `json:"results"`
}
