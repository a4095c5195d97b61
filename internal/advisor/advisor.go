package advisor

import "context"

// ClassContext 请求建议时提供的班级上下文
type ClassContext struct {
	SchoolID   string        `json:"school_id"`
	ClassID    string        `json:"class_id"`
	ClassName  string        `json:"class_name"`
	GradeLevel int           `json:"grade_level"`
	Subjects   []SubjectInfo `json:"subjects"`
	SlotCount  int           `json:"slot_count"`   // 本次生成的候选槽位总数
	DaysOfWeek []int         `json:"days_of_week"` // 1=周一 … 7=周日
}

// SubjectInfo 班级科目上下文
type SubjectInfo struct {
	SubjectID   string `json:"subject_id"`
	SubjectName string `json:"subject_name"`
	TeacherName string `json:"teacher_name,omitempty"`
	WeeklyHours int    `json:"weekly_hours"`
}

// Suggestion AI 返回的科目分配建议
// SubjectOrder 是 subject_id 的排列建议；Explanation/Suggestions 为参考文字
type Suggestion struct {
	SubjectOrder []string `json:"subject_order"`
	Explanation  string   `json:"explanation"`
	Suggestions  []string `json:"suggestions"`
}

// Advisor 排课建议服务接口
// 实现方仅提供参考意见；冲突判定始终由本地排课引擎负责。
// 调用失败（含超时）一律由调用方降级为本地轮转分配，不重试、不向上传播
type Advisor interface {
	SuggestDistribution(ctx context.Context, class ClassContext) (*Suggestion, error)
}
