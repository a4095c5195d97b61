package dto

// ── 课表模块 DTO ──

// AddSlotRequest 手动添加课表槽位请求
type AddSlotRequest struct {
	ClassID    string  `json:"class_id"    binding:"required,uuid"`
	SubjectID  string  `json:"subject_id"  binding:"required,uuid"`
	TeacherID  *string `json:"teacher_id"  binding:"omitempty,uuid"`
	LessonID   *string `json:"lesson_id"   binding:"omitempty,uuid"`
	RoomNumber *string `json:"room_number" binding:"omitempty,max=50"`
	DayOfWeek  int     `json:"day_of_week" binding:"required,min=1,max=7"`
	StartTime  string  `json:"start_time"  binding:"required"` // "08:00"
	EndTime    string  `json:"end_time"    binding:"required"` // "08:50"
}

// TimetableListRequest 课表查询参数
type TimetableListRequest struct {
	ClassID   string `form:"class_id"    binding:"omitempty,uuid"`
	TeacherID string `form:"teacher_id"  binding:"omitempty,uuid"`
	DayOfWeek *int   `form:"day_of_week" binding:"omitempty,min=1,max=7"`
}

// SlotResponse 课表槽位响应
type SlotResponse struct {
	ID         string        `json:"id"`
	Class      *ClassBrief   `json:"class,omitempty"`
	Subject    *SubjectBrief `json:"subject,omitempty"`
	Teacher    *TeacherBrief `json:"teacher,omitempty"`
	Lesson     *LessonBrief  `json:"lesson,omitempty"`
	RoomNumber *string       `json:"room_number,omitempty"`
	DayOfWeek  int           `json:"day_of_week"`
	StartTime  string        `json:"start_time"`
	EndTime    string        `json:"end_time"`
	Source     string        `json:"source"`
	CreatedAt  string        `json:"created_at"`
}

// TimetableDayResponse 单日课表（按开始时间排序）
type TimetableDayResponse struct {
	DayOfWeek int            `json:"day_of_week"`
	Slots     []SlotResponse `json:"slots"`
}

// TimetableResponse 周课表响应（按天分组的只读投影）
type TimetableResponse struct {
	Days []TimetableDayResponse `json:"days"`
}

// SlotConflictResponse 冲突详情响应
// Reason: class_overlap | teacher_overlap | room_overlap
type SlotConflictResponse struct {
	Reason          string        `json:"reason"`
	ConflictingSlot *SlotResponse `json:"conflicting_slot,omitempty"`
}
