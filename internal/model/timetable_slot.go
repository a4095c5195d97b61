package model

// TimetableSlot 课表槽位表 — 对应 timetable_slots
// 一个槽位 = 某班级在某天某时间段的一次排课占用。
// 槽位只增删、不原地更新：调整课表即删除后重建
type TimetableSlot struct {
	SlotID     string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"slot_id"`
	SchoolID   string  `gorm:"type:uuid;not null"                             json:"school_id"`
	ClassID    string  `gorm:"type:uuid;not null"                             json:"class_id"`
	SubjectID  string  `gorm:"type:uuid;not null"                             json:"subject_id"`
	TeacherID  *string `gorm:"type:uuid"                                      json:"teacher_id,omitempty"`  // NULL 表示自习
	LessonID   *string `gorm:"type:uuid"                                      json:"lesson_id,omitempty"`   // 可选挂接的课程单元
	RoomNumber *string `gorm:"type:varchar(50)"                               json:"room_number,omitempty"` // 教室编号，自由文本
	DayOfWeek  int     `gorm:"type:smallint;not null"                         json:"day_of_week"` // 1=周一 … 7=周日
	StartTime  string  `gorm:"type:time;not null"                             json:"start_time"`  // "08:00"
	EndTime    string  `gorm:"type:time;not null"                             json:"end_time"`    // "08:50"
	Source     string  `gorm:"type:varchar(20);not null;default:'manual'"     json:"source"`      // manual | generated
	BaseModel

	// 关联
	Class   *Class   `gorm:"foreignKey:ClassID;references:ClassID"     json:"class,omitempty"`
	Subject *Subject `gorm:"foreignKey:SubjectID;references:SubjectID" json:"subject,omitempty"`
	Teacher *Teacher `gorm:"foreignKey:TeacherID;references:TeacherID" json:"teacher,omitempty"`
	Lesson  *Lesson  `gorm:"foreignKey:LessonID;references:LessonID"   json:"lesson,omitempty"`
}

// TableName 指定表名
func (TimetableSlot) TableName() string { return "timetable_slots" }

// 槽位来源
const (
	SlotSourceManual    = "manual"
	SlotSourceGenerated = "generated"
)
