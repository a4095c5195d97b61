package model

// Subject 科目表 — 对应 subjects
type Subject struct {
	SubjectID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"subject_id"`
	SchoolID  string `gorm:"type:uuid;not null"                             json:"school_id"`
	Name      string `gorm:"type:varchar(100);not null"                     json:"name"`
	Code      string `gorm:"type:varchar(20)"                               json:"code,omitempty"`
	VersionedModel
}

// TableName 指定表名
func (Subject) TableName() string { return "subjects" }

// ClassSubject 班级科目配置表 — 对应 class_subjects
// 记录班级学习哪些科目、由哪位教师任教、每周课时数；
// 排序（created_at, class_subject_id）是轮转分配的确定性基础
type ClassSubject struct {
	ClassSubjectID string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"class_subject_id"`
	SchoolID       string  `gorm:"type:uuid;not null"                             json:"school_id"`
	ClassID        string  `gorm:"type:uuid;not null"                             json:"class_id"`
	SubjectID      string  `gorm:"type:uuid;not null"                             json:"subject_id"`
	TeacherID      *string `gorm:"type:uuid"                                      json:"teacher_id,omitempty"` // NULL 表示自习/未指派
	WeeklyHours    int     `gorm:"type:smallint;not null;default:2"               json:"weekly_hours"`
	BaseModel

	// 关联
	Subject *Subject `gorm:"foreignKey:SubjectID;references:SubjectID" json:"subject,omitempty"`
	Teacher *Teacher `gorm:"foreignKey:TeacherID;references:TeacherID" json:"teacher,omitempty"`
}

// TableName 指定表名
func (ClassSubject) TableName() string { return "class_subjects" }
