package model

// Lesson 课程单元表（内容单元）— 对应 lessons
type Lesson struct {
	LessonID  string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"lesson_id"`
	SchoolID  string `gorm:"type:uuid;not null"                             json:"school_id"`
	SubjectID string `gorm:"type:uuid;not null"                             json:"subject_id"`
	Title     string `gorm:"type:varchar(200);not null"                     json:"title"`
	Sequence  int    `gorm:"type:smallint;not null;default:1"               json:"sequence"`
	SoftDeleteModel

	// 关联
	Subject *Subject `gorm:"foreignKey:SubjectID;references:SubjectID" json:"subject,omitempty"`
}

// TableName 指定表名
func (Lesson) TableName() string { return "lessons" }
