package model

// Class 班级表 — 对应 classes
type Class struct {
	ClassID    string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"class_id"`
	SchoolID   string  `gorm:"type:uuid;not null"                             json:"school_id"`
	Name       string  `gorm:"type:varchar(100);not null"                     json:"name"`
	GradeLevel int     `gorm:"type:smallint;not null;default:1"               json:"grade_level"`
	Homeroom   *string `gorm:"type:varchar(50)"                               json:"homeroom,omitempty"` // 常驻教室编号，可空
	IsActive   bool    `gorm:"not null;default:true"                          json:"is_active"`
	VersionedModel

	// 关联
	Subjects []ClassSubject `gorm:"foreignKey:ClassID;references:ClassID" json:"subjects,omitempty"`
}

// TableName 指定表名
func (Class) TableName() string { return "classes" }
