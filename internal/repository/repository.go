package repository

import "gorm.io/gorm"

// Repository 所有 Repository 的聚合入口
type Repository struct {
	School       SchoolRepository
	Class        ClassRepository
	ClassSubject ClassSubjectRepository
	Teacher      TeacherRepository
	Subject      SubjectRepository
	Lesson       LessonRepository
	Slot         SlotRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		School:       NewSchoolRepo(db),
		Class:        NewClassRepo(db),
		ClassSubject: NewClassSubjectRepo(db),
		Teacher:      NewTeacherRepo(db),
		Subject:      NewSubjectRepo(db),
		Lesson:       NewLessonRepo(db),
		Slot:         NewSlotRepo(db),
	}
}

// nullableUUID 操作人标识为空时写入 NULL（uuid 列不接受空串）
func nullableUUID(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
