package handler

import "smart-campus/backend/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	School    *SchoolHandler
	Class     *ClassHandler
	Teacher   *TeacherHandler
	Subject   *SubjectHandler
	Lesson    *LessonHandler
	Timetable *TimetableHandler
	Export    *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		School:    NewSchoolHandler(svc.School),
		Class:     NewClassHandler(svc.Class),
		Teacher:   NewTeacherHandler(svc.Teacher),
		Subject:   NewSubjectHandler(svc.Subject),
		Lesson:    NewLessonHandler(svc.Lesson),
		Timetable: NewTimetableHandler(svc.Timetable, svc.Generation),
		Export:    NewExportHandler(svc.Export),
	}
}
