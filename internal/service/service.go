package service

import (
	"go.uber.org/zap"

	"smart-campus/backend/config"
	"smart-campus/backend/internal/advisor"
	"smart-campus/backend/internal/repository"
	"smart-campus/backend/pkg/redis"
)

// Service 所有业务服务的聚合入口
type Service struct {
	School     SchoolService
	Class      ClassService
	Teacher    TeacherService
	Subject    SubjectService
	Lesson     LessonService
	Timetable  TimetableService
	Generation GenerationService
	Export     ExportService
}

// NewService 创建 Service 聚合
// adv 与 rdb 均可为 nil：建议服务未启用时排课走本地轮转，
// Redis 未配置时课表缓存关闭、排课锁退化为进程内锁
func NewService(cfg *config.Config, repo *repository.Repository, adv advisor.Advisor, rdb *redis.Client, logger *zap.Logger) *Service {
	locker := newTenantLocker(rdb)

	return &Service{
		School:     NewSchoolService(repo, logger),
		Class:      NewClassService(repo, logger),
		Teacher:    NewTeacherService(repo, logger),
		Subject:    NewSubjectService(repo, logger),
		Lesson:     NewLessonService(repo, logger),
		Timetable:  NewTimetableService(repo, locker, rdb, logger),
		Generation: NewGenerationService(repo, adv, locker, rdb, logger, cfg.Advisor.Timeout),
		Export:     NewExportService(repo, logger),
	}
}
