package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"smart-campus/backend/internal/dto"
	"smart-campus/backend/internal/model"
	"smart-campus/backend/internal/repository"
)

// LessonService 课程单元业务接口
type LessonService interface {
	Create(ctx context.Context, schoolID string, req *dto.CreateLessonRequest, operatorID string) (*dto.LessonResponse, error)
	GetByID(ctx context.Context, schoolID, id string) (*dto.LessonResponse, error)
	List(ctx context.Context, schoolID string, req *dto.LessonListRequest) ([]dto.LessonResponse, int64, error)
	Update(ctx context.Context, schoolID, id string, req *dto.UpdateLessonRequest, operatorID string) (*dto.LessonResponse, error)
	Delete(ctx context.Context, schoolID, id string, operatorID string) error
}

type lessonService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewLessonService 创建课程单元服务
func NewLessonService(repo *repository.Repository, logger *zap.Logger) LessonService {
	return &lessonService{repo: repo, logger: logger}
}

func (s *lessonService) Create(ctx context.Context, schoolID string, req *dto.CreateLessonRequest, operatorID string) (*dto.LessonResponse, error) {
	if _, err := s.repo.Subject.GetByID(ctx, schoolID, req.SubjectID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubjectNotFound
		}
		return nil, fmt.Errorf("查询科目失败: %w", err)
	}

	lesson := &model.Lesson{
		SchoolID:  schoolID,
		SubjectID: req.SubjectID,
		Title:     req.Title,
		Sequence:  req.Sequence,
	}
	if lesson.Sequence <= 0 {
		lesson.Sequence = 1
	}
	if operatorID != "" {
		lesson.CreatedBy = &operatorID
	}

	if err := s.repo.Lesson.Create(ctx, lesson); err != nil {
		return nil, fmt.Errorf("创建课程单元失败: %w", err)
	}

	s.logger.Info("创建课程单元",
		zap.String("school_id", schoolID),
		zap.String("lesson_id", lesson.LessonID),
		zap.String("title", lesson.Title))

	return s.GetByID(ctx, schoolID, lesson.LessonID)
}

func (s *lessonService) GetByID(ctx context.Context, schoolID, id string) (*dto.LessonResponse, error) {
	lesson, err := s.repo.Lesson.GetByID(ctx, schoolID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLessonNotFound
		}
		return nil, fmt.Errorf("查询课程单元失败: %w", err)
	}
	resp := toLessonResponse(lesson)
	return &resp, nil
}

func (s *lessonService) List(ctx context.Context, schoolID string, req *dto.LessonListRequest) ([]dto.LessonResponse, int64, error) {
	lessons, total, err := s.repo.Lesson.List(ctx, schoolID, req.SubjectID, req.GetOffset(), req.GetPageSize())
	if err != nil {
		return nil, 0, fmt.Errorf("查询课程单元列表失败: %w", err)
	}
	items := make([]dto.LessonResponse, 0, len(lessons))
	for i := range lessons {
		items = append(items, toLessonResponse(&lessons[i]))
	}
	return items, total, nil
}

func (s *lessonService) Update(ctx context.Context, schoolID, id string, req *dto.UpdateLessonRequest, operatorID string) (*dto.LessonResponse, error) {
	lesson, err := s.repo.Lesson.GetByID(ctx, schoolID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLessonNotFound
		}
		return nil, fmt.Errorf("查询课程单元失败: %w", err)
	}

	if req.Title != nil {
		lesson.Title = *req.Title
	}
	if req.Sequence != nil {
		lesson.Sequence = *req.Sequence
	}
	if operatorID != "" {
		lesson.UpdatedBy = &operatorID
	}

	if err := s.repo.Lesson.Update(ctx, lesson); err != nil {
		return nil, fmt.Errorf("更新课程单元失败: %w", err)
	}

	resp := toLessonResponse(lesson)
	return &resp, nil
}

func (s *lessonService) Delete(ctx context.Context, schoolID, id string, operatorID string) error {
	if _, err := s.repo.Lesson.GetByID(ctx, schoolID, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrLessonNotFound
		}
		return fmt.Errorf("查询课程单元失败: %w", err)
	}
	if err := s.repo.Lesson.Delete(ctx, schoolID, id, operatorID); err != nil {
		return fmt.Errorf("删除课程单元失败: %w", err)
	}
	s.logger.Info("删除课程单元",
		zap.String("school_id", schoolID),
		zap.String("lesson_id", id),
		zap.String("operator", operatorID))
	return nil
}

func toLessonResponse(lesson *model.Lesson) dto.LessonResponse {
	resp := dto.LessonResponse{
		ID:        lesson.LessonID,
		Title:     lesson.Title,
		Sequence:  lesson.Sequence,
		CreatedAt: formatTime(lesson.CreatedAt),
		UpdatedAt: formatTime(lesson.UpdatedAt),
	}
	if lesson.Subject != nil {
		resp.Subject = &dto.SubjectBrief{ID: lesson.Subject.SubjectID, Name: lesson.Subject.Name, Code: lesson.Subject.Code}
	}
	return resp
}
