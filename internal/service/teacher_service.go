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

// TeacherService 教师业务接口
type TeacherService interface {
	Create(ctx context.Context, schoolID string, req *dto.CreateTeacherRequest, operatorID string) (*dto.TeacherResponse, error)
	GetByID(ctx context.Context, schoolID, id string) (*dto.TeacherResponse, error)
	List(ctx context.Context, schoolID string, req *dto.TeacherListRequest) ([]dto.TeacherResponse, int64, error)
	Update(ctx context.Context, schoolID, id string, req *dto.UpdateTeacherRequest, operatorID string) (*dto.TeacherResponse, error)
	Delete(ctx context.Context, schoolID, id string, operatorID string) error
}

type teacherService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewTeacherService 创建教师服务
func NewTeacherService(repo *repository.Repository, logger *zap.Logger) TeacherService {
	return &teacherService{repo: repo, logger: logger}
}

func (s *teacherService) Create(ctx context.Context, schoolID string, req *dto.CreateTeacherRequest, operatorID string) (*dto.TeacherResponse, error) {
	teacher := &model.Teacher{
		SchoolID: schoolID,
		Name:     req.Name,
		Email:    req.Email,
		IsActive: true,
	}
	if operatorID != "" {
		teacher.CreatedBy = &operatorID
	}

	if err := s.repo.Teacher.Create(ctx, teacher); err != nil {
		return nil, fmt.Errorf("创建教师失败: %w", err)
	}

	s.logger.Info("创建教师",
		zap.String("school_id", schoolID),
		zap.String("teacher_id", teacher.TeacherID),
		zap.String("name", teacher.Name))

	resp := toTeacherResponse(teacher)
	return &resp, nil
}

func (s *teacherService) GetByID(ctx context.Context, schoolID, id string) (*dto.TeacherResponse, error) {
	teacher, err := s.repo.Teacher.GetByID(ctx, schoolID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeacherNotFound
		}
		return nil, fmt.Errorf("查询教师失败: %w", err)
	}
	resp := toTeacherResponse(teacher)
	return &resp, nil
}

func (s *teacherService) List(ctx context.Context, schoolID string, req *dto.TeacherListRequest) ([]dto.TeacherResponse, int64, error) {
	teachers, total, err := s.repo.Teacher.List(ctx, schoolID, req.GetOffset(), req.GetPageSize())
	if err != nil {
		return nil, 0, fmt.Errorf("查询教师列表失败: %w", err)
	}
	items := make([]dto.TeacherResponse, 0, len(teachers))
	for i := range teachers {
		items = append(items, toTeacherResponse(&teachers[i]))
	}
	return items, total, nil
}

func (s *teacherService) Update(ctx context.Context, schoolID, id string, req *dto.UpdateTeacherRequest, operatorID string) (*dto.TeacherResponse, error) {
	teacher, err := s.repo.Teacher.GetByID(ctx, schoolID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeacherNotFound
		}
		return nil, fmt.Errorf("查询教师失败: %w", err)
	}

	if req.Name != nil {
		teacher.Name = *req.Name
	}
	if req.Email != nil {
		teacher.Email = *req.Email
	}
	if req.IsActive != nil {
		teacher.IsActive = *req.IsActive
	}
	if operatorID != "" {
		teacher.UpdatedBy = &operatorID
	}

	if err := s.repo.Teacher.Update(ctx, teacher); err != nil {
		return nil, err
	}

	resp := toTeacherResponse(teacher)
	return &resp, nil
}

func (s *teacherService) Delete(ctx context.Context, schoolID, id string, operatorID string) error {
	if _, err := s.repo.Teacher.GetByID(ctx, schoolID, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTeacherNotFound
		}
		return fmt.Errorf("查询教师失败: %w", err)
	}
	if err := s.repo.Teacher.Delete(ctx, schoolID, id, operatorID); err != nil {
		return fmt.Errorf("删除教师失败: %w", err)
	}
	s.logger.Info("删除教师",
		zap.String("school_id", schoolID),
		zap.String("teacher_id", id),
		zap.String("operator", operatorID))
	return nil
}

func toTeacherResponse(teacher *model.Teacher) dto.TeacherResponse {
	return dto.TeacherResponse{
		ID:        teacher.TeacherID,
		Name:      teacher.Name,
		Email:     teacher.Email,
		IsActive:  teacher.IsActive,
		CreatedAt: formatTime(teacher.CreatedAt),
		UpdatedAt: formatTime(teacher.UpdatedAt),
	}
}
