package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"smart-campus/backend/internal/dto"
	"smart-campus/backend/internal/model"
	"smart-campus/backend/internal/repository"
)

// ErrSchoolNotFound 学校不存在
var ErrSchoolNotFound = errors.New("学校不存在")

// SchoolService 学校（租户）业务接口
type SchoolService interface {
	Create(ctx context.Context, req *dto.CreateSchoolRequest, operatorID string) (*dto.SchoolResponse, error)
	GetByID(ctx context.Context, id string) (*dto.SchoolResponse, error)
	List(ctx context.Context, page *dto.PaginationRequest) ([]dto.SchoolResponse, int64, error)
	Update(ctx context.Context, id string, req *dto.UpdateSchoolRequest, operatorID string) (*dto.SchoolResponse, error)
	Delete(ctx context.Context, id string, operatorID string) error
}

type schoolService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewSchoolService 创建学校服务
func NewSchoolService(repo *repository.Repository, logger *zap.Logger) SchoolService {
	return &schoolService{repo: repo, logger: logger}
}

func (s *schoolService) Create(ctx context.Context, req *dto.CreateSchoolRequest, operatorID string) (*dto.SchoolResponse, error) {
	school := &model.School{
		Name:     req.Name,
		Timezone: req.Timezone,
		IsActive: true,
	}
	if school.Timezone == "" {
		school.Timezone = "Asia/Shanghai"
	}
	if operatorID != "" {
		school.CreatedBy = &operatorID
	}

	if err := s.repo.School.Create(ctx, school); err != nil {
		return nil, fmt.Errorf("创建学校失败: %w", err)
	}

	s.logger.Info("创建学校",
		zap.String("school_id", school.SchoolID),
		zap.String("name", school.Name))

	resp := toSchoolResponse(school)
	return &resp, nil
}

func (s *schoolService) GetByID(ctx context.Context, id string) (*dto.SchoolResponse, error) {
	school, err := s.repo.School.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSchoolNotFound
		}
		return nil, fmt.Errorf("查询学校失败: %w", err)
	}
	resp := toSchoolResponse(school)
	return &resp, nil
}

func (s *schoolService) List(ctx context.Context, page *dto.PaginationRequest) ([]dto.SchoolResponse, int64, error) {
	schools, total, err := s.repo.School.List(ctx, page.GetOffset(), page.GetPageSize())
	if err != nil {
		return nil, 0, fmt.Errorf("查询学校列表失败: %w", err)
	}
	items := make([]dto.SchoolResponse, 0, len(schools))
	for i := range schools {
		items = append(items, toSchoolResponse(&schools[i]))
	}
	return items, total, nil
}

func (s *schoolService) Update(ctx context.Context, id string, req *dto.UpdateSchoolRequest, operatorID string) (*dto.SchoolResponse, error) {
	school, err := s.repo.School.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSchoolNotFound
		}
		return nil, fmt.Errorf("查询学校失败: %w", err)
	}

	if req.Name != nil {
		school.Name = *req.Name
	}
	if req.Timezone != nil {
		school.Timezone = *req.Timezone
	}
	if req.IsActive != nil {
		school.IsActive = *req.IsActive
	}
	if operatorID != "" {
		school.UpdatedBy = &operatorID
	}

	if err := s.repo.School.Update(ctx, school); err != nil {
		return nil, fmt.Errorf("更新学校失败: %w", err)
	}

	resp := toSchoolResponse(school)
	return &resp, nil
}

func (s *schoolService) Delete(ctx context.Context, id string, operatorID string) error {
	if _, err := s.repo.School.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSchoolNotFound
		}
		return fmt.Errorf("查询学校失败: %w", err)
	}
	if err := s.repo.School.Delete(ctx, id, operatorID); err != nil {
		return fmt.Errorf("删除学校失败: %w", err)
	}
	s.logger.Info("删除学校", zap.String("school_id", id), zap.String("operator", operatorID))
	return nil
}

func toSchoolResponse(school *model.School) dto.SchoolResponse {
	return dto.SchoolResponse{
		ID:        school.SchoolID,
		Name:      school.Name,
		Timezone:  school.Timezone,
		IsActive:  school.IsActive,
		CreatedAt: formatTime(school.CreatedAt),
		UpdatedAt: formatTime(school.UpdatedAt),
	}
}

// formatTime 响应里统一的时间格式
func formatTime(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}
