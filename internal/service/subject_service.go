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

// SubjectService 科目业务接口
type SubjectService interface {
	Create(ctx context.Context, schoolID string, req *dto.CreateSubjectRequest, operatorID string) (*dto.SubjectResponse, error)
	GetByID(ctx context.Context, schoolID, id string) (*dto.SubjectResponse, error)
	List(ctx context.Context, schoolID string) ([]dto.SubjectResponse, error)
	Update(ctx context.Context, schoolID, id string, req *dto.UpdateSubjectRequest, operatorID string) (*dto.SubjectResponse, error)
	Delete(ctx context.Context, schoolID, id string, operatorID string) error
}

type subjectService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewSubjectService 创建科目服务
func NewSubjectService(repo *repository.Repository, logger *zap.Logger) SubjectService {
	return &subjectService{repo: repo, logger: logger}
}

func (s *subjectService) Create(ctx context.Context, schoolID string, req *dto.CreateSubjectRequest, operatorID string) (*dto.SubjectResponse, error) {
	subject := &model.Subject{
		SchoolID: schoolID,
		Name:     req.Name,
		Code:     req.Code,
	}
	if operatorID != "" {
		subject.CreatedBy = &operatorID
	}

	if err := s.repo.Subject.Create(ctx, subject); err != nil {
		return nil, fmt.Errorf("创建科目失败: %w", err)
	}

	s.logger.Info("创建科目",
		zap.String("school_id", schoolID),
		zap.String("subject_id", subject.SubjectID),
		zap.String("name", subject.Name))

	resp := toSubjectResponse(subject)
	return &resp, nil
}

func (s *subjectService) GetByID(ctx context.Context, schoolID, id string) (*dto.SubjectResponse, error) {
	subject, err := s.repo.Subject.GetByID(ctx, schoolID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubjectNotFound
		}
		return nil, fmt.Errorf("查询科目失败: %w", err)
	}
	resp := toSubjectResponse(subject)
	return &resp, nil
}

func (s *subjectService) List(ctx context.Context, schoolID string) ([]dto.SubjectResponse, error) {
	subjects, err := s.repo.Subject.List(ctx, schoolID)
	if err != nil {
		return nil, fmt.Errorf("查询科目列表失败: %w", err)
	}
	items := make([]dto.SubjectResponse, 0, len(subjects))
	for i := range subjects {
		items = append(items, toSubjectResponse(&subjects[i]))
	}
	return items, nil
}

func (s *subjectService) Update(ctx context.Context, schoolID, id string, req *dto.UpdateSubjectRequest, operatorID string) (*dto.SubjectResponse, error) {
	subject, err := s.repo.Subject.GetByID(ctx, schoolID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubjectNotFound
		}
		return nil, fmt.Errorf("查询科目失败: %w", err)
	}

	if req.Name != nil {
		subject.Name = *req.Name
	}
	if req.Code != nil {
		subject.Code = *req.Code
	}
	if operatorID != "" {
		subject.UpdatedBy = &operatorID
	}

	if err := s.repo.Subject.Update(ctx, subject); err != nil {
		return nil, err
	}

	resp := toSubjectResponse(subject)
	return &resp, nil
}

func (s *subjectService) Delete(ctx context.Context, schoolID, id string, operatorID string) error {
	if _, err := s.repo.Subject.GetByID(ctx, schoolID, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSubjectNotFound
		}
		return fmt.Errorf("查询科目失败: %w", err)
	}
	if err := s.repo.Subject.Delete(ctx, schoolID, id, operatorID); err != nil {
		return fmt.Errorf("删除科目失败: %w", err)
	}
	s.logger.Info("删除科目",
		zap.String("school_id", schoolID),
		zap.String("subject_id", id),
		zap.String("operator", operatorID))
	return nil
}

func toSubjectResponse(subject *model.Subject) dto.SubjectResponse {
	return dto.SubjectResponse{
		ID:        subject.SubjectID,
		Name:      subject.Name,
		Code:      subject.Code,
		CreatedAt: formatTime(subject.CreatedAt),
		UpdatedAt: formatTime(subject.UpdatedAt),
	}
}
