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

// ErrDuplicateSubject 班级科目配置中同一科目出现多次
var ErrDuplicateSubject = errors.New("班级科目配置中存在重复科目")

// ClassService 班级业务接口
type ClassService interface {
	Create(ctx context.Context, schoolID string, req *dto.CreateClassRequest, operatorID string) (*dto.ClassResponse, error)
	GetByID(ctx context.Context, schoolID, id string) (*dto.ClassResponse, error)
	List(ctx context.Context, schoolID string, req *dto.ClassListRequest) ([]dto.ClassResponse, int64, error)
	Update(ctx context.Context, schoolID, id string, req *dto.UpdateClassRequest, operatorID string) (*dto.ClassResponse, error)
	Delete(ctx context.Context, schoolID, id string, operatorID string) error
	// SetSubjects 整体替换班级的科目配置
	SetSubjects(ctx context.Context, schoolID, id string, req *dto.SetClassSubjectsRequest, operatorID string) (*dto.ClassResponse, error)
}

type classService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewClassService 创建班级服务
func NewClassService(repo *repository.Repository, logger *zap.Logger) ClassService {
	return &classService{repo: repo, logger: logger}
}

func (s *classService) Create(ctx context.Context, schoolID string, req *dto.CreateClassRequest, operatorID string) (*dto.ClassResponse, error) {
	class := &model.Class{
		SchoolID:   schoolID,
		Name:       req.Name,
		GradeLevel: req.GradeLevel,
		Homeroom:   req.Homeroom,
		IsActive:   true,
	}
	if operatorID != "" {
		class.CreatedBy = &operatorID
	}

	if err := s.repo.Class.Create(ctx, class); err != nil {
		return nil, fmt.Errorf("创建班级失败: %w", err)
	}

	s.logger.Info("创建班级",
		zap.String("school_id", schoolID),
		zap.String("class_id", class.ClassID),
		zap.String("name", class.Name))

	resp := toClassResponse(class)
	return &resp, nil
}

func (s *classService) GetByID(ctx context.Context, schoolID, id string) (*dto.ClassResponse, error) {
	class, err := s.repo.Class.GetByID(ctx, schoolID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClassNotFound
		}
		return nil, fmt.Errorf("查询班级失败: %w", err)
	}
	resp := toClassResponse(class)
	return &resp, nil
}

func (s *classService) List(ctx context.Context, schoolID string, req *dto.ClassListRequest) ([]dto.ClassResponse, int64, error) {
	classes, total, err := s.repo.Class.List(ctx, schoolID, req.GradeLevel, req.GetOffset(), req.GetPageSize())
	if err != nil {
		return nil, 0, fmt.Errorf("查询班级列表失败: %w", err)
	}
	items := make([]dto.ClassResponse, 0, len(classes))
	for i := range classes {
		items = append(items, toClassResponse(&classes[i]))
	}
	return items, total, nil
}

func (s *classService) Update(ctx context.Context, schoolID, id string, req *dto.UpdateClassRequest, operatorID string) (*dto.ClassResponse, error) {
	class, err := s.repo.Class.GetByID(ctx, schoolID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClassNotFound
		}
		return nil, fmt.Errorf("查询班级失败: %w", err)
	}

	if req.Name != nil {
		class.Name = *req.Name
	}
	if req.GradeLevel != nil {
		class.GradeLevel = *req.GradeLevel
	}
	if req.Homeroom != nil {
		class.Homeroom = req.Homeroom
	}
	if req.IsActive != nil {
		class.IsActive = *req.IsActive
	}
	if operatorID != "" {
		class.UpdatedBy = &operatorID
	}

	if err := s.repo.Class.Update(ctx, class); err != nil {
		return nil, err
	}

	resp := toClassResponse(class)
	return &resp, nil
}

func (s *classService) Delete(ctx context.Context, schoolID, id string, operatorID string) error {
	if _, err := s.repo.Class.GetByID(ctx, schoolID, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrClassNotFound
		}
		return fmt.Errorf("查询班级失败: %w", err)
	}
	if err := s.repo.Class.Delete(ctx, schoolID, id, operatorID); err != nil {
		return fmt.Errorf("删除班级失败: %w", err)
	}
	s.logger.Info("删除班级",
		zap.String("school_id", schoolID),
		zap.String("class_id", id),
		zap.String("operator", operatorID))
	return nil
}

func (s *classService) SetSubjects(ctx context.Context, schoolID, id string, req *dto.SetClassSubjectsRequest, operatorID string) (*dto.ClassResponse, error) {
	if _, err := s.repo.Class.GetByID(ctx, schoolID, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClassNotFound
		}
		return nil, fmt.Errorf("查询班级失败: %w", err)
	}

	seen := make(map[string]bool, len(req.Subjects))
	subjects := make([]model.ClassSubject, 0, len(req.Subjects))
	for _, item := range req.Subjects {
		if seen[item.SubjectID] {
			return nil, ErrDuplicateSubject
		}
		seen[item.SubjectID] = true

		if _, err := s.repo.Subject.GetByID(ctx, schoolID, item.SubjectID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrSubjectNotFound
			}
			return nil, fmt.Errorf("查询科目失败: %w", err)
		}
		if item.TeacherID != nil {
			if _, err := s.repo.Teacher.GetByID(ctx, schoolID, *item.TeacherID); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, ErrTeacherNotFound
				}
				return nil, fmt.Errorf("查询教师失败: %w", err)
			}
		}

		weekly := item.WeeklyHours
		if weekly <= 0 {
			weekly = 2
		}
		cs := model.ClassSubject{
			SchoolID:    schoolID,
			ClassID:     id,
			SubjectID:   item.SubjectID,
			TeacherID:   item.TeacherID,
			WeeklyHours: weekly,
		}
		if operatorID != "" {
			cs.CreatedBy = &operatorID
		}
		subjects = append(subjects, cs)
	}

	if err := s.repo.ClassSubject.Replace(ctx, schoolID, id, subjects); err != nil {
		return nil, fmt.Errorf("替换班级科目配置失败: %w", err)
	}

	s.logger.Info("替换班级科目配置",
		zap.String("school_id", schoolID),
		zap.String("class_id", id),
		zap.Int("count", len(subjects)))

	return s.GetByID(ctx, schoolID, id)
}

func toClassResponse(class *model.Class) dto.ClassResponse {
	resp := dto.ClassResponse{
		ID:         class.ClassID,
		Name:       class.Name,
		GradeLevel: class.GradeLevel,
		Homeroom:   class.Homeroom,
		IsActive:   class.IsActive,
		CreatedAt:  formatTime(class.CreatedAt),
		UpdatedAt:  formatTime(class.UpdatedAt),
	}
	for i := range class.Subjects {
		cs := &class.Subjects[i]
		item := dto.ClassSubjectResponse{
			ID:          cs.ClassSubjectID,
			WeeklyHours: cs.WeeklyHours,
		}
		if cs.Subject != nil {
			item.Subject = &dto.SubjectBrief{ID: cs.Subject.SubjectID, Name: cs.Subject.Name, Code: cs.Subject.Code}
		}
		if cs.Teacher != nil {
			item.Teacher = &dto.TeacherBrief{ID: cs.Teacher.TeacherID, Name: cs.Teacher.Name}
		}
		resp.Subjects = append(resp.Subjects, item)
	}
	return resp
}
