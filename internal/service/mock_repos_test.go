package service

import (
	"context"
	"fmt"
	"sort"

	"gorm.io/gorm"

	"smart-campus/backend/internal/model"
	"smart-campus/backend/internal/repository"
)

// ── Mock SchoolRepository ──

type mockSchoolRepo struct {
	schools map[string]*model.School
}

func newMockSchoolRepo() *mockSchoolRepo {
	return &mockSchoolRepo{schools: make(map[string]*model.School)}
}

func (m *mockSchoolRepo) Create(_ context.Context, school *model.School) error {
	if school.SchoolID == "" {
		school.SchoolID = "school-" + school.Name
	}
	m.schools[school.SchoolID] = school
	return nil
}

func (m *mockSchoolRepo) GetByID(_ context.Context, id string) (*model.School, error) {
	if s, ok := m.schools[id]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSchoolRepo) List(_ context.Context, _, _ int) ([]model.School, int64, error) {
	var result []model.School
	for _, s := range m.schools {
		result = append(result, *s)
	}
	return result, int64(len(result)), nil
}

func (m *mockSchoolRepo) Update(_ context.Context, school *model.School) error {
	m.schools[school.SchoolID] = school
	return nil
}

func (m *mockSchoolRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.schools, id)
	return nil
}

// ── Mock ClassRepository ──

type mockClassRepo struct {
	classes map[string]*model.Class
}

func newMockClassRepo() *mockClassRepo {
	return &mockClassRepo{classes: make(map[string]*model.Class)}
}

func (m *mockClassRepo) Create(_ context.Context, class *model.Class) error {
	if class.ClassID == "" {
		class.ClassID = "class-" + class.Name
	}
	m.classes[class.ClassID] = class
	return nil
}

func (m *mockClassRepo) GetByID(_ context.Context, schoolID, id string) (*model.Class, error) {
	if c, ok := m.classes[id]; ok && c.SchoolID == schoolID {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockClassRepo) List(_ context.Context, schoolID string, gradeLevel *int, _, _ int) ([]model.Class, int64, error) {
	var result []model.Class
	for _, c := range m.classes {
		if c.SchoolID != schoolID {
			continue
		}
		if gradeLevel != nil && c.GradeLevel != *gradeLevel {
			continue
		}
		result = append(result, *c)
	}
	return result, int64(len(result)), nil
}

func (m *mockClassRepo) Update(_ context.Context, class *model.Class) error {
	m.classes[class.ClassID] = class
	return nil
}

func (m *mockClassRepo) Delete(_ context.Context, _, id string, _ string) error {
	delete(m.classes, id)
	return nil
}

// ── Mock ClassSubjectRepository ──

type mockClassSubjectRepo struct {
	subjects []model.ClassSubject // 保持插入顺序 = 配置顺序
}

func newMockClassSubjectRepo() *mockClassSubjectRepo {
	return &mockClassSubjectRepo{}
}

func (m *mockClassSubjectRepo) ListByClass(_ context.Context, schoolID, classID string) ([]model.ClassSubject, error) {
	var result []model.ClassSubject
	for _, cs := range m.subjects {
		if cs.SchoolID == schoolID && cs.ClassID == classID {
			result = append(result, cs)
		}
	}
	return result, nil
}

func (m *mockClassSubjectRepo) Replace(_ context.Context, schoolID, classID string, subjects []model.ClassSubject) error {
	var kept []model.ClassSubject
	for _, cs := range m.subjects {
		if cs.SchoolID != schoolID || cs.ClassID != classID {
			kept = append(kept, cs)
		}
	}
	for i := range subjects {
		if subjects[i].ClassSubjectID == "" {
			subjects[i].ClassSubjectID = fmt.Sprintf("cs-%d", len(kept)+i)
		}
	}
	m.subjects = append(kept, subjects...)
	return nil
}

// ── Mock TeacherRepository ──

type mockTeacherRepo struct {
	teachers map[string]*model.Teacher
}

func newMockTeacherRepo() *mockTeacherRepo {
	return &mockTeacherRepo{teachers: make(map[string]*model.Teacher)}
}

func (m *mockTeacherRepo) Create(_ context.Context, teacher *model.Teacher) error {
	if teacher.TeacherID == "" {
		teacher.TeacherID = "teacher-" + teacher.Name
	}
	m.teachers[teacher.TeacherID] = teacher
	return nil
}

func (m *mockTeacherRepo) GetByID(_ context.Context, schoolID, id string) (*model.Teacher, error) {
	if t, ok := m.teachers[id]; ok && t.SchoolID == schoolID {
		return t, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTeacherRepo) List(_ context.Context, schoolID string, _, _ int) ([]model.Teacher, int64, error) {
	var result []model.Teacher
	for _, t := range m.teachers {
		if t.SchoolID == schoolID {
			result = append(result, *t)
		}
	}
	return result, int64(len(result)), nil
}

func (m *mockTeacherRepo) Update(_ context.Context, teacher *model.Teacher) error {
	m.teachers[teacher.TeacherID] = teacher
	return nil
}

func (m *mockTeacherRepo) Delete(_ context.Context, _, id string, _ string) error {
	delete(m.teachers, id)
	return nil
}

// ── Mock SubjectRepository ──

type mockSubjectRepo struct {
	subjects map[string]*model.Subject
}

func newMockSubjectRepo() *mockSubjectRepo {
	return &mockSubjectRepo{subjects: make(map[string]*model.Subject)}
}

func (m *mockSubjectRepo) Create(_ context.Context, subject *model.Subject) error {
	if subject.SubjectID == "" {
		subject.SubjectID = "subject-" + subject.Name
	}
	m.subjects[subject.SubjectID] = subject
	return nil
}

func (m *mockSubjectRepo) GetByID(_ context.Context, schoolID, id string) (*model.Subject, error) {
	if s, ok := m.subjects[id]; ok && s.SchoolID == schoolID {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSubjectRepo) List(_ context.Context, schoolID string) ([]model.Subject, error) {
	var result []model.Subject
	for _, s := range m.subjects {
		if s.SchoolID == schoolID {
			result = append(result, *s)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *mockSubjectRepo) Update(_ context.Context, subject *model.Subject) error {
	m.subjects[subject.SubjectID] = subject
	return nil
}

func (m *mockSubjectRepo) Delete(_ context.Context, _, id string, _ string) error {
	delete(m.subjects, id)
	return nil
}

// ── Mock LessonRepository ──

type mockLessonRepo struct {
	lessons map[string]*model.Lesson
}

func newMockLessonRepo() *mockLessonRepo {
	return &mockLessonRepo{lessons: make(map[string]*model.Lesson)}
}

func (m *mockLessonRepo) Create(_ context.Context, lesson *model.Lesson) error {
	if lesson.LessonID == "" {
		lesson.LessonID = "lesson-" + lesson.Title
	}
	m.lessons[lesson.LessonID] = lesson
	return nil
}

func (m *mockLessonRepo) GetByID(_ context.Context, schoolID, id string) (*model.Lesson, error) {
	if l, ok := m.lessons[id]; ok && l.SchoolID == schoolID {
		return l, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockLessonRepo) List(_ context.Context, schoolID, subjectID string, _, _ int) ([]model.Lesson, int64, error) {
	var result []model.Lesson
	for _, l := range m.lessons {
		if l.SchoolID != schoolID {
			continue
		}
		if subjectID != "" && l.SubjectID != subjectID {
			continue
		}
		result = append(result, *l)
	}
	return result, int64(len(result)), nil
}

func (m *mockLessonRepo) Update(_ context.Context, lesson *model.Lesson) error {
	m.lessons[lesson.LessonID] = lesson
	return nil
}

func (m *mockLessonRepo) Delete(_ context.Context, _, id string, _ string) error {
	delete(m.lessons, id)
	return nil
}

// ── Mock SlotRepository ──

type mockSlotRepo struct {
	slots   map[string]*model.TimetableSlot
	nextID  int
	failOps map[string]error // 操作名 → 注入的错误（模拟存储故障）
}

func newMockSlotRepo() *mockSlotRepo {
	return &mockSlotRepo{
		slots:   make(map[string]*model.TimetableSlot),
		failOps: make(map[string]error),
	}
}

func (m *mockSlotRepo) Create(_ context.Context, slot *model.TimetableSlot) error {
	if err := m.failOps["Create"]; err != nil {
		return err
	}
	if slot.SlotID == "" {
		m.nextID++
		slot.SlotID = fmt.Sprintf("slot-%d", m.nextID)
	}
	cp := *slot
	m.slots[slot.SlotID] = &cp
	return nil
}

func (m *mockSlotRepo) BatchCreate(_ context.Context, slots []model.TimetableSlot) error {
	if err := m.failOps["BatchCreate"]; err != nil {
		return err
	}
	for i := range slots {
		if slots[i].SlotID == "" {
			m.nextID++
			slots[i].SlotID = fmt.Sprintf("slot-%d", m.nextID)
		}
		cp := slots[i]
		m.slots[cp.SlotID] = &cp
	}
	return nil
}

func (m *mockSlotRepo) GetByID(_ context.Context, schoolID, id string) (*model.TimetableSlot, error) {
	if s, ok := m.slots[id]; ok && s.SchoolID == schoolID {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSlotRepo) List(_ context.Context, schoolID string, filter repository.SlotFilter) ([]model.TimetableSlot, error) {
	var result []model.TimetableSlot
	for _, s := range m.slots {
		if s.SchoolID != schoolID {
			continue
		}
		if filter.ClassID != "" && s.ClassID != filter.ClassID {
			continue
		}
		if filter.TeacherID != "" && (s.TeacherID == nil || *s.TeacherID != filter.TeacherID) {
			continue
		}
		if filter.DayOfWeek != nil && s.DayOfWeek != *filter.DayOfWeek {
			continue
		}
		result = append(result, *s)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].DayOfWeek != result[j].DayOfWeek {
			return result[i].DayOfWeek < result[j].DayOfWeek
		}
		return result[i].StartTime < result[j].StartTime
	})
	return result, nil
}

func (m *mockSlotRepo) ListByDay(_ context.Context, schoolID string, dayOfWeek int) ([]model.TimetableSlot, error) {
	var result []model.TimetableSlot
	for _, s := range m.slots {
		if s.SchoolID == schoolID && s.DayOfWeek == dayOfWeek {
			result = append(result, *s)
		}
	}
	return result, nil
}

func (m *mockSlotRepo) Delete(_ context.Context, schoolID, id string) error {
	if s, ok := m.slots[id]; ok && s.SchoolID == schoolID {
		delete(m.slots, id)
	}
	return nil
}

// ── 测试仓库聚合 ──

type testRepos struct {
	school       *mockSchoolRepo
	class        *mockClassRepo
	classSubject *mockClassSubjectRepo
	teacher      *mockTeacherRepo
	subject      *mockSubjectRepo
	lesson       *mockLessonRepo
	slot         *mockSlotRepo
}

func newTestRepos() *testRepos {
	return &testRepos{
		school:       newMockSchoolRepo(),
		class:        newMockClassRepo(),
		classSubject: newMockClassSubjectRepo(),
		teacher:      newMockTeacherRepo(),
		subject:      newMockSubjectRepo(),
		lesson:       newMockLessonRepo(),
		slot:         newMockSlotRepo(),
	}
}

func (r *testRepos) toRepository() *repository.Repository {
	return &repository.Repository{
		School:       r.school,
		Class:        r.class,
		ClassSubject: r.classSubject,
		Teacher:      r.teacher,
		Subject:      r.subject,
		Lesson:       r.lesson,
		Slot:         r.slot,
	}
}
