//go:build integration

package repository_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	pkgerrors "smart-campus/backend/pkg/errors"

	"smart-campus/backend/internal/model"
	"smart-campus/backend/internal/repository"
)

// ═══════════════════════════════════════════════════════════
// Test Setup
// ═══════════════════════════════════════════════════════════

var testDB *gorm.DB

func TestMain(m *testing.M) {
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		dsn = "host=localhost port=5433 user=campus password=campus_password dbname=smart_campus_test sslmode=disable TimeZone=Asia/Shanghai"
	}

	var err error
	testDB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "无法连接测试数据库: %v\n", err)
		os.Exit(1)
	}

	// 自动迁移测试表结构
	err = testDB.AutoMigrate(
		&model.School{},
		&model.Class{},
		&model.Teacher{},
		&model.Subject{},
		&model.ClassSubject{},
		&model.Lesson{},
		&model.TimetableSlot{},
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "AutoMigrate 失败: %v\n", err)
		os.Exit(1)
	}

	code := m.Run()
	os.Exit(code)
}

// setupTestData 创建基础测试数据并返回清理函数
func setupTestData(t *testing.T) (school *model.School, class *model.Class, teacher *model.Teacher, subject *model.Subject, cleanup func()) {
	t.Helper()
	ctx := context.Background()

	school = &model.School{
		Name:     fmt.Sprintf("测试学校-%d", time.Now().UnixNano()),
		Timezone: "Asia/Shanghai",
		IsActive: true,
	}
	if err := testDB.WithContext(ctx).Create(school).Error; err != nil {
		t.Fatalf("创建学校失败: %v", err)
	}

	class = &model.Class{
		SchoolID:   school.SchoolID,
		Name:       fmt.Sprintf("测试班级-%d", time.Now().UnixNano()),
		GradeLevel: 1,
		IsActive:   true,
	}
	if err := testDB.WithContext(ctx).Create(class).Error; err != nil {
		t.Fatalf("创建班级失败: %v", err)
	}

	teacher = &model.Teacher{
		SchoolID: school.SchoolID,
		Name:     "测试教师",
		Email:    fmt.Sprintf("teacher%d@edu.cn", time.Now().UnixNano()),
		IsActive: true,
	}
	if err := testDB.WithContext(ctx).Create(teacher).Error; err != nil {
		t.Fatalf("创建教师失败: %v", err)
	}

	subject = &model.Subject{
		SchoolID: school.SchoolID,
		Name:     fmt.Sprintf("测试科目-%d", time.Now().UnixNano()),
		Code:     "TST",
	}
	if err := testDB.WithContext(ctx).Create(subject).Error; err != nil {
		t.Fatalf("创建科目失败: %v", err)
	}

	cleanup = func() {
		testDB.Unscoped().Where("school_id = ?", school.SchoolID).Delete(&model.TimetableSlot{})
		testDB.Unscoped().Where("school_id = ?", school.SchoolID).Delete(&model.ClassSubject{})
		testDB.Unscoped().Where("subject_id = ?", subject.SubjectID).Delete(&model.Subject{})
		testDB.Unscoped().Where("teacher_id = ?", teacher.TeacherID).Delete(&model.Teacher{})
		testDB.Unscoped().Where("class_id = ?", class.ClassID).Delete(&model.Class{})
		testDB.Unscoped().Where("school_id = ?", school.SchoolID).Delete(&model.School{})
	}
	return
}

// ═══════════════════════════════════════════════════════════
// Test: Tenant Isolation
// ═══════════════════════════════════════════════════════════

func TestTenantIsolation_CrossSchoolInvisible(t *testing.T) {
	school, class, _, subject, cleanup := setupTestData(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	other := &model.School{
		Name:     fmt.Sprintf("其他学校-%d", time.Now().UnixNano()),
		Timezone: "Asia/Shanghai",
		IsActive: true,
	}
	if err := testDB.WithContext(ctx).Create(other).Error; err != nil {
		t.Fatalf("创建第二所学校失败: %v", err)
	}
	defer testDB.Unscoped().Where("school_id = ?", other.SchoolID).Delete(&model.School{})

	// 本租户可见
	if _, err := repo.Subject.GetByID(ctx, school.SchoolID, subject.SubjectID); err != nil {
		t.Fatalf("本租户查询科目失败: %v", err)
	}
	// 跨租户不可见
	if _, err := repo.Subject.GetByID(ctx, other.SchoolID, subject.SubjectID); err == nil {
		t.Fatal("其他租户不应查到本租户的科目")
	}
	if _, err := repo.Class.GetByID(ctx, other.SchoolID, class.ClassID); err == nil {
		t.Fatal("其他租户不应查到本租户的班级")
	}
}

// ═══════════════════════════════════════════════════════════
// Test: Optimistic Lock
// ═══════════════════════════════════════════════════════════

func TestOptimisticLock_Subject_ConflictDetected(t *testing.T) {
	school, _, _, subject, cleanup := setupTestData(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	// 模拟并发：获取两份副本
	copy1, _ := repo.Subject.GetByID(ctx, school.SchoolID, subject.SubjectID)
	copy2, _ := repo.Subject.GetByID(ctx, school.SchoolID, subject.SubjectID)

	// 第一次更新成功
	copy1.Name = "数学（改）"
	if err := repo.Subject.Update(ctx, copy1); err != nil {
		t.Fatalf("第一次更新应成功: %v", err)
	}

	// 第二次更新应失败（version 已过期）
	copy2.Name = "数学（并发改）"
	err := repo.Subject.Update(ctx, copy2)
	if err == nil {
		t.Fatal("期望乐观锁冲突错误，但更新成功了")
	}
	if err != pkgerrors.ErrOptimisticLock {
		t.Errorf("期望 ErrOptimisticLock，得到: %v", err)
	}
}

func TestOptimisticLock_VersionIncrement(t *testing.T) {
	school, _, _, subject, cleanup := setupTestData(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	if subject.Version != 1 {
		t.Errorf("初始 version 应为 1，得到: %d", subject.Version)
	}

	// 连续更新 3 次
	for i := 0; i < 3; i++ {
		got, _ := repo.Subject.GetByID(ctx, school.SchoolID, subject.SubjectID)
		got.Name = fmt.Sprintf("科目-v%d", i+2)
		if err := repo.Subject.Update(ctx, got); err != nil {
			t.Fatalf("第 %d 次更新失败: %v", i+1, err)
		}
	}

	// 验证 version 递增到 4
	final, _ := repo.Subject.GetByID(ctx, school.SchoolID, subject.SubjectID)
	if final.Version != 4 {
		t.Errorf("期望 version=4，得到: %d", final.Version)
	}
}

// ═══════════════════════════════════════════════════════════
// Test: ClassSubject Replace
// ═══════════════════════════════════════════════════════════

func TestClassSubject_Replace(t *testing.T) {
	school, class, teacher, subject, cleanup := setupTestData(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	// 第一次设置
	first := []model.ClassSubject{{
		SchoolID:    school.SchoolID,
		ClassID:     class.ClassID,
		SubjectID:   subject.SubjectID,
		TeacherID:   &teacher.TeacherID,
		WeeklyHours: 3,
	}}
	if err := repo.ClassSubject.Replace(ctx, school.SchoolID, class.ClassID, first); err != nil {
		t.Fatalf("第一次 Replace 失败: %v", err)
	}

	// 整体替换
	second := []model.ClassSubject{{
		SchoolID:    school.SchoolID,
		ClassID:     class.ClassID,
		SubjectID:   subject.SubjectID,
		WeeklyHours: 5,
	}}
	if err := repo.ClassSubject.Replace(ctx, school.SchoolID, class.ClassID, second); err != nil {
		t.Fatalf("第二次 Replace 失败: %v", err)
	}

	list, err := repo.ClassSubject.ListByClass(ctx, school.SchoolID, class.ClassID)
	if err != nil {
		t.Fatalf("ListByClass 失败: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("期望 1 条配置，得到 %d 条", len(list))
	}
	if list[0].WeeklyHours != 5 {
		t.Errorf("期望替换后的周课时 5，得到 %d", list[0].WeeklyHours)
	}
	if list[0].TeacherID != nil {
		t.Error("替换后教师应为空（自习）")
	}
}

// ═══════════════════════════════════════════════════════════
// Test: Slot Batch Operations
// ═══════════════════════════════════════════════════════════

func TestSlot_BatchCreateAndList(t *testing.T) {
	school, class, teacher, subject, cleanup := setupTestData(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	// 批量创建 4 个槽位（乱序写入）
	slots := []model.TimetableSlot{
		{SchoolID: school.SchoolID, ClassID: class.ClassID, SubjectID: subject.SubjectID,
			TeacherID: &teacher.TeacherID, DayOfWeek: 2, StartTime: "09:00", EndTime: "09:50", Source: model.SlotSourceGenerated},
		{SchoolID: school.SchoolID, ClassID: class.ClassID, SubjectID: subject.SubjectID,
			TeacherID: &teacher.TeacherID, DayOfWeek: 1, StartTime: "10:00", EndTime: "10:50", Source: model.SlotSourceGenerated},
		{SchoolID: school.SchoolID, ClassID: class.ClassID, SubjectID: subject.SubjectID,
			TeacherID: &teacher.TeacherID, DayOfWeek: 1, StartTime: "08:00", EndTime: "08:50", Source: model.SlotSourceGenerated},
		{SchoolID: school.SchoolID, ClassID: class.ClassID, SubjectID: subject.SubjectID,
			TeacherID: &teacher.TeacherID, DayOfWeek: 2, StartTime: "08:00", EndTime: "08:50", Source: model.SlotSourceGenerated},
	}
	if err := repo.Slot.BatchCreate(ctx, slots); err != nil {
		t.Fatalf("BatchCreate 失败: %v", err)
	}

	list, err := repo.Slot.List(ctx, school.SchoolID, repository.SlotFilter{ClassID: class.ClassID})
	if err != nil {
		t.Fatalf("List 失败: %v", err)
	}
	if len(list) != 4 {
		t.Fatalf("期望 4 个槽位，得到 %d 个", len(list))
	}
	// 返回按 (day_of_week, start_time) 排序
	for i := 1; i < len(list); i++ {
		prev, cur := list[i-1], list[i]
		if prev.DayOfWeek > cur.DayOfWeek ||
			(prev.DayOfWeek == cur.DayOfWeek && prev.StartTime > cur.StartTime) {
			t.Errorf("槽位未按天和开始时间排序: %d %s 在 %d %s 之前",
				prev.DayOfWeek, prev.StartTime, cur.DayOfWeek, cur.StartTime)
		}
	}
}

func TestSlot_Delete_Idempotent(t *testing.T) {
	school, class, _, subject, cleanup := setupTestData(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	slot := &model.TimetableSlot{
		SchoolID: school.SchoolID, ClassID: class.ClassID, SubjectID: subject.SubjectID,
		DayOfWeek: 1, StartTime: "08:00", EndTime: "08:50", Source: model.SlotSourceManual,
	}
	if err := repo.Slot.Create(ctx, slot); err != nil {
		t.Fatalf("创建槽位失败: %v", err)
	}

	if err := repo.Slot.Delete(ctx, school.SchoolID, slot.SlotID); err != nil {
		t.Fatalf("删除槽位失败: %v", err)
	}
	// 重复删除不报错
	if err := repo.Slot.Delete(ctx, school.SchoolID, slot.SlotID); err != nil {
		t.Fatalf("重复删除应幂等: %v", err)
	}

	if _, err := repo.Slot.GetByID(ctx, school.SchoolID, slot.SlotID); err == nil {
		t.Fatal("删除后应查不到槽位")
	}
}

// ═══════════════════════════════════════════════════════════
// Test: Soft Delete
// ═══════════════════════════════════════════════════════════

func TestSubject_SoftDelete(t *testing.T) {
	school, _, _, subject, cleanup := setupTestData(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	if err := repo.Subject.Delete(ctx, school.SchoolID, subject.SubjectID, ""); err != nil {
		t.Fatalf("软删除失败: %v", err)
	}

	// 常规查询应找不到
	if _, err := repo.Subject.GetByID(ctx, school.SchoolID, subject.SubjectID); err == nil {
		t.Fatal("软删除后应查不到记录")
	}

	// Unscoped 查询应能找到
	var found model.Subject
	err := testDB.Unscoped().Where("subject_id = ?", subject.SubjectID).First(&found).Error
	if err != nil {
		t.Fatalf("Unscoped 查询应能找到: %v", err)
	}
	if found.DeletedAt.Time.IsZero() {
		t.Error("DeletedAt 应已设置")
	}
}
