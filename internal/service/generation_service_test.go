package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"smart-campus/backend/internal/advisor"
	"smart-campus/backend/internal/dto"
	"smart-campus/backend/internal/model"
	"smart-campus/backend/internal/repository"
)

// ── Mock Advisor ──

type mockAdvisor struct {
	suggestion *advisor.Suggestion
	err        error
	calls      int
}

func (m *mockAdvisor) SuggestDistribution(_ context.Context, _ advisor.ClassContext) (*advisor.Suggestion, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.suggestion, nil
}

// ── 测试辅助 ──

func setupTestGenerationService(adv advisor.Advisor) (GenerationService, *testRepos) {
	repos := newTestRepos()
	svc := NewGenerationService(repos.toRepository(), adv, newTenantLocker(nil), nil, zap.NewNop(), time.Second)
	return svc, repos
}

// seedGenerationData 种子数据：1所学校 + 1个班级 + 2位教师 + 班级科目配置（数学/语文）
func seedGenerationData(repos *testRepos) {
	seedTimetableData(repos)
	repos.classSubject.subjects = []model.ClassSubject{
		{
			ClassSubjectID: "cs-1", SchoolID: "school-1", ClassID: "class-1",
			SubjectID: "subject-1", TeacherID: strPtr("teacher-1"), WeeklyHours: 4,
			Subject: &model.Subject{SubjectID: "subject-1", Name: "数学"},
			Teacher: &model.Teacher{TeacherID: "teacher-1", Name: "王老师"},
		},
		{
			ClassSubjectID: "cs-2", SchoolID: "school-1", ClassID: "class-1",
			SubjectID: "subject-2", TeacherID: strPtr("teacher-2"), WeeklyHours: 4,
			Subject: &model.Subject{SubjectID: "subject-2", Name: "语文"},
			Teacher: &model.Teacher{TeacherID: "teacher-2", Name: "李老师"},
		},
	}
}

func genReq(classIDs []string, days []int) *dto.GenerateTimetableRequest {
	return &dto.GenerateTimetableRequest{
		ClassIDs:        classIDs,
		StartTime:       "08:00",
		EndTime:         "10:00",
		SessionDuration: 60,
		DaysOfWeek:      days,
	}
}

// ════════════════════════════════════════════════════════════
// Generate 测试
// ════════════════════════════════════════════════════════════

func TestGenerationService_Generate_RoundRobinWithoutAdvisor(t *testing.T) {
	svc, repos := setupTestGenerationService(nil)
	seedGenerationData(repos)

	// 2天 × 每日2节 = 4个候选槽位
	resp, err := svc.Generate(context.Background(), "school-1", genReq([]string{"class-1"}, []int{1, 2}), "op-1")
	if err != nil {
		t.Fatalf("Generate 失败: %v", err)
	}
	if len(resp.Results) != 1 {
		t.Fatalf("结果数 = %d, 期望 1", len(resp.Results))
	}
	r := resp.Results[0]
	if !r.Success {
		t.Fatalf("排课应成功, 错误: %s", r.Error)
	}
	if r.Requested != 4 {
		t.Errorf("候选槽位数 = %d, 期望 4", r.Requested)
	}
	if r.CreatedSlots != 4 {
		t.Errorf("创建槽位数 = %d, 期望 4", r.CreatedSlots)
	}

	// 轮转分配：数学、语文交替
	slots, _ := repos.slot.List(context.Background(), "school-1", repository.SlotFilter{})
	bySubject := make(map[string]int)
	for _, s := range slots {
		bySubject[s.SubjectID]++
		if s.Source != model.SlotSourceGenerated {
			t.Errorf("来源 = %s, 期望 generated", s.Source)
		}
	}
	if bySubject["subject-1"] != 2 || bySubject["subject-2"] != 2 {
		t.Errorf("科目分布 = %v, 期望各 2 节", bySubject)
	}
}

func TestGenerationService_Generate_UsesAdvisorOrder(t *testing.T) {
	adv := &mockAdvisor{suggestion: &advisor.Suggestion{
		SubjectOrder: []string{"subject-2", "subject-1"},
		Explanation:  "语文排在前面更合理",
		Suggestions:  []string{"建议上午安排语文"},
	}}
	svc, repos := setupTestGenerationService(adv)
	seedGenerationData(repos)

	resp, err := svc.Generate(context.Background(), "school-1", genReq([]string{"class-1"}, []int{1}), "op-1")
	if err != nil {
		t.Fatalf("Generate 失败: %v", err)
	}
	if adv.calls != 1 {
		t.Errorf("建议服务调用次数 = %d, 期望每班 1 次", adv.calls)
	}
	r := resp.Results[0]
	if r.Explanation != "语文排在前面更合理" {
		t.Error("应透传建议服务的说明文字")
	}

	// 建议顺序：第一节语文（subject-2）
	slots, _ := repos.slot.List(context.Background(), "school-1", repository.SlotFilter{})
	if len(slots) != 2 {
		t.Fatalf("槽位数 = %d, 期望 2", len(slots))
	}
	if slots[0].SubjectID != "subject-2" {
		t.Errorf("第一节科目 = %s, 期望按建议顺序排 subject-2", slots[0].SubjectID)
	}
}

func TestGenerationService_Generate_AdvisorFailureFallsBack(t *testing.T) {
	adv := &mockAdvisor{err: errors.New("建议服务超时")}
	svc, repos := setupTestGenerationService(adv)
	seedGenerationData(repos)

	resp, err := svc.Generate(context.Background(), "school-1", genReq([]string{"class-1"}, []int{1}), "op-1")
	if err != nil {
		t.Fatalf("建议服务失败不应中断排课: %v", err)
	}
	r := resp.Results[0]
	if !r.Success {
		t.Fatalf("排课应降级成功, 错误: %s", r.Error)
	}
	if r.CreatedSlots != 2 {
		t.Errorf("创建槽位数 = %d, 期望 2", r.CreatedSlots)
	}
	if r.Explanation != "" {
		t.Error("降级时不应有建议说明")
	}
}

// 建议引用未配置的科目时整体作废，退回配置顺序
func TestGenerationService_Generate_InvalidAdvisorOrderDiscarded(t *testing.T) {
	adv := &mockAdvisor{suggestion: &advisor.Suggestion{
		SubjectOrder: []string{"subject-999", "subject-1"},
	}}
	svc, repos := setupTestGenerationService(adv)
	seedGenerationData(repos)

	if _, err := svc.Generate(context.Background(), "school-1", genReq([]string{"class-1"}, []int{1}), "op-1"); err != nil {
		t.Fatalf("Generate 失败: %v", err)
	}

	slots, _ := repos.slot.List(context.Background(), "school-1", repository.SlotFilter{})
	if slots[0].SubjectID != "subject-1" {
		t.Errorf("作废建议后第一节应按配置顺序排 subject-1, 实际 %s", slots[0].SubjectID)
	}
}

// 单个班级失败不影响其他班级
func TestGenerationService_Generate_PartialFailureIsolated(t *testing.T) {
	svc, repos := setupTestGenerationService(nil)
	seedGenerationData(repos)
	// class-2 没有科目配置，class-999 不存在

	resp, err := svc.Generate(context.Background(), "school-1",
		genReq([]string{"class-999", "class-2", "class-1"}, []int{1}), "op-1")
	if err != nil {
		t.Fatalf("Generate 失败: %v", err)
	}
	if len(resp.Results) != 3 {
		t.Fatalf("结果数 = %d, 期望 3", len(resp.Results))
	}
	if resp.Results[0].Success {
		t.Error("不存在的班级应失败")
	}
	if resp.Results[1].Success {
		t.Error("无科目配置的班级应失败")
	}
	if !resp.Results[2].Success {
		t.Errorf("正常班级不应受影响, 错误: %s", resp.Results[2].Error)
	}
	if resp.Results[2].CreatedSlots != 2 {
		t.Errorf("正常班级创建槽位数 = %d, 期望 2", resp.Results[2].CreatedSlots)
	}
}

// 已有手动槽位占用的时段被跳过，不覆盖
func TestGenerationService_Generate_RespectsExistingSlots(t *testing.T) {
	svc, repos := setupTestGenerationService(nil)
	seedGenerationData(repos)
	repos.slot.slots["manual-1"] = &model.TimetableSlot{
		SlotID: "manual-1", SchoolID: "school-1", ClassID: "class-1",
		SubjectID: "subject-1", DayOfWeek: 1, StartTime: "08:00", EndTime: "08:50",
		Source: model.SlotSourceManual,
	}

	resp, err := svc.Generate(context.Background(), "school-1", genReq([]string{"class-1"}, []int{1}), "op-1")
	if err != nil {
		t.Fatalf("Generate 失败: %v", err)
	}
	r := resp.Results[0]
	if !r.Success {
		t.Fatalf("排课应成功, 错误: %s", r.Error)
	}
	// 08:00-09:00 与手动槽位冲突被跳过，只剩 09:00-10:00
	if r.CreatedSlots != 1 {
		t.Errorf("创建槽位数 = %d, 期望 1（冲突时段被跳过）", r.CreatedSlots)
	}
	if _, ok := repos.slot.slots["manual-1"]; !ok {
		t.Error("手动槽位不应被覆盖")
	}
}

// 同一教师任教的两个班级顺序生成时互相避让
func TestGenerationService_Generate_TeacherConflictAcrossClasses(t *testing.T) {
	svc, repos := setupTestGenerationService(nil)
	seedGenerationData(repos)
	// 两个班级都只配数学，且由同一位王老师任教
	repos.classSubject.subjects = []model.ClassSubject{
		{
			ClassSubjectID: "cs-1", SchoolID: "school-1", ClassID: "class-1",
			SubjectID: "subject-1", TeacherID: strPtr("teacher-1"), WeeklyHours: 4,
		},
		{
			ClassSubjectID: "cs-3", SchoolID: "school-1", ClassID: "class-2",
			SubjectID: "subject-1", TeacherID: strPtr("teacher-1"), WeeklyHours: 4,
		},
	}

	resp, err := svc.Generate(context.Background(), "school-1",
		genReq([]string{"class-1", "class-2"}, []int{1}), "op-1")
	if err != nil {
		t.Fatalf("Generate 失败: %v", err)
	}
	// class-1 占满 2 节后，class-2 的王老师在这两个时段全部冲突
	if resp.Results[0].CreatedSlots != 2 {
		t.Errorf("class-1 创建槽位数 = %d, 期望 2", resp.Results[0].CreatedSlots)
	}
	if resp.Results[1].CreatedSlots != 0 {
		t.Errorf("class-2 创建槽位数 = %d, 期望 0（教师时段全部冲突）", resp.Results[1].CreatedSlots)
	}
}

// teacher_ids 过滤：只使用指定教师的科目配置
func TestGenerationService_Generate_TeacherFilter(t *testing.T) {
	svc, repos := setupTestGenerationService(nil)
	seedGenerationData(repos)

	req := genReq([]string{"class-1"}, []int{1})
	req.TeacherIDs = []string{"teacher-1"}
	resp, err := svc.Generate(context.Background(), "school-1", req, "op-1")
	if err != nil {
		t.Fatalf("Generate 失败: %v", err)
	}
	if !resp.Results[0].Success {
		t.Fatalf("排课应成功, 错误: %s", resp.Results[0].Error)
	}

	slots, _ := repos.slot.List(context.Background(), "school-1", repository.SlotFilter{})
	for _, s := range slots {
		if s.SubjectID != "subject-1" {
			t.Errorf("过滤后只应排 subject-1, 实际出现 %s", s.SubjectID)
		}
	}
}

func TestGenerationService_Generate_InvalidRequest(t *testing.T) {
	svc, repos := setupTestGenerationService(nil)
	seedGenerationData(repos)

	cases := []struct {
		name   string
		mutate func(*dto.GenerateTimetableRequest)
	}{
		{"班级列表为空", func(r *dto.GenerateTimetableRequest) { r.ClassIDs = nil }},
		{"星期列表为空", func(r *dto.GenerateTimetableRequest) { r.DaysOfWeek = nil }},
		{"单节时长过短", func(r *dto.GenerateTimetableRequest) { r.SessionDuration = 10 }},
		{"单节时长过长", func(r *dto.GenerateTimetableRequest) { r.SessionDuration = 180 }},
		{"时间窗不足一节", func(r *dto.GenerateTimetableRequest) { r.EndTime = "08:30" }},
		{"时间格式错误", func(r *dto.GenerateTimetableRequest) { r.StartTime = "八点" }},
		{"星期越界", func(r *dto.GenerateTimetableRequest) { r.DaysOfWeek = []int{0} }},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			req := genReq([]string{"class-1"}, []int{1})
			c.mutate(req)
			_, err := svc.Generate(context.Background(), "school-1", req, "op-1")
			if !errors.Is(err, ErrInvalidGenerationRequest) {
				t.Errorf("应返回 ErrInvalidGenerationRequest, 实际: %v", err)
			}
		})
	}

	// 参数不合法时不应写入任何槽位
	if len(repos.slot.slots) != 0 {
		t.Error("校验失败不应写入槽位")
	}
}

// 教师过滤返回新切片，不改写仓储返回的数据
func TestFilterSubjectsByTeacher_CopiesInput(t *testing.T) {
	subjects := []model.ClassSubject{
		{ClassSubjectID: "cs-1", SubjectID: "subject-1", TeacherID: strPtr("teacher-1")},
		{ClassSubjectID: "cs-2", SubjectID: "subject-2", TeacherID: strPtr("teacher-2")},
		{ClassSubjectID: "cs-3", SubjectID: "subject-3", TeacherID: nil},
	}

	filtered := filterSubjectsByTeacher(subjects, map[string]bool{"teacher-2": true})
	if len(filtered) != 1 || filtered[0].SubjectID != "subject-2" {
		t.Fatalf("过滤结果数 = %d, 期望仅保留 subject-2", len(filtered))
	}
	if subjects[0].SubjectID != "subject-1" || subjects[1].SubjectID != "subject-2" || subjects[2].SubjectID != "subject-3" {
		t.Error("过滤不应改写原切片")
	}
}

// 批量保存失败只影响当前班级，且失败班级的槽位不会进入后续班级的冲突快照
func TestGenerationService_Generate_BatchCreateFailureIsolated(t *testing.T) {
	svc, repos := setupTestGenerationService(nil)
	seedGenerationData(repos)
	repos.slot.failOps["BatchCreate"] = errors.New("存储故障")

	resp, err := svc.Generate(context.Background(), "school-1", genReq([]string{"class-1"}, []int{1}), "op-1")
	if err != nil {
		t.Fatalf("Generate 失败: %v", err)
	}
	r := resp.Results[0]
	if r.Success {
		t.Error("保存失败的班级应标记失败")
	}
	if r.CreatedSlots != 0 {
		t.Errorf("创建槽位数 = %d, 期望 0", r.CreatedSlots)
	}
}

// ════════════════════════════════════════════════════════════
// validateGenerationRequest 展开逻辑测试
// ════════════════════════════════════════════════════════════

func TestValidateGenerationRequest_SessionExpansion(t *testing.T) {
	req := genReq([]string{"class-1"}, []int{2, 1, 1}) // 含重复天
	days, sessions, err := validateGenerationRequest(req)
	if err != nil {
		t.Fatalf("校验失败: %v", err)
	}
	if len(days) != 2 || days[0] != 1 || days[1] != 2 {
		t.Errorf("天列表 = %v, 期望去重后升序 [1 2]", days)
	}
	if len(sessions) != 2 {
		t.Fatalf("每日节次数 = %d, 期望 2", len(sessions))
	}
	if sessions[0] != [2]string{"08:00", "09:00"} || sessions[1] != [2]string{"09:00", "10:00"} {
		t.Errorf("节次展开 = %v", sessions)
	}
}

// 不足一整节的尾部时间被截断
func TestValidateGenerationRequest_TailTruncated(t *testing.T) {
	req := genReq([]string{"class-1"}, []int{1})
	req.EndTime = "09:50" // 08:00-09:50，60 分钟一节只能排 1 节
	_, sessions, err := validateGenerationRequest(req)
	if err != nil {
		t.Fatalf("校验失败: %v", err)
	}
	if len(sessions) != 1 {
		t.Errorf("每日节次数 = %d, 期望 1（尾部不足一节被截断）", len(sessions))
	}
}
