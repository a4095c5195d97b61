package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"smart-campus/backend/internal/model"
	"smart-campus/backend/internal/repository"
)

// ── 导出模块业务错误 ──

var (
	ErrExportNoSlots      = errors.New("该班级暂无课表")
	ErrExportGenerateFail = errors.New("生成导出文件失败")
)

// ExportService 课表导出业务接口
//
// 设计说明：
//   - Excel 格式：行 = 时间段（按开始时间排序），列 = 周一 ~ 周日
//   - ICS 格式：每个槽位导出为一条 FREQ=WEEKLY 的重复事件，
//     DTSTART 取学校时区内该星期的下一次出现
//   - 导出以 bytes.Buffer 返回，由 Handler 层设置响应头后写入 Response
type ExportService interface {
	// ExportClassExcel 导出班级周课表为 Excel
	ExportClassExcel(ctx context.Context, schoolID, classID string) (*bytes.Buffer, string, error)
	// ExportClassICS 导出班级周课表为 iCalendar 订阅
	ExportClassICS(ctx context.Context, schoolID, classID string) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

// loadClassSlots 加载班级与其全部课表槽位
func (s *exportService) loadClassSlots(ctx context.Context, schoolID, classID string) (*model.Class, []model.TimetableSlot, error) {
	class, err := s.repo.Class.GetByID(ctx, schoolID, classID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrClassNotFound
		}
		s.logger.Error("查询班级失败", zap.Error(err))
		return nil, nil, err
	}

	slots, err := s.repo.Slot.List(ctx, schoolID, repository.SlotFilter{ClassID: classID})
	if err != nil {
		s.logger.Error("查询课表槽位失败", zap.Error(err))
		return nil, nil, err
	}
	if len(slots) == 0 {
		return nil, nil, ErrExportNoSlots
	}
	return class, slots, nil
}

// ═══════════════════════════════════════════════════════════
// ExportClassExcel — 导出班级周课表为 Excel
// ═══════════════════════════════════════════════════════════

var dayNames = map[int]string{
	1: "周一", 2: "周二", 3: "周三", 4: "周四", 5: "周五", 6: "周六", 7: "周日",
}

func (s *exportService) ExportClassExcel(ctx context.Context, schoolID, classID string) (*bytes.Buffer, string, error) {
	class, slots, err := s.loadClassSlots(ctx, schoolID, classID)
	if err != nil {
		return nil, "", err
	}

	// 行 = 唯一时间段，列 = 出现过的星期
	type timeRange struct {
		start string
		end   string
	}

	rangeSeen := make(map[timeRange]bool)
	daySeen := make(map[int]bool)
	cellIndex := make(map[string]string) // "dow:start" → 单元格文本

	for i := range slots {
		slot := &slots[i]
		rangeSeen[timeRange{slot.StartTime, slot.EndTime}] = true
		daySeen[slot.DayOfWeek] = true
		cellIndex[fmt.Sprintf("%d:%s", slot.DayOfWeek, slot.StartTime)] = slotCellText(slot)
	}

	var ranges []timeRange
	for r := range rangeSeen {
		ranges = append(ranges, r)
	}
	sort.Slice(ranges, func(i, j int) bool { return ranges[i].start < ranges[j].start })

	var days []int
	for d := range daySeen {
		days = append(days, d)
	}
	sort.Ints(days)

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "课程表"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	f.SetColWidth(sheetName, "A", "A", 14)
	for i := range days {
		col, _ := excelize.ColumnNumberToName(2 + i)
		f.SetColWidth(sheetName, col, col, 22)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// 标题行
	f.SetCellValue(sheetName, "A1", fmt.Sprintf("%s — 课程表", class.Name))
	f.MergeCell(sheetName, "A1", fmt.Sprintf("%s1", colName(len(days))))
	titleCell, _ := excelize.CoordinatesToCellName(1, 1)
	f.SetCellStyle(sheetName, titleCell, titleCell, headerStyle)

	// 表头
	row := 2
	f.SetCellValue(sheetName, cell("A", row), "时间")
	for i, d := range days {
		f.SetCellValue(sheetName, cell(colName(1+i), row), dayNames[d])
	}

	// 数据行
	row = 3
	for _, r := range ranges {
		f.SetCellValue(sheetName, cell("A", row), fmt.Sprintf("%s-%s", r.start, r.end))
		for i, d := range days {
			key := fmt.Sprintf("%d:%s", d, r.start)
			if text, ok := cellIndex[key]; ok {
				f.SetCellValue(sheetName, cell(colName(1+i), row), text)
			} else {
				f.SetCellValue(sheetName, cell(colName(1+i), row), "-")
			}
		}
		row++
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("课程表_%s.xlsx", class.Name)
	return buf, filename, nil
}

// slotCellText 单元格文本：科目名 + 教师 + 教室
func slotCellText(slot *model.TimetableSlot) string {
	text := "未知科目"
	if slot.Subject != nil {
		text = slot.Subject.Name
	}
	if slot.Teacher != nil {
		text += " / " + slot.Teacher.Name
	}
	if slot.RoomNumber != nil && *slot.RoomNumber != "" {
		text += " @" + *slot.RoomNumber
	}
	return text
}

// ═══════════════════════════════════════════════════════════
// ExportClassICS — 导出班级周课表为 iCalendar 订阅
// ═══════════════════════════════════════════════════════════

// day_of_week → RRULE BYDAY 取值
var icsByDay = map[int]string{
	1: "MO", 2: "TU", 3: "WE", 4: "TH", 5: "FR", 6: "SA", 7: "SU",
}

func (s *exportService) ExportClassICS(ctx context.Context, schoolID, classID string) (*bytes.Buffer, string, error) {
	class, slots, err := s.loadClassSlots(ctx, schoolID, classID)
	if err != nil {
		return nil, "", err
	}

	// 事件时间落在学校时区；时区未知时退回服务器本地时区
	loc := time.Local
	if school, err := s.repo.School.GetByID(ctx, schoolID); err == nil {
		if l, err := time.LoadLocation(school.Timezone); err == nil {
			loc = l
		}
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//smart-campus//timetable//CN")

	now := time.Now().In(loc)
	for i := range slots {
		slot := &slots[i]

		startMin, err := parseClockMinutes(slot.StartTime)
		if err != nil {
			continue
		}
		endMin, err := parseClockMinutes(slot.EndTime)
		if err != nil {
			continue
		}

		first := nextWeekday(now, slot.DayOfWeek)
		dtStart := time.Date(first.Year(), first.Month(), first.Day(), startMin/60, startMin%60, 0, 0, loc)
		dtEnd := time.Date(first.Year(), first.Month(), first.Day(), endMin/60, endMin%60, 0, 0, loc)

		evt := cal.AddEvent(fmt.Sprintf("%s@smart-campus", slot.SlotID))
		evt.SetCreatedTime(now)
		evt.SetDtStampTime(now)
		evt.SetStartAt(dtStart)
		evt.SetEndAt(dtEnd)
		evt.SetSummary(slotSummary(slot))
		if slot.RoomNumber != nil && *slot.RoomNumber != "" {
			evt.SetLocation(*slot.RoomNumber)
		}
		evt.AddProperty(ics.ComponentPropertyRrule, "FREQ=WEEKLY;BYDAY="+icsByDay[slot.DayOfWeek])
	}

	buf := bytes.NewBufferString(cal.Serialize())
	filename := fmt.Sprintf("课程表_%s.ics", class.Name)
	return buf, filename, nil
}

// slotSummary 事件标题：科目名（含教师名）
func slotSummary(slot *model.TimetableSlot) string {
	summary := "课程"
	if slot.Subject != nil {
		summary = slot.Subject.Name
	}
	if slot.Teacher != nil {
		summary += "（" + slot.Teacher.Name + "）"
	}
	return summary
}

// nextWeekday 返回 from 之后（含当天）最近的指定星期的日期
// dayOfWeek: 1=周一 … 7=周日
func nextWeekday(from time.Time, dayOfWeek int) time.Time {
	target := time.Weekday(dayOfWeek % 7) // 7(周日) → time.Sunday(0)
	diff := (int(target) - int(from.Weekday()) + 7) % 7
	return from.AddDate(0, 0, diff)
}

// ── 辅助函数 ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
