package service

import (
	"fmt"

	"smart-campus/backend/internal/model"
)

// ═══════════════════════════════════════════
// 冲突检测器
//
// 纯函数实现，不访问数据库：调用方负责提供当天的槽位快照。
// 冲突判定优先级固定为 班级 > 教师 > 教室，
// 多种冲突同时存在时只报告优先级最高的一种
// ═══════════════════════════════════════════

// ConflictReason 冲突类型
type ConflictReason string

const (
	ConflictClassOverlap   ConflictReason = "class_overlap"   // 班级同一时段已有课
	ConflictTeacherOverlap ConflictReason = "teacher_overlap" // 教师同一时段已有课
	ConflictRoomOverlap    ConflictReason = "room_overlap"    // 教室同一时段已被占用
)

// SlotConflict 一次冲突判定的结果
type SlotConflict struct {
	Reason ConflictReason
	Slot   *model.TimetableSlot // 与候选槽位冲突的已有槽位
}

// parseClockMinutes 解析 "HH:MM" 为自零点起的分钟数
func parseClockMinutes(s string) (int, error) {
	var hour, minute int
	if _, err := fmt.Sscanf(s, "%2d:%2d", &hour, &minute); err != nil || len(s) != 5 || s[2] != ':' {
		return 0, fmt.Errorf("时间格式不合法（应为 HH:MM）: %q", s)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("时间超出范围: %q", s)
	}
	return hour*60 + minute, nil
}

// validateClockRange 校验 "HH:MM" 区间格式且 start < end
func validateClockRange(start, end string) error {
	s, err := parseClockMinutes(start)
	if err != nil {
		return err
	}
	e, err := parseClockMinutes(end)
	if err != nil {
		return err
	}
	if s >= e {
		return fmt.Errorf("开始时间必须早于结束时间: %s >= %s", start, end)
	}
	return nil
}

// timesOverlap 判断两个半开区间 [startA, endA) 与 [startB, endB) 是否相交
// 时间为零填充的 "HH:MM"，字典序等价于时间序；首尾相接不算冲突
func timesOverlap(startA, endA, startB, endB string) bool {
	return startA < endB && startB < endA
}

// CheckSlotConflict 将候选槽位与当天已有槽位逐一比对
// 无冲突返回 nil。existing 中与候选不同天的槽位会被跳过，
// SlotID 相同的槽位视为自身也被跳过
func CheckSlotConflict(candidate *model.TimetableSlot, existing []model.TimetableSlot) *SlotConflict {
	// 班级冲突优先
	for i := range existing {
		other := &existing[i]
		if !overlapsCandidate(candidate, other) {
			continue
		}
		if other.ClassID == candidate.ClassID {
			return &SlotConflict{Reason: ConflictClassOverlap, Slot: other}
		}
	}

	// 其次教师冲突；任一方未指派教师（自习）不参与判定
	if candidate.TeacherID != nil {
		for i := range existing {
			other := &existing[i]
			if !overlapsCandidate(candidate, other) {
				continue
			}
			if other.TeacherID != nil && *other.TeacherID == *candidate.TeacherID {
				return &SlotConflict{Reason: ConflictTeacherOverlap, Slot: other}
			}
		}
	}

	// 最后教室冲突；任一方未填教室不参与判定
	if candidate.RoomNumber != nil && *candidate.RoomNumber != "" {
		for i := range existing {
			other := &existing[i]
			if !overlapsCandidate(candidate, other) {
				continue
			}
			if other.RoomNumber != nil && *other.RoomNumber == *candidate.RoomNumber {
				return &SlotConflict{Reason: ConflictRoomOverlap, Slot: other}
			}
		}
	}

	return nil
}

// overlapsCandidate 判断两个槽位是否进入时段比对：同天、非自身、时段相交
func overlapsCandidate(candidate, other *model.TimetableSlot) bool {
	if other.DayOfWeek != candidate.DayOfWeek {
		return false
	}
	if candidate.SlotID != "" && other.SlotID == candidate.SlotID {
		return false
	}
	return timesOverlap(candidate.StartTime, candidate.EndTime, other.StartTime, other.EndTime)
}
