package model

import "strings"

// ShiftType 班次定义：短代码 + 展示用时长
//
// Rest/Post-Night 等无工时班次的 DurationMinutes 可以为 0（IsZeroHour）。
type ShiftType struct {
	ID              string `json:"id"`
	Code            string `json:"code"`
	Name            string `json:"name"`
	DurationMinutes int    `json:"duration_minutes"`
	IsZeroHour      bool   `json:"is_zero_hour"`
}

// DurationHours 返回班次时长（小时）
func (s ShiftType) DurationHours() float64 {
	return float64(s.DurationMinutes) / 60.0
}

// Matches 检查某个班次 id 是否与目标 id 匹配。
//
// 支持变体前缀约定：id 本身相等，或者 id 形如 "<targetID>_<suffix>"。
// 约束、覆盖率、工时、矩阵偏差等所有判等逻辑都必须经过这个函数，
// 不得各自重新实现前缀匹配，否则变体代码在不同模块里会出现语义漂移。
func Matches(id, targetID string) bool {
	if id == targetID {
		return true
	}
	return strings.HasPrefix(id, targetID+"_")
}

// MatchesAny 检查 id 是否匹配目标集合中的任意一个
func MatchesAny(id string, targetIDs []string) bool {
	for _, t := range targetIDs {
		if Matches(id, t) {
			return true
		}
	}
	return false
}

// ShiftSet 是班次 id 的集合，提供常用的集合运算
type ShiftSet map[string]struct{}

// NewShiftSet 从 id 列表构造集合
func NewShiftSet(ids ...string) ShiftSet {
	s := make(ShiftSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Contains 检查集合中是否存在与 id 匹配的元素（遵循变体前缀约定）
func (s ShiftSet) Contains(id string) bool {
	for member := range s {
		if Matches(id, member) {
			return true
		}
	}
	return false
}

// ToSlice 返回集合元素的切片（顺序不保证）
func (s ShiftSet) ToSlice() []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	return out
}
