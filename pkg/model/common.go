// Package model 定义排班引擎的核心数据模型
package model

import "time"

// Weekday 周一为一周的第0天，贯穿排班引擎的全部日历换算
type Weekday int

const (
	Monday Weekday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

// DaysInMonth 返回 (year, month) 的天数，month 为 1-12
func DaysInMonth(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// FirstWeekdayIndex 返回该月第一天对应的周一基准索引（0=周一...6=周日）
func FirstWeekdayIndex(year, month int) int {
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	// time.Weekday: Sunday=0 ... Saturday=6，换算为 Monday=0 基准
	return (int(first.Weekday()) + 6) % 7
}

// WeeksInMonth 返回该月按 7 天折算的周数（允许为小数）
func WeeksInMonth(year, month int) float64 {
	return float64(DaysInMonth(year, month)) / 7.0
}
