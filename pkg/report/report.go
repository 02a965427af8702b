// Package report 实现 C8：从一份已评估的排班表中推导事后统计
// （ScheduleStatistics），供作业结果展示与历史审计使用。
//
// 基尼系数的实现移植自教师 pkg/stats/fairness.go 的
// FairnessAnalyzer.calculateGini：排序后按累积和加权求和的标准算法，这里
// 改用到每名员工的月度实际工时（WorkedHours）序列而不是教师的 AssignmentInfo 时间区间列表，因为
// 本排班模型里一天只有一个班次代码，没有独立的起止时间戳可供教师那种按
// 小时切分的统计方式使用。覆盖率的逐日逐类型计数沿用 pkg/stats/coverage.go
// CoverageAnalyzer.Analyze 的思路，但直接复用 evaluator 已经算过的覆盖
// 违反列表，避免重新扫描一遍排班表。
package report

import (
	"sort"

	"github.com/rotacore/rotacore/pkg/model"
	"github.com/rotacore/rotacore/pkg/scheduler/evaluator"
)

// Summarize 把一次 C2 评估结果压缩成面向展示的统计摘要。
func Summarize(schedule *model.Schedule, eval *evaluator.Result, rules []model.CoverageRule, daysInMonth int) *model.ScheduleStatistics {
	perEmployeeHours := make(map[string]float64, len(eval.PerEmployee))
	hours := make([]float64, 0, len(eval.PerEmployee))
	totalHours := 0.0
	for id, r := range eval.PerEmployee {
		perEmployeeHours[id] = r.WorkedHours
		hours = append(hours, r.WorkedHours)
		totalHours += r.WorkedHours
	}

	totalSlots := len(rules) * daysInMonth
	unfilled := len(eval.CoverageViolations)
	coverageRate := 1.0
	if totalSlots > 0 {
		coverageRate = 1.0 - float64(unfilled)/float64(totalSlots)
	}

	return &model.ScheduleStatistics{
		CoverageRate:     coverageRate,
		FairnessGini:     gini(hours),
		TotalHours:       totalHours,
		PerEmployeeHours: perEmployeeHours,
		UnfilledDays:     unfilled,
	}
}

// gini 计算基尼系数：0 表示完全公平，1 表示完全不公平。
func gini(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	sum := 0.0
	for _, v := range sorted {
		sum += v
	}
	if sum == 0 {
		return 0
	}

	acc := 0.0
	for i, v := range sorted {
		acc += (2*float64(i+1) - float64(n) - 1) * v
	}
	return acc / (float64(n) * sum)
}
