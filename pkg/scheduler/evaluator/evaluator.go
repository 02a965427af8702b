package evaluator

import (
	"github.com/rotacore/rotacore/pkg/model"
	"github.com/rotacore/rotacore/pkg/scheduler/constraint"
)

// CoverageViolation 描述某一天某条覆盖规则的实际值与要求值之间的偏差
type CoverageViolation struct {
	Day        int    `json:"day"`
	RuleID     string `json:"rule_id"`
	Required   int    `json:"required"`
	Actual     int    `json:"actual"`
	Deviation  int    `json:"deviation"`
	Over       bool   `json:"over"`
}

// EmployeeResult 是单个员工的评估明细
type EmployeeResult struct {
	ConstraintViolations int     `json:"constraint_violations"`
	ExclusionViolations  int     `json:"exclusion_violations"`
	WorkedHours          float64 `json:"worked_hours"`
	ExpectedHours        float64 `json:"expected_hours"`
	HoursDeviation       float64 `json:"hours_deviation"` // 正=超工时，负=欠工时
	MatrixDeviation      int     `json:"matrix_deviation"`
}

// Result 是一次评估的完整输出
type Result struct {
	Fitness           float64                   `json:"fitness"`
	IsValid           bool                      `json:"is_valid"`
	PerEmployee       map[string]EmployeeResult `json:"per_employee"`
	CoverageViolations []CoverageViolation      `json:"coverage_violations"`
}

// Input 汇总一次评估所需的全部只读配置
type Input struct {
	Employees     []model.Employee
	ShiftTypes    []model.ShiftType
	CoverageRules []model.CoverageRule
	Constraints   []model.Constraint
	Year, Month   int
	Baseline      *model.Schedule // 可为空；非空时启用矩阵偏差计分
	Weights       Weights
}

// Evaluate 对一份排班表打分（C2）。是 (schedule, config) 的纯函数：相同输入
// 重复调用返回完全相同的输出，不依赖任何隐藏状态。
func Evaluate(schedule *model.Schedule, in Input) *Result {
	daysInMonth := model.DaysInMonth(in.Year, in.Month)

	perEmp := make(map[string]EmployeeResult, len(in.Employees))

	totalCV, totalEX, totalMD := 0, 0, 0
	var hoursPenalty float64

	for _, emp := range in.Employees {
		shifts := schedule.Shifts[emp.ID]

		violations := constraint.Validate(shifts, in.Constraints, false)
		cv := len(violations)

		ex := 0
		for _, s := range shifts {
			if emp.IsExcluded(s) {
				ex++
			}
		}

		worked := 0.0
		for _, s := range shifts {
			worked += shiftHours(s, in.ShiftTypes)
		}
		expected := emp.ExpectedHours(in.Year, in.Month)
		deviation := worked - expected
		if deviation < 0 {
			hoursPenalty += -deviation * in.Weights.HoursUnderPerUnit
		} else {
			hoursPenalty += deviation * in.Weights.HoursOverPerUnit
		}

		md := 0
		if in.Baseline != nil {
			base := in.Baseline.Shifts[emp.ID]
			for i := 0; i < len(shifts) && i < len(base); i++ {
				if !model.Matches(shifts[i], base[i]) {
					md++
				}
			}
		}

		totalCV += cv
		totalEX += ex
		totalMD += md

		perEmp[emp.ID] = EmployeeResult{
			ConstraintViolations: cv,
			ExclusionViolations:  ex,
			WorkedHours:          worked,
			ExpectedHours:        expected,
			HoursDeviation:       deviation,
			MatrixDeviation:      md,
		}
	}

	coverageViolations := evaluateCoverage(schedule, in.CoverageRules, daysInMonth)

	fitness := float64(totalCV)*in.Weights.ConstraintViolation +
		float64(len(coverageViolations))*in.Weights.CoverageViolation +
		float64(totalEX)*in.Weights.ExclusionViolation +
		hoursPenalty +
		float64(totalMD)*in.Weights.MatrixChange

	return &Result{
		Fitness:            fitness,
		IsValid:            totalCV == 0 && len(coverageViolations) == 0 && totalEX == 0,
		PerEmployee:        perEmp,
		CoverageViolations: coverageViolations,
	}
}

// evaluateCoverage 按天、按规则统计实际分配数与要求数之间的精确匹配偏差。
//
// 沿用教师 pkg/stats/coverage.go CoverageAnalyzer.Analyze 的逐日逐类型计数循环；
// 与教师不同的是这里的匹配是精确相等（见 DESIGN.md 未决问题记录），多于或少于
// 要求数都计为一条违反。
func evaluateCoverage(schedule *model.Schedule, rules []model.CoverageRule, daysInMonth int) []CoverageViolation {
	var out []CoverageViolation
	for _, rule := range rules {
		for day := 0; day < daysInMonth; day++ {
			actual := 0
			for _, shifts := range schedule.Shifts {
				if day >= len(shifts) {
					continue
				}
				if model.MatchesAny(shifts[day], rule.ShiftIDs) {
					actual++
				}
			}
			if actual != rule.Min {
				out = append(out, CoverageViolation{
					Day:       day,
					RuleID:    rule.ID,
					Required:  rule.Min,
					Actual:    actual,
					Deviation: actual - rule.Min,
					Over:      actual > rule.Min,
				})
			}
		}
	}
	return out
}

// shiftHours 查找 id 对应班次的时长，遵循变体前缀匹配约定
func shiftHours(id string, shiftTypes []model.ShiftType) float64 {
	for _, st := range shiftTypes {
		if model.Matches(id, st.ID) {
			return st.DurationHours()
		}
	}
	return 0
}
