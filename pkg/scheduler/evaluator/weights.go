// Package evaluator 实现 C2：聚合约束违反、覆盖率偏差、排除违反与工时偏差为
// 一个加权适应度分数。
//
// 沿用教师 constraint.Manager.Evaluate 的"累加惩罚再算分"模式（见 manager.go
// 的 Evaluate/EvaluateAssignment），但把教师那种"每个约束最多扣 100 分"的启发式
// 换成了这份规范固定的加权求和公式；按天覆盖率的统计沿用 pkg/stats/coverage.go
// 的逐日逐类型计数循环，工时偏差沿用 pkg/stats/fairness.go 的按员工统计方式。
package evaluator

// Weights 是评估公式中各项的权重，全部可以按次探测覆盖。
type Weights struct {
	ConstraintViolation float64
	CoverageViolation   float64
	ExclusionViolation  float64
	HoursUnderPerUnit   float64
	HoursOverPerUnit    float64
	MatrixChange        float64
}

// DefaultWeights 返回规范规定的默认权重：硬约束类三项各 10000，矩阵偏差 3，
// 工时不对称惩罚 欠/超 = 15/8。
func DefaultWeights() Weights {
	return Weights{
		ConstraintViolation: 10000,
		CoverageViolation:   10000,
		ExclusionViolation:  10000,
		HoursUnderPerUnit:   15,
		HoursOverPerUnit:    8,
		MatrixChange:        3,
	}
}

// ApplyOverrides 按 OptimizerOptions.Weights 里出现的键覆盖对应字段，未出现的键保持默认。
func (w Weights) ApplyOverrides(overrides map[string]float64) Weights {
	out := w
	for key, v := range overrides {
		switch key {
		case "CONSTRAINT_VIOLATION":
			out.ConstraintViolation = v
		case "COVERAGE_VIOLATION":
			out.CoverageViolation = v
		case "EXCLUSION_VIOLATION":
			out.ExclusionViolation = v
		case "HOURS_UNDER":
			out.HoursUnderPerUnit = v
		case "HOURS_OVER":
			out.HoursOverPerUnit = v
		case "MATRIX_CHANGE":
			out.MatrixChange = v
		}
	}
	return out
}
