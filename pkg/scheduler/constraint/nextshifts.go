package constraint

import "github.com/rotacore/rotacore/pkg/model"

// ValidNextShifts 返回放置在 position 位置后，整条序列在该位置 ±1 范围内没有任何违反的
// 候选班次 id 子集（该范围内已有的违反同样会使候选被排除）。用于指导变异算子；完全被约束死时返回空集，调用方退回均匀随机。
func ValidNextShifts(sequence []string, position int, constraints []model.Constraint, allShiftIDs []string) []string {
	return validNextShifts(sequence, position, constraints, allShiftIDs, false)
}

// ValidNextShiftsCyclic 是 ValidNextShifts 的环形变体：测试窗口在序列两端环绕。
func ValidNextShiftsCyclic(sequence []string, position int, constraints []model.Constraint, allShiftIDs []string) []string {
	return validNextShifts(sequence, position, constraints, allShiftIDs, true)
}

func validNextShifts(sequence []string, position int, constraints []model.Constraint, allShiftIDs []string, cyclic bool) []string {
	n := len(sequence)
	if n == 0 {
		return nil
	}

	var out []string
	for _, candidate := range allShiftIDs {
		trial := append([]string(nil), sequence...)
		trial[position] = candidate

		// 只关心替换后 position 附近是否有违反；不必把整条序列的
		// 其它部分也当作窗口边界重新截断一遍，Validate 本身已经是 O(n) 量级。
		violations := Validate(trial, constraints, cyclic)
		if !anyViolationNear(violations, position, n, cyclic) {
			out = append(out, candidate)
		}
	}
	return out
}

func anyViolationNear(violations []model.Violation, position, n int, cyclic bool) bool {
	for _, v := range violations {
		if withinRadius(v.DayIndex, position, n, cyclic) {
			return true
		}
	}
	return false
}

func withinRadius(day, position, n int, cyclic bool) bool {
	diff := day - position
	if cyclic {
		if diff > n/2 {
			diff -= n
		} else if diff < -n/2 {
			diff += n
		}
	}
	if diff < 0 {
		diff = -diff
	}
	return diff <= 1
}
