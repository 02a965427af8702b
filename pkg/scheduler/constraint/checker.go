// Package constraint 实现七种序列约束规则的校验（C1）。
//
// 教师仓库把每种规则建成一个独立的 struct，实现同一个开放的 Constraint 接口
// (pkg/scheduler/constraint/builtin/*.go)。这里把它收拢成一个封闭的带标签
// 联合体（model.Constraint），Validate 是对标签的一次 match，不再需要为每种
// 规则单独注册一个实现；和教师 builtin/factory.go 里 ShiftRotationPatternConstraint
// 做序列相邻检查的方式一脉相承，只是把"一种序列规则"推广成了"七种"。
package constraint

import (
	"fmt"

	"github.com/rotacore/rotacore/pkg/model"
)

// Validate 校验一条班次序列是否违反给定的约束集合。
//
// cyclic=false 时为线性模式：序列末尾没有后继，不对 wrap 做检查。
// cyclic=true 时把序列当作环：最后一个元素的后继是第一个元素。
// 返回的违反集合与数量不受约束列表顺序影响；列表中的先后顺序则按约束
// 列表的顺序排列（同一约束内部按序列位置排列）。
func Validate(sequence []string, constraints []model.Constraint, cyclic bool) []model.Violation {
	var violations []model.Violation
	for _, c := range constraints {
		if !c.Enabled {
			continue
		}
		violations = append(violations, validateOne(sequence, c, cyclic)...)
	}
	return violations
}

func validateOne(seq []string, c model.Constraint, cyclic bool) []model.Violation {
	switch c.Kind {
	case model.MustFollow:
		return checkFollow(seq, c, cyclic, true)
	case model.CannotFollow:
		return checkFollow(seq, c, cyclic, false)
	case model.MustPrecede:
		return checkPrecede(seq, c, cyclic, true)
	case model.CannotPrecede:
		return checkPrecede(seq, c, cyclic, false)
	case model.MaxConsecutive:
		return checkMaxConsecutive(seq, c, cyclic, true)
	case model.MaxConsecutiveWithout:
		return checkMaxConsecutive(seq, c, cyclic, false)
	case model.MinGap:
		return checkMinGap(seq, c, cyclic)
	default:
		return nil
	}
}

// checkFollow 处理 must_follow / cannot_follow：每个 i 满足 seq[i] matches A 时，
// 检查 seq[i+1] 是否 matches B。
func checkFollow(seq []string, c model.Constraint, cyclic bool, must bool) []model.Violation {
	n := len(seq)
	var out []model.Violation
	for i := 0; i < n; i++ {
		if !cyclic && i == n-1 {
			continue // 线性模式下最后一位没有后继，豁免
		}
		if !model.Matches(seq[i], c.ShiftA) {
			continue
		}
		next := seq[(i+1)%n]
		follows := model.Matches(next, c.ShiftB)
		if must && !follows {
			out = append(out, violation(i, c.ID, fmt.Sprintf("day %d (%s) must be followed by %s, got %s", i, seq[i], c.ShiftB, next)))
		}
		if !must && follows {
			out = append(out, violation(i, c.ID, fmt.Sprintf("day %d (%s) cannot be followed by %s", i, seq[i], c.ShiftB)))
		}
	}
	return out
}

// checkPrecede 处理 must_precede / cannot_precede：seq[i] matches B 时检查 seq[i-1]。
func checkPrecede(seq []string, c model.Constraint, cyclic bool, must bool) []model.Violation {
	n := len(seq)
	var out []model.Violation
	start := 1
	if cyclic {
		start = 0
	}
	for i := start; i < n; i++ {
		if !model.Matches(seq[i], c.ShiftB) {
			continue
		}
		prevIdx := (i - 1 + n) % n
		prev := seq[prevIdx]
		precedes := model.Matches(prev, c.ShiftA)
		if must && !precedes {
			out = append(out, violation(i, c.ID, fmt.Sprintf("day %d (%s) must be preceded by %s, got %s", i, seq[i], c.ShiftA, prev)))
		}
		if !must && precedes {
			out = append(out, violation(i, c.ID, fmt.Sprintf("day %d (%s) cannot be preceded by %s", i, seq[i], c.ShiftA)))
		}
	}
	return out
}

// checkMaxConsecutive 统计匹配（withMatch=true）或不匹配（withMatch=false）的连续游程，
// 超过 c.Days 的部分逐日计为违反。
func checkMaxConsecutive(seq []string, c model.Constraint, cyclic bool, withMatch bool) []model.Violation {
	n := len(seq)
	if n == 0 || c.Days <= 0 {
		return nil
	}
	matchAt := func(i int) bool {
		m := model.Matches(seq[i%n], c.ShiftA)
		if withMatch {
			return m
		}
		return !m
	}

	// 环形模式下把序列复制一份拼接，便于用线性扫描捕捉跨越首尾的游程，
	// 但每个违反只在其"自然"窗口内报告一次，避免重复计数。
	scanLen := n
	if cyclic {
		scanLen = 2 * n
	}

	runStart := -1
	var out []model.Violation
	reported := make(map[int]bool)
	for i := 0; i <= scanLen; i++ {
		matched := i < scanLen && matchAt(i)
		if matched {
			if runStart == -1 {
				runStart = i
			}
		} else {
			if runStart != -1 {
				runLen := i - runStart
				if runLen > c.Days {
					for j := runStart + c.Days; j < i; j++ {
						idx := j % n
						if !reported[idx] {
							reported[idx] = true
							kind := "consecutive"
							if !withMatch {
								kind = "consecutive-without"
							}
							out = append(out, violation(idx, c.ID, fmt.Sprintf("day %d exceeds max %s run of %d for %s", idx, kind, c.Days, c.ShiftA)))
						}
					}
				}
			}
			runStart = -1
		}
	}
	return out
}

// checkMinGap：每个匹配 A 的位置之后的 n 个索引内不得出现 B。
func checkMinGap(seq []string, c model.Constraint, cyclic bool) []model.Violation {
	n := len(seq)
	var out []model.Violation
	for i := 0; i < n; i++ {
		if !model.Matches(seq[i], c.ShiftA) {
			continue
		}
		limit := i + c.Days
		for j := i + 1; j <= limit; j++ {
			var idx int
			if cyclic {
				idx = j % n
			} else {
				if j >= n {
					break
				}
				idx = j
			}
			if model.Matches(seq[idx], c.ShiftB) {
				out = append(out, violation(idx, c.ID, fmt.Sprintf("day %d (%s) falls within min_gap %d of day %d (%s)", idx, seq[idx], c.Days, i, seq[i])))
			}
		}
	}
	return out
}

func violation(day int, constraintID, msg string) model.Violation {
	return model.Violation{DayIndex: day, ConstraintID: constraintID, Message: msg}
}
