// Package baseline 实现 C3：从矩阵、历史记录和日历确定性地推导出一个月的排班。
//
// 贪心分配部分沿用教师 solver.GreedySolver.Solve 的"先排候选分再按容量贪心分配"
// 模式（getCandidates/employeeHours 式的簿记），互斥交换部分沿用教师
// pkg/swap.SwapEvaluator.simulateSwap 的"交换两个分配再复核"模式，这里把它从
// 用户发起的换班请求改造成自动化的排除冲突修复。
package baseline

import (
	"sort"

	"github.com/rotacore/rotacore/pkg/model"
)

// rowCandidate 是某员工在某矩阵某一行上的候选分配方案
type rowCandidate struct {
	Row              int
	Offset           int
	Score            float64
	HasHistory       bool
	TargetNextOffset int
}

// scoreRow 计算员工历史与矩阵某一行在给定 offset 下的连续性分数：
// 最近 k = min(len(history), 28) 天里，历史班次与蛇形序列预测值相同的比例。
func scoreRow(history []string, matrix *model.Matrix, row, offset int) rowCandidate {
	k := len(history)
	if k > 28 {
		k = 28
	}
	if k == 0 {
		return rowCandidate{Row: row, Offset: offset, Score: 0, HasHistory: false}
	}

	rc := matrix.SnakeLength()
	matchCount := 0
	tailStart := len(history) - k
	for i := 0; i < k; i++ {
		histDay := history[tailStart+i]
		predictedIndex := matrix.CellIndex(row, offset) + i
		predicted := matrix.At(predictedIndex % rc)
		if model.Matches(histDay, predicted) || model.Matches(predicted, histDay) {
			matchCount++
		}
	}
	score := float64(matchCount) / float64(k)
	targetNext := (matrix.CellIndex(row, offset) + k) % rc
	return rowCandidate{Row: row, Offset: offset, Score: score, HasHistory: true, TargetNextOffset: targetNext}
}

// bestRowCandidate 在矩阵所有行 x 全部偏移中选出连续性分数最高的候选
func bestRowCandidate(history []string, matrix *model.Matrix) rowCandidate {
	best := rowCandidate{Score: -1}
	c := matrix.ColCount()
	for r := 0; r < matrix.RowCount(); r++ {
		for o := 0; o < c; o++ {
			cand := scoreRow(history, matrix, r, o)
			if cand.Score > best.Score {
				best = cand
			}
		}
	}
	return best
}

// rankedRows 为矩阵的每一行取其最优偏移对应的候选，按分数降序排列，
// 供贪心分配阶段按偏好顺序搜索仍有剩余容量的行。
func rankedRows(history []string, matrix *model.Matrix) []rowCandidate {
	c := matrix.ColCount()
	out := make([]rowCandidate, 0, matrix.RowCount())
	for r := 0; r < matrix.RowCount(); r++ {
		best := rowCandidate{Row: r, Score: -1}
		for o := 0; o < c; o++ {
			cand := scoreRow(history, matrix, r, o)
			if cand.Score > best.Score {
				best = cand
			}
		}
		out = append(out, best)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

// rankedRowsWithPhase 与 rankedRows 相同，但只考虑 TargetNextOffset%7 等于
// requiredPhase 的偏移；用于全局相位同步胜出后的强制重分配。
func rankedRowsWithPhase(history []string, matrix *model.Matrix, requiredPhase int) []rowCandidate {
	c := matrix.ColCount()
	out := make([]rowCandidate, 0, matrix.RowCount())
	for r := 0; r < matrix.RowCount(); r++ {
		best := rowCandidate{Row: r, Score: -1}
		for o := 0; o < c; o++ {
			cand := scoreRow(history, matrix, r, o)
			if cand.TargetNextOffset%7 != requiredPhase {
				continue
			}
			if cand.Score > best.Score {
				best = cand
			}
		}
		if best.Score >= 0 {
			out = append(out, best)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}
