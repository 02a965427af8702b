// Package matrixga 实现 C5：演化一个或全部周期矩阵，每次适应度探测都
// 经由一次嵌套评估——先用 baseline 包把矩阵展开成月度排班，再用 evaluator
// 包给那份排班打分。矩阵本身的好坏完全取决于它产出的那个月有多好。
//
// GA 外壳与 C4 共用同一种"config/evaluate/evolve"分离形态，源自教师
// optimizer 包；嵌套评估这一层在教师代码里没有直接对应物——教师的优化器
// 从不把第二个求解器当作适应度的一部分。
package matrixga

import (
	"math/rand"

	"github.com/rotacore/rotacore/pkg/model"
	"github.com/rotacore/rotacore/pkg/scheduler/constraint"
)

// Individual 是一组正在演化的矩阵：单矩阵模式下只含一个条目，联合模式下含全部。
type Individual struct {
	Matrices map[string]*model.Matrix
}

// Clone 深拷贝个体
func (ind *Individual) Clone() *Individual {
	out := &Individual{Matrices: make(map[string]*model.Matrix, len(ind.Matrices))}
	for id, m := range ind.Matrices {
		out.Matrices[id] = m.Clone()
	}
	return out
}

// followerMap 缓存 must_follow 约束：shift id -> 必须紧随其后的 shift id
func followerMap(constraints []model.Constraint) map[string]string {
	out := make(map[string]string)
	for _, c := range constraints {
		if c.Enabled && c.Kind == model.MustFollow {
			out[c.ShiftA] = c.ShiftB
		}
	}
	return out
}

// crossoverRowWise 对每个矩阵逐行做均匀交叉：每个子代行整体来自父代 A 或 B
func crossoverRowWise(a, b *Individual, rng *rand.Rand) *Individual {
	out := &Individual{Matrices: make(map[string]*model.Matrix, len(a.Matrices))}
	for id, ma := range a.Matrices {
		mb := b.Matrices[id]
		child := ma.Clone()
		for r := 0; r < child.RowCount(); r++ {
			if rng.Float64() < 0.5 && r < mb.RowCount() {
				copy(child.Rows[r], mb.Rows[r])
			}
		}
		out.Matrices[id] = child
	}
	return out
}

// mutateCells 对每一行以概率 rate 翻转 1-2 个随机格，98% 的情况下借助
// ValidNextShiftsCyclic 偏向约束兼容的选择，2% 的概率绕过偏置以逃离局部最优。
//
// 同时做"智能 follower 插入"：当某格被写入一个会强制 follower 的班次时，
// 立即把 follower 写进蛇形序列的下一格。不做删除：被覆盖的旧班次原先带来的
// follower 仍留在下一格。
func mutateCells(m *model.Matrix, allowed []string, constraints []model.Constraint, followers map[string]string, rate float64, rng *rand.Rand) {
	c := m.ColCount()
	for r := 0; r < m.RowCount(); r++ {
		if rng.Float64() >= rate {
			continue
		}
		flips := 1
		if rng.Float64() < 0.5 {
			flips = 2
		}
		for f := 0; f < flips; f++ {
			col := rng.Intn(c)
			idx := m.CellIndex(r, col)
			row := append([]string(nil), m.Rows[r]...)

			var candidate string
			if rng.Float64() < 0.98 {
				options := constraint.ValidNextShiftsCyclic(row, col, constraints, allowed)
				if len(options) > 0 {
					candidate = options[rng.Intn(len(options))]
				}
			}
			if candidate == "" {
				candidate = allowed[rng.Intn(len(allowed))]
			}

			m.SetAt(idx, candidate)
			if follower, ok := followers[candidate]; ok {
				m.SetAt(idx+1, follower)
			}
		}
	}
}

// blockSwap 交换矩阵蛇形序列上的两个单元；若任一单元的班次强制 follower，
// 连带交换紧随其后的那一格，以保持 follower 关系。
func blockSwap(m *model.Matrix, followers map[string]string, rng *rand.Rand) {
	n := m.SnakeLength()
	if n < 2 {
		return
	}
	i, j := rng.Intn(n), rng.Intn(n)
	if i == j {
		return
	}
	vi, vj := m.At(i), m.At(j)
	m.SetAt(i, vj)
	m.SetAt(j, vi)

	_, okI := followers[vi]
	_, okJ := followers[vj]
	if okI || okJ {
		a, b := m.At(i+1), m.At(j+1)
		m.SetAt(i+1, b)
		m.SetAt(j+1, a)
	}
}

// rotateRow 把一行整体循环移动 k 个位置（k 在 [1, C-1] 之间均匀抽取）
func rotateRow(m *model.Matrix, row int, rng *rand.Rand) {
	c := m.ColCount()
	if c < 2 {
		return
	}
	k := 1 + rng.Intn(c-1)
	original := append([]string(nil), m.Rows[row]...)
	for col := 0; col < c; col++ {
		m.Rows[row][(col+k)%c] = original[col]
	}
}

// jointRowShuffle 在联合模式下，以概率 rate 尝试把两个不同矩阵里维度相同的
// 整行互换，前提是每一行的全部班次在对方矩阵也被允许。
func jointRowShuffle(ind *Individual, allowedByMatrix map[string][]string, rate float64, rng *rand.Rand) {
	ids := make([]string, 0, len(ind.Matrices))
	for id := range ind.Matrices {
		ids = append(ids, id)
	}
	if len(ids) < 2 || rng.Float64() >= rate {
		return
	}
	ma := ind.Matrices[ids[rng.Intn(len(ids))]]
	mb := ind.Matrices[ids[rng.Intn(len(ids))]]
	if ma == mb || ma.ColCount() != mb.ColCount() {
		return
	}
	ra, rb := rng.Intn(ma.RowCount()), rng.Intn(mb.RowCount())
	allowedA := model.NewShiftSet(allowedByMatrix[ma.ID]...)
	allowedB := model.NewShiftSet(allowedByMatrix[mb.ID]...)
	for _, sh := range ma.Rows[ra] {
		if !allowedB.Contains(sh) {
			return
		}
	}
	for _, sh := range mb.Rows[rb] {
		if !allowedA.Contains(sh) {
			return
		}
	}
	ma.Rows[ra], mb.Rows[rb] = mb.Rows[rb], ma.Rows[ra]
}
