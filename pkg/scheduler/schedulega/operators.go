// Package schedulega 实现 C4：从 C3 的贪心基线开始演化一个月度排班表种群。
//
// 精英保留 + 锦标赛选择的演化外壳改造自教师 optimizer.LocalSearchOptimizer.Optimize
// 的世代循环（每轮检查 ctx.Done/墙钟超时/停滞计数、"发现新最优就记日志"），
// 把单解局部搜索推广成了种群式演化；锦标赛选择与精英保留的整体结构借鉴自
// r3b0rn-acc-flowShop 示例 ga.go 里 tournamentSelect/elitism 的写法。
package schedulega

import (
	"math/rand"

	"github.com/rotacore/rotacore/pkg/model"
)

// CrossoverMode 枚举 C4 支持的三种交叉方式
type CrossoverMode string

const (
	CrossoverEmployee    CrossoverMode = "employee"
	CrossoverSinglePoint CrossoverMode = "single-point"
	CrossoverUniform     CrossoverMode = "uniform"
)

// crossover 按配置的模式从 a、b 两个父代生成一个子代
//
// employee 模式整行拷贝（借鉴 flow-shop 示例 orderCrossoverOX 的"整段拷贝"结构，
// 但这里的单元不是排列，拷贝的是整个员工的班次行，不需要 OX 式的去重填充）。
func crossover(a, b *model.Schedule, employees []model.Employee, mode CrossoverMode, rng *rand.Rand) *model.Schedule {
	child := model.NewSchedule()
	switch mode {
	case CrossoverSinglePoint:
		for _, e := range employees {
			shiftsA, shiftsB := a.Shifts[e.ID], b.Shifts[e.ID]
			cut := rng.Intn(len(shiftsA) + 1)
			row := make([]string, len(shiftsA))
			copy(row[:cut], shiftsA[:cut])
			copy(row[cut:], shiftsB[cut:])
			child.Shifts[e.ID] = row
		}
	case CrossoverUniform:
		for _, e := range employees {
			shiftsA, shiftsB := a.Shifts[e.ID], b.Shifts[e.ID]
			row := make([]string, len(shiftsA))
			for d := range row {
				if rng.Float64() < 0.5 {
					row[d] = shiftsA[d]
				} else {
					row[d] = shiftsB[d]
				}
			}
			child.Shifts[e.ID] = row
		}
	default: // employee
		for _, e := range employees {
			if rng.Float64() < 0.5 {
				child.Shifts[e.ID] = append([]string(nil), a.Shifts[e.ID]...)
			} else {
				child.Shifts[e.ID] = append([]string(nil), b.Shifts[e.ID]...)
			}
		}
	}
	return child
}

// mutate 依次应用 swap、point 或 guided 变异，取决于是否启用 guided 模式。
//
// guided 模式启用时（默认），point 变异被 swap+guided 替代：guided 变异是把
// 演化结果拉回基线周期性模式的机制。
func mutate(s *model.Schedule, employees []model.Employee, shiftTypes []model.ShiftType, baseline *model.Schedule, rate, baselineAdherence float64, guided bool, rng *rand.Rand) {
	if guided && baseline != nil {
		mutateSwap(s, employees, rate, rng)
		mutateGuided(s, employees, baseline, rate, baselineAdherence, rng)
		return
	}
	mutatePoint(s, employees, shiftTypes, rate, rng)
}

// mutateSwap 每天以概率 rate 选两名不同员工交换当天班次，
// 仅当交换后双方都不违反排除规则时才生效。
func mutateSwap(s *model.Schedule, employees []model.Employee, rate float64, rng *rand.Rand) {
	if len(employees) < 2 {
		return
	}
	days := 0
	for _, e := range employees {
		if len(s.Shifts[e.ID]) > days {
			days = len(s.Shifts[e.ID])
		}
	}
	for d := 0; d < days; d++ {
		if rng.Float64() >= rate {
			continue
		}
		i, j := rng.Intn(len(employees)), rng.Intn(len(employees))
		if i == j {
			continue
		}
		e1, e2 := employees[i], employees[j]
		s1, s2 := s.Shifts[e1.ID], s.Shifts[e2.ID]
		if d >= len(s1) || d >= len(s2) {
			continue
		}
		if e1.CanWork(s2[d]) && e2.CanWork(s1[d]) {
			s1[d], s2[d] = s2[d], s1[d]
		}
	}
}

// mutatePoint 每个单元以概率 rate 替换为员工允许集合中的另一个班次
func mutatePoint(s *model.Schedule, employees []model.Employee, shiftTypes []model.ShiftType, rate float64, rng *rand.Rand) {
	allShiftIDs := collectShiftIDs(shiftTypes)
	for _, e := range employees {
		shifts := s.Shifts[e.ID]
		for d := range shifts {
			if rng.Float64() >= rate {
				continue
			}
			candidate := pickAllowed(e, allShiftIDs, shifts[d], rng)
			if candidate != "" {
				shifts[d] = candidate
			}
		}
	}
}

// mutateGuided 每个单元以概率 rate 检查是否偏离基线；若是，则以
// baselineAdherence 的概率把该单元还原为基线班次。
func mutateGuided(s *model.Schedule, employees []model.Employee, baseline *model.Schedule, rate, baselineAdherence float64, rng *rand.Rand) {
	for _, e := range employees {
		shifts := s.Shifts[e.ID]
		base := baseline.Shifts[e.ID]
		for d := range shifts {
			if d >= len(base) {
				continue
			}
			if rng.Float64() >= rate {
				continue
			}
			if shifts[d] == base[d] {
				continue
			}
			if rng.Float64() < baselineAdherence {
				shifts[d] = base[d]
			}
		}
	}
}

// collectShiftIDs 枚举配置中声明的全部班次 id——而不是排班表当前出现的
// 班次集合，否则一个尚未被任何人使用过的班次类型永远不可能被点变异引入。
func collectShiftIDs(shiftTypes []model.ShiftType) []string {
	out := make([]string, 0, len(shiftTypes))
	for _, st := range shiftTypes {
		out = append(out, st.ID)
	}
	return out
}

func pickAllowed(e model.Employee, shiftIDs []string, current string, rng *rand.Rand) string {
	var allowed []string
	for _, sid := range shiftIDs {
		if sid != current && e.CanWork(sid) {
			allowed = append(allowed, sid)
		}
	}
	if len(allowed) == 0 {
		return ""
	}
	return allowed[rng.Intn(len(allowed))]
}

// tournamentSelect 随机抽取 size 个个体，返回其中 fitness 最低（最优）者的索引
//
// 直接取自 r3b0rn-acc-flowShop 示例的 tournamentSelect：采样下标、保留最优。
func tournamentSelect(fitness []float64, size int, rng *rand.Rand) int {
	best := rng.Intn(len(fitness))
	for i := 1; i < size; i++ {
		cand := rng.Intn(len(fitness))
		if fitness[cand] < fitness[best] {
			best = cand
		}
	}
	return best
}
