package matrixga

import (
	"math/rand"

	"github.com/rotacore/rotacore/pkg/model"
)

// allowedShiftsByMatrix 为每个矩阵计算可合法放置的班次集合：全部班次 id
// 减去绑定到该矩阵的员工排除集合的并集。一个班次只要被某个绑定该矩阵的
// 员工排除，就不再允许出现在矩阵的任何格子里——矩阵是共享的网格，格子本身
// 不知道未来会轮换到哪个员工身上。
func allowedShiftsByMatrix(matrices []model.Matrix, employees []model.Employee, shiftTypes []model.ShiftType) map[string][]string {
	allIDs := make([]string, 0, len(shiftTypes))
	for _, st := range shiftTypes {
		allIDs = append(allIDs, st.ID)
	}

	excludedByMatrix := make(map[string]map[string]bool)
	defaultMatrixID := ""
	if len(matrices) > 0 {
		defaultMatrixID = matrices[0].ID
	}
	for _, e := range employees {
		mid := e.MatrixID
		if mid == "" {
			mid = defaultMatrixID
		}
		if excludedByMatrix[mid] == nil {
			excludedByMatrix[mid] = make(map[string]bool)
		}
		for _, ex := range e.ExcludedShifts {
			excludedByMatrix[mid][ex] = true
		}
	}

	out := make(map[string][]string, len(matrices))
	for _, m := range matrices {
		excluded := excludedByMatrix[m.ID]
		var allowed []string
		for _, id := range allIDs {
			if excluded != nil && excluded[id] {
				continue
			}
			allowed = append(allowed, id)
		}
		if len(allowed) == 0 {
			allowed = allIDs
		}
		out[m.ID] = allowed
	}
	return out
}

// requiredCountByColumn 统计每个 column（day-of-week，矩阵列数通常为 7）
// 各条覆盖规则所需的人数，按固定矩阵已经贡献的覆盖量折减，得到演化矩阵
// 还需要补齐的净缺口。
func requiredCountByColumn(rules []model.CoverageRule, fixed map[string]*model.Matrix, columns int) map[string]map[int]int {
	need := make(map[string]map[int]int, len(rules))
	for _, rule := range rules {
		byCol := make(map[int]int, columns)
		for col := 0; col < columns; col++ {
			byCol[col] = rule.Min
		}
		need[rule.ID] = byCol
	}

	for _, m := range fixed {
		c := m.ColCount()
		if c == 0 {
			continue
		}
		for _, row := range m.Rows {
			for col := 0; col < len(row); col++ {
				mappedCol := col % columns
				for _, rule := range rules {
					if model.MatchesAny(row[col], rule.ShiftIDs) {
						need[rule.ID][mappedCol]--
					}
				}
			}
		}
	}
	return need
}

// smartInit 构造一个按覆盖缺口启发式填充的个体：每一列优先选择仍有净缺口
// 的覆盖规则对应的班次，缺口已被填满的列退化为在允许集合中均匀随机选择。
func smartInit(cfg Config, all map[string]*model.Matrix) *Individual {
	fixed := make(map[string]*model.Matrix)
	evolvingSet := model.NewShiftSet(cfg.Evolving...)
	for id, m := range all {
		if !evolvingSet.Contains(id) {
			fixed[id] = m
		}
	}

	allowedByMatrix := allowedShiftsByMatrix(cfg.AllMatrices, cfg.Employees, cfg.ShiftTypes)

	ind := &Individual{Matrices: make(map[string]*model.Matrix, len(cfg.Evolving))}
	for _, id := range cfg.Evolving {
		source := all[id]
		m := source.Clone()
		columns := m.ColCount()
		need := requiredCountByColumn(cfg.CoverageRules, fixed, columns)
		allowed := allowedByMatrix[id]

		for r := range m.Rows {
			for c := 0; c < columns; c++ {
				m.Rows[r][c] = pickForColumn(c, need, cfg.CoverageRules, allowed, cfg.Rand)
			}
		}
		ind.Matrices[id] = m
	}
	return ind
}

func pickForColumn(col int, need map[string]map[int]int, rules []model.CoverageRule, allowed []string, rng *rand.Rand) string {
	if len(allowed) == 0 {
		return ""
	}
	allowedSet := model.NewShiftSet(allowed...)
	var candidates []string
	for _, rule := range rules {
		if need[rule.ID][col] > 0 && len(rule.ShiftIDs) > 0 && allowedSet.Contains(rule.ShiftIDs[0]) {
			candidates = append(candidates, rule.ShiftIDs[0])
		}
	}
	if len(candidates) > 0 {
		pick := candidates[rng.Intn(len(candidates))]
		for _, rule := range rules {
			if model.MatchesAny(pick, rule.ShiftIDs) {
				need[rule.ID][col]--
			}
		}
		return pick
	}
	return allowed[rng.Intn(len(allowed))]
}
