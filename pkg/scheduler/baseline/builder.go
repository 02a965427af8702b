package baseline

import (
	"math"
	"math/rand"
	"sort"

	"github.com/rotacore/rotacore/pkg/errors"
	"github.com/rotacore/rotacore/pkg/model"
)

// Input 汇总一次基线构建所需的全部配置
type Input struct {
	Matrices              []model.Matrix
	Employees             []model.Employee
	ShiftTypes            []model.ShiftType
	Year, Month           int
	PreviousMonthSchedule *model.Schedule
	Rand                  *rand.Rand
}

// Build 从矩阵、历史记录和日历确定性地推导出一个月的排班表（C3）。
//
// 给定相同的种子、配置与历史输入，重复调用逐位相同（基线幂等律）。
func Build(in Input) (*model.Schedule, error) {
	if len(in.Matrices) == 0 {
		return nil, errors.NoValidBaseline("no matrices supplied")
	}
	matrixByID := make(map[string]*model.Matrix, len(in.Matrices))
	for i := range in.Matrices {
		m := in.Matrices[i]
		if m.SnakeLength() == 0 {
			return nil, errors.NoValidBaseline("matrix " + m.ID + " has zero dimension")
		}
		matrixByID[m.ID] = &in.Matrices[i]
	}
	defaultMatrix := &in.Matrices[0]

	daysInMonth := model.DaysInMonth(in.Year, in.Month)
	calendarPhase := model.FirstWeekdayIndex(in.Year, in.Month)

	employeeMatrix := make(map[string]*model.Matrix, len(in.Employees))
	for _, e := range in.Employees {
		m := defaultMatrix
		if e.MatrixID != "" {
			if bound, ok := matrixByID[e.MatrixID]; ok {
				m = bound
			}
		}
		employeeMatrix[e.ID] = m
	}

	prelim := make(map[string]rowCandidate, len(in.Employees))
	history := make(map[string][]string, len(in.Employees))
	for _, e := range in.Employees {
		var h []string
		if in.PreviousMonthSchedule != nil {
			h = in.PreviousMonthSchedule.Shifts[e.ID]
		}
		history[e.ID] = h
		if len(h) == 0 {
			continue
		}
		prelim[e.ID] = bestRowCandidate(h, employeeMatrix[e.ID])
	}

	phase, phaseWon := dominantPhase(tallyPhaseVotes(prelim))

	assignment := assignRows(in.Employees, employeeMatrix, history, phase, phaseWon)

	schedule := model.NewSchedule()
	shiftIDs := make([]string, 0, len(in.ShiftTypes))
	for _, st := range in.ShiftTypes {
		shiftIDs = append(shiftIDs, st.ID)
	}

	for _, e := range in.Employees {
		a := assignment[e.ID]
		m := employeeMatrix[e.ID]
		phaseShift := 0
		source := "greedy"
		if !a.hasHistory {
			phaseShift = calendarPhase
		}

		shifts := make([]string, daysInMonth)
		rc := m.SnakeLength()
		base := m.CellIndex(a.row, a.offset)
		if a.hasHistory {
			// 历史尾部 k 天对齐 [base, base+k)，本月从 base+k 接续
			k := len(history[e.ID])
			if k > 28 {
				k = 28
			}
			base += k
		}
		for d := 0; d < daysInMonth; d++ {
			idx := ((base+d+phaseShift)%rc + rc) % rc
			shifts[d] = m.At(idx)
		}

		schedule.Shifts[e.ID] = shifts
		schedule.Meta[e.ID] = model.AssignmentMeta{
			MatrixRow:       a.row,
			DayOffset:       a.offset,
			ContinuityScore: a.score,
			Source:          source,
		}
	}

	rng := in.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	repairExclusions(schedule, in.Employees, shiftIDs, daysInMonth, rng)

	return schedule, nil
}

type finalAssignment struct {
	row, offset int
	score       float64
	hasHistory  bool
}

// assignRows 执行贪心分配：按矩阵分组员工，按连续性分数降序排序，
// 分配到仍有剩余容量（⌈|employees on this matrix|/R⌉）的最高分行；
// 若全局相位同步胜出，则对有历史记录的员工改用相位受限的候选集重新评分。
func assignRows(employees []model.Employee, employeeMatrix map[string]*model.Matrix, history map[string][]string, phase int, phaseWon bool) map[string]finalAssignment {
	out := make(map[string]finalAssignment, len(employees))

	byMatrix := make(map[*model.Matrix][]model.Employee)
	for _, e := range employees {
		m := employeeMatrix[e.ID]
		byMatrix[m] = append(byMatrix[m], e)
	}

	for m, emps := range byMatrix {
		capacity := int(math.Ceil(float64(len(emps)) / float64(m.RowCount())))
		rowCount := make([]int, m.RowCount())

		prefs := make([]employeePreference, 0, len(emps))
		for i, e := range emps {
			idx := i
			h := history[e.ID]
			if len(h) == 0 {
				out[e.ID] = finalAssignment{row: idx % m.RowCount(), offset: 0, score: 0, hasHistory: false}
				continue
			}
			var rows []rowCandidate
			if phaseWon {
				rows = rankedRowsWithPhase(h, m, phase)
				if len(rows) == 0 {
					rows = rankedRows(h, m)
				}
			} else {
				rows = rankedRows(h, m)
			}
			prefs = append(prefs, employeePreference{empID: e.ID, rows: rows})
		}

		sort.Slice(prefs, func(i, j int) bool {
			return bestScore(prefs[i]) > bestScore(prefs[j])
		})

		for _, p := range prefs {
			assigned := false
			for _, cand := range p.rows {
				if rowCount[cand.Row] < capacity {
					rowCount[cand.Row]++
					out[p.empID] = finalAssignment{row: cand.Row, offset: cand.Offset, score: cand.Score, hasHistory: true}
					assigned = true
					break
				}
			}
			if !assigned && len(p.rows) > 0 {
				best := p.rows[0]
				rowCount[best.Row]++
				out[p.empID] = finalAssignment{row: best.Row, offset: best.Offset, score: best.Score, hasHistory: true}
			}
		}
	}

	return out
}

// employeePreference 是某员工按分数降序排列的行偏好列表，用于贪心分配阶段
// 依次尝试仍有剩余容量的行。
type employeePreference struct {
	empID string
	rows  []rowCandidate
}

func bestScore(p employeePreference) float64 {
	if len(p.rows) == 0 {
		return -1
	}
	return p.rows[0].Score
}
