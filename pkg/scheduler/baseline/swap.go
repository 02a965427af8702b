package baseline

import (
	"math/rand"

	"github.com/rotacore/rotacore/pkg/model"
)

// repairExclusions 对蛇形展开后的排班表做"同日互换"修复：对每一天，收集被排除
// 班次的员工，洗牌后依次寻找同日搭档互换；若找不到搭档，退化为把该员工的班次
// 替换成其第一个允许的班次类型。相比独立替换，这能更好地保持当天的覆盖平衡。
//
// 改造自教师 pkg/swap.SwapEvaluator.simulateSwap 的"交换两个分配再复核"模式，
// 从用户发起的换班请求改为自动化的排除冲突修复。
func repairExclusions(schedule *model.Schedule, employees []model.Employee, shiftIDs []string, daysInMonth int, rng *rand.Rand) {
	empByID := make(map[string]model.Employee, len(employees))
	for _, e := range employees {
		empByID[e.ID] = e
	}

	for day := 0; day < daysInMonth; day++ {
		var conflicted []string
		for _, e := range employees {
			shifts := schedule.Shifts[e.ID]
			if day >= len(shifts) {
				continue
			}
			if e.IsExcluded(shifts[day]) {
				conflicted = append(conflicted, e.ID)
			}
		}
		if len(conflicted) == 0 {
			continue
		}
		rng.Shuffle(len(conflicted), func(i, j int) { conflicted[i], conflicted[j] = conflicted[j], conflicted[i] })

		taken := make(map[string]bool)
		for _, empID := range conflicted {
			emp := empByID[empID]
			currentShift := schedule.Shifts[empID][day]

			partnerID, found := findSwapPartner(schedule, employees, empID, currentShift, day, taken)
			if found {
				partnerShift := schedule.Shifts[partnerID][day]
				schedule.Shifts[empID][day] = partnerShift
				schedule.Shifts[partnerID][day] = currentShift
				taken[partnerID] = true
				continue
			}

			for _, sid := range shiftIDs {
				if emp.CanWork(sid) {
					schedule.Shifts[empID][day] = sid
					break
				}
			}
		}
	}
}

// findSwapPartner 在当天所有员工中寻找满足双向可行性的互换对象：
// 对方当前班次对 focal 员工可行，且 focal 当前班次对对方也可行。
func findSwapPartner(schedule *model.Schedule, employees []model.Employee, focalID, focalShift string, day int, taken map[string]bool) (string, bool) {
	focalEmp := lookupEmployee(employees, focalID)
	for _, other := range employees {
		if other.ID == focalID || taken[other.ID] {
			continue
		}
		otherShifts := schedule.Shifts[other.ID]
		if day >= len(otherShifts) {
			continue
		}
		otherShift := otherShifts[day]
		if focalEmp.CanWork(otherShift) && other.CanWork(focalShift) {
			return other.ID, true
		}
	}
	return "", false
}

func lookupEmployee(employees []model.Employee, id string) model.Employee {
	for _, e := range employees {
		if e.ID == id {
			return e
		}
	}
	return model.Employee{}
}
