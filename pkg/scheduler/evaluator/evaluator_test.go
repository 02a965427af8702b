package evaluator

import (
	"testing"

	"github.com/rotacore/rotacore/pkg/model"
)

func shiftTypes() []model.ShiftType {
	return []model.ShiftType{
		{ID: "M", DurationMinutes: 480},
		{ID: "P", DurationMinutes: 480},
		{ID: "RP", DurationMinutes: 0, IsZeroHour: true},
	}
}

func TestEvaluate_CoverageExactness(t *testing.T) {
	schedule := model.NewSchedule()
	days := model.DaysInMonth(2026, 1)
	schedule.Shifts["e1"] = make([]string, days)
	schedule.Shifts["e2"] = make([]string, days)
	for d := 0; d < days; d++ {
		schedule.Shifts["e1"][d] = "M"
		schedule.Shifts["e2"][d] = "P"
	}

	employees := []model.Employee{{ID: "e1"}, {ID: "e2"}}
	rules := []model.CoverageRule{
		{ID: "cov-m", Min: 1, ShiftIDs: []string{"M"}},
		{ID: "cov-p", Min: 1, ShiftIDs: []string{"P"}},
	}

	result := Evaluate(schedule, Input{
		Employees:     employees,
		ShiftTypes:    shiftTypes(),
		CoverageRules: rules,
		Year:          2026, Month: 1,
		Weights: DefaultWeights(),
	})

	if len(result.CoverageViolations) != 0 {
		t.Fatalf("want 0 coverage violations over the whole month, got %+v", result.CoverageViolations)
	}
	if result.PerEmployee["e1"].ConstraintViolations != 0 {
		t.Fatalf("want 0 constraint violations for e1")
	}
}

func TestEvaluate_IsValidRequiresZeroHardViolations(t *testing.T) {
	schedule := model.NewSchedule()
	schedule.Shifts["e1"] = []string{"M"}

	employees := []model.Employee{{ID: "e1", ExcludedShifts: []string{"M"}}}
	result := Evaluate(schedule, Input{
		Employees:  employees,
		ShiftTypes: shiftTypes(),
		Year:       2026, Month: 1,
		Weights: DefaultWeights(),
	})

	if result.IsValid {
		t.Fatalf("schedule assigning an excluded shift must not be valid")
	}
	if result.PerEmployee["e1"].ExclusionViolations != 1 {
		t.Fatalf("want 1 exclusion violation, got %d", result.PerEmployee["e1"].ExclusionViolations)
	}
}

func TestEvaluate_AsymmetricHoursPenalty(t *testing.T) {
	employees := []model.Employee{{ID: "e1", ContractHours: 10}}

	under := model.NewSchedule()
	under.Shifts["e1"] = []string{}
	overSchedule := model.NewSchedule()
	overSchedule.Shifts["e1"] = []string{"M", "M", "M", "M", "M", "M", "M", "M", "M", "M"}

	w := DefaultWeights()
	resUnder := Evaluate(under, Input{Employees: employees, ShiftTypes: shiftTypes(), Year: 2026, Month: 1, Weights: w})
	resOver := Evaluate(overSchedule, Input{Employees: employees, ShiftTypes: shiftTypes(), Year: 2026, Month: 1, Weights: w})

	devUnder := resUnder.PerEmployee["e1"].HoursDeviation
	devOver := resOver.PerEmployee["e1"].HoursDeviation
	if devUnder >= 0 {
		t.Fatalf("under-worked schedule should have negative deviation, got %f", devUnder)
	}
	if devOver <= 0 {
		t.Fatalf("over-worked schedule should have positive deviation, got %f", devOver)
	}

	// 相同绝对偏差下欠工时的惩罚应当更重（资方/劳方不对称）
	absUnder := -devUnder
	absOver := devOver
	penaltyUnder := absUnder * w.HoursUnderPerUnit
	penaltyOver := absOver * w.HoursOverPerUnit
	perUnitUnder := penaltyUnder / absUnder
	perUnitOver := penaltyOver / absOver
	if perUnitUnder <= perUnitOver {
		t.Fatalf("hours-under penalty rate must exceed hours-over penalty rate")
	}
}

func TestEvaluate_Deterministic(t *testing.T) {
	schedule := model.NewSchedule()
	schedule.Shifts["e1"] = []string{"M", "P", "M"}
	employees := []model.Employee{{ID: "e1", ContractHours: 20}}
	in := Input{Employees: employees, ShiftTypes: shiftTypes(), Year: 2026, Month: 2, Weights: DefaultWeights()}

	r1 := Evaluate(schedule, in)
	r2 := Evaluate(schedule, in)
	if r1.Fitness != r2.Fitness {
		t.Fatalf("Evaluate must be deterministic: %f != %f", r1.Fitness, r2.Fitness)
	}
}
