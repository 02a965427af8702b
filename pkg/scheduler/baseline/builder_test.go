package baseline

import (
	"math/rand"
	"testing"

	"github.com/rotacore/rotacore/pkg/model"
)

func mustMatrix(t *testing.T, id string, rows [][]string) model.Matrix {
	t.Helper()
	m, err := model.NewMatrix(id, rows)
	if err != nil {
		t.Fatalf("NewMatrix: %v", err)
	}
	return *m
}

func TestBuild_DeterministicSnakeUnravel(t *testing.T) {
	matrix := mustMatrix(t, "m1", [][]string{{"M", "P", "N", "SN", "RP", "M", "P"}})
	employees := []model.Employee{{ID: "e1"}}
	shiftTypes := []model.ShiftType{{ID: "M"}, {ID: "P"}, {ID: "N"}, {ID: "SN"}, {ID: "RP"}}

	// 2026-02-01 是周日，没有历史的员工会按日历相位整体偏移，
	// 所以期望值按 FirstWeekdayIndex 平移后的 pattern 计算。
	schedule, err := Build(Input{
		Matrices:   []model.Matrix{matrix},
		Employees:  employees,
		ShiftTypes: shiftTypes,
		Year:       2026, Month: 2,
		Rand: rand.New(rand.NewSource(1)),
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	shifts := schedule.Shifts["e1"]
	phase := model.FirstWeekdayIndex(2026, 2)
	pattern := []string{"M", "P", "N", "SN", "RP", "M", "P"}
	for i, s := range shifts {
		want := pattern[(i+phase)%len(pattern)]
		if s != want {
			t.Fatalf("day %d: got %s, want %s (phase=%d)", i, s, want, phase)
		}
	}
}

func TestBuild_CoverageTwoMatrices(t *testing.T) {
	matrixM := mustMatrix(t, "all-m", [][]string{{"M", "M", "M", "M", "M", "M", "M"}})
	matrixP := mustMatrix(t, "all-p", [][]string{{"P", "P", "P", "P", "P", "P", "P"}})
	employees := []model.Employee{
		{ID: "e1", MatrixID: "all-m"},
		{ID: "e2", MatrixID: "all-p"},
	}
	shiftTypes := []model.ShiftType{{ID: "M"}, {ID: "P"}, {ID: "RP"}}

	schedule, err := Build(Input{
		Matrices:   []model.Matrix{matrixM, matrixP},
		Employees:  employees,
		ShiftTypes: shiftTypes,
		Year:       2026, Month: 3,
		Rand: rand.New(rand.NewSource(1)),
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	for _, s := range schedule.Shifts["e1"] {
		if s != "M" {
			t.Fatalf("e1 expected to work only M, got %s", s)
		}
	}
	for _, s := range schedule.Shifts["e2"] {
		if s != "P" {
			t.Fatalf("e2 expected to work only P, got %s", s)
		}
	}
}

func TestBuild_ExclusionSwap(t *testing.T) {
	matrix := mustMatrix(t, "m1", [][]string{{"M", "N", "M", "N", "M", "N", "M"}})
	employees := []model.Employee{
		{ID: "e1"},
		{ID: "e2", ExcludedShifts: []string{"N"}},
	}
	shiftTypes := []model.ShiftType{{ID: "M"}, {ID: "N"}}

	schedule, err := Build(Input{
		Matrices:   []model.Matrix{matrix},
		Employees:  employees,
		ShiftTypes: shiftTypes,
		Year:       2026, Month: 3,
		Rand: rand.New(rand.NewSource(7)),
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	for day, s := range schedule.Shifts["e2"] {
		if s == "N" {
			t.Fatalf("e2 excludes N but day %d assigns N after the swap pass", day)
		}
	}
}

func TestBuild_RejectsEmptyMatrix(t *testing.T) {
	_, err := Build(Input{
		Matrices:  nil,
		Employees: []model.Employee{{ID: "e1"}},
		Year:      2026, Month: 1,
	})
	if err == nil {
		t.Fatalf("want NoValidBaseline error for empty matrix set")
	}
}

func TestBuild_Idempotent(t *testing.T) {
	matrix := mustMatrix(t, "m1", [][]string{{"M", "P", "N", "SN", "RP", "M", "P"}, {"P", "N", "SN", "RP", "M", "P", "N"}})
	employees := []model.Employee{{ID: "e1"}, {ID: "e2"}}
	shiftTypes := []model.ShiftType{{ID: "M"}, {ID: "P"}, {ID: "N"}, {ID: "SN"}, {ID: "RP"}}

	in := Input{
		Matrices:   []model.Matrix{matrix},
		Employees:  employees,
		ShiftTypes: shiftTypes,
		Year:       2026, Month: 4,
		Rand: rand.New(rand.NewSource(42)),
	}
	s1, err := Build(in)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	in.Rand = rand.New(rand.NewSource(42))
	s2, err := Build(in)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	for _, emp := range employees {
		a, b := s1.Shifts[emp.ID], s2.Shifts[emp.ID]
		if len(a) != len(b) {
			t.Fatalf("length mismatch for %s", emp.ID)
		}
		for i := range a {
			if a[i] != b[i] {
				t.Fatalf("baseline not idempotent for %s at day %d: %s vs %s", emp.ID, i, a[i], b[i])
			}
		}
	}
}
