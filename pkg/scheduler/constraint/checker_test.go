package constraint

import (
	"testing"

	"github.com/rotacore/rotacore/pkg/model"
)

func TestValidate_CyclicWrapViolation(t *testing.T) {
	row := []string{"M", "P", "M", "P", "M", "P", "N"}
	c := model.Constraint{
		ID:      "no-night-then-morning",
		Kind:    model.CannotFollow,
		Enabled: true,
		ShiftA:  "N",
		ShiftB:  "M",
	}

	linear := Validate(row, []model.Constraint{c}, false)
	if len(linear) != 0 {
		t.Fatalf("linear mode: want 0 violations, got %d", len(linear))
	}

	cyclic := Validate(row, []model.Constraint{c}, true)
	if len(cyclic) != 1 {
		t.Fatalf("cyclic mode: want exactly 1 violation, got %d: %+v", len(cyclic), cyclic)
	}
	if cyclic[0].DayIndex != 6 {
		t.Fatalf("want violation at wrap index 6, got %d", cyclic[0].DayIndex)
	}
}

func TestValidate_MustFollow(t *testing.T) {
	row := []string{"N", "SN", "N", "M"}
	c := model.Constraint{ID: "night-post", Kind: model.MustFollow, Enabled: true, ShiftA: "N", ShiftB: "SN"}
	v := Validate(row, []model.Constraint{c}, false)
	if len(v) != 1 {
		t.Fatalf("want 1 violation (index 2 N not followed by SN), got %d: %+v", len(v), v)
	}
	if v[0].DayIndex != 2 {
		t.Fatalf("want violation at index 2, got %d", v[0].DayIndex)
	}
}

func TestValidate_MaxConsecutive(t *testing.T) {
	row := []string{"M", "M", "M", "P", "M"}
	c := model.Constraint{ID: "max-m", Kind: model.MaxConsecutive, Enabled: true, ShiftA: "M", Days: 2}
	v := Validate(row, []model.Constraint{c}, false)
	if len(v) != 1 {
		t.Fatalf("want 1 violation for the 3rd consecutive M, got %d: %+v", len(v), v)
	}
	if v[0].DayIndex != 2 {
		t.Fatalf("want violation at index 2, got %d", v[0].DayIndex)
	}
}

func TestValidate_MinGap(t *testing.T) {
	row := []string{"N", "M", "P", "N"}
	c := model.Constraint{ID: "rest-after-night", Kind: model.MinGap, Enabled: true, ShiftA: "N", ShiftB: "M", Days: 2}
	v := Validate(row, []model.Constraint{c}, false)
	if len(v) != 1 {
		t.Fatalf("want 1 violation (M at index 1 within gap of N at index 0), got %d: %+v", len(v), v)
	}
}

func TestValidate_DisabledConstraintIgnored(t *testing.T) {
	row := []string{"N", "M"}
	c := model.Constraint{ID: "x", Kind: model.CannotFollow, Enabled: false, ShiftA: "N", ShiftB: "M"}
	if v := Validate(row, []model.Constraint{c}, false); len(v) != 0 {
		t.Fatalf("disabled constraint must not produce violations, got %+v", v)
	}
}

func TestValidate_OrderInsensitiveToConstraintListOrdering(t *testing.T) {
	row := []string{"N", "M", "N", "SN"}
	c1 := model.Constraint{ID: "a", Kind: model.CannotFollow, Enabled: true, ShiftA: "N", ShiftB: "M"}
	c2 := model.Constraint{ID: "b", Kind: model.MustFollow, Enabled: true, ShiftA: "N", ShiftB: "SN"}

	v1 := Validate(row, []model.Constraint{c1, c2}, false)
	v2 := Validate(row, []model.Constraint{c2, c1}, false)
	if len(v1) != len(v2) {
		t.Fatalf("violation count must not depend on constraint ordering: %d vs %d", len(v1), len(v2))
	}
}

func TestValidNextShifts_VariantPrefixMatching(t *testing.T) {
	row := []string{"M_1", "P", "P", "P"}
	c := model.Constraint{ID: "no-m-then-m", Kind: model.CannotFollow, Enabled: true, ShiftA: "M", ShiftB: "M"}
	// "M_1" at index 0 matches target "M" via variant-prefix convention, so a
	// candidate of "M" (or "M_2") at index 1 must be excluded.
	candidates := ValidNextShifts(row, 1, []model.Constraint{c}, []string{"M", "P", "N"})
	for _, cand := range candidates {
		if model.Matches(cand, "M") {
			t.Fatalf("candidate %q should have been excluded by variant-prefix cannot_follow", cand)
		}
	}
}
