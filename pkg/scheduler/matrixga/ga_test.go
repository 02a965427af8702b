package matrixga

import (
	"context"
	"math/rand"
	"testing"

	"github.com/rotacore/rotacore/pkg/model"
)

func fixtureMatrices() []model.Matrix {
	m1, _ := model.NewMatrix("m1", [][]string{{"M", "P", "N", "RP", "M", "P", "N"}})
	return []model.Matrix{*m1}
}

func fixtureConfig() Config {
	return Config{
		AllMatrices: fixtureMatrices(),
		Evolving:    []string{"m1"},
		Employees:   []model.Employee{{ID: "e1", ContractHours: 40}},
		ShiftTypes: []model.ShiftType{
			{ID: "M", DurationMinutes: 480},
			{ID: "P", DurationMinutes: 480},
			{ID: "N", DurationMinutes: 600},
			{ID: "RP", DurationMinutes: 0, IsZeroHour: true},
		},
		CoverageRules: []model.CoverageRule{
			{ID: "cov-m", Min: 1, ShiftIDs: []string{"M"}},
		},
		Year: 2026, Month: 3,
		PopulationSize: 12,
		MaxGenerations: 15,
		EliteCount:     1,
		Rand:           rand.New(rand.NewSource(9)),
	}
}

func TestRun_SingleMatrixReturnsNonNilResult(t *testing.T) {
	cfg := fixtureConfig()
	result, err := Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Matrices["m1"] == nil {
		t.Fatalf("expected evolved matrix m1 in result")
	}
}

// TestRun_ExcludedShiftNeverAppearsInEvolvedMatrix 验证场景六的排除收敛性质：
// 绑定到某矩阵的员工排除某班次后，演化出的矩阵必须完全不含该班次格子。这条
// 性质不依赖 GA 是否收敛——smartInit/perturb/mutateCells 全部只从
// allowedShiftsByMatrix 的结果集合里取值，所以即便种群从未改进，排除的班次
// 也不可能出现在任何一代的矩阵里。覆盖规则里专门加一条要求 N 的规则，
// 让 smartInit 的"列缺口候选"路径也被迫覆盖这个班次——否则 smartInit 选
// 候选班次时从不检查 allowed 集合的回归永远不会被这个测试抓到。
func TestRun_ExcludedShiftNeverAppearsInEvolvedMatrix(t *testing.T) {
	cfg := fixtureConfig()
	cfg.Employees = []model.Employee{{ID: "e1", MatrixID: "m1", ContractHours: 40, ExcludedShifts: []string{"N"}}}
	cfg.CoverageRules = append(cfg.CoverageRules, model.CoverageRule{ID: "cov-n", Min: 1, ShiftIDs: []string{"N"}})
	cfg.UseCurrentAsSeed = false

	result, err := Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	evolved := result.Matrices["m1"]
	if evolved == nil {
		t.Fatalf("expected evolved matrix m1 in result")
	}
	for _, shift := range evolved.Snake() {
		if shift == "N" {
			t.Fatalf("excluded shift N appeared in evolved matrix m1: %v", evolved.Rows)
		}
	}
}

func TestRun_RejectsEmptyEvolvingSet(t *testing.T) {
	cfg := fixtureConfig()
	cfg.Evolving = nil
	if _, err := Run(context.Background(), cfg); err == nil {
		t.Fatalf("want error when no matrix is selected for evolution")
	}
}

func TestRun_CancelledContextIsBestEffort(t *testing.T) {
	cfg := fixtureConfig()
	cfg.MaxGenerations = 500
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := Run(ctx, cfg)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !result.BestEffort {
		t.Fatalf("cancelled context should yield a best-effort result")
	}
}

func TestAllowedShiftsByMatrix_ExcludesBoundEmployeeExclusions(t *testing.T) {
	matrices := fixtureMatrices()
	employees := []model.Employee{{ID: "e1", MatrixID: "m1", ExcludedShifts: []string{"N"}}}
	shiftTypes := []model.ShiftType{{ID: "M"}, {ID: "P"}, {ID: "N"}, {ID: "RP"}}

	allowed := allowedShiftsByMatrix(matrices, employees, shiftTypes)
	set := model.NewShiftSet(allowed["m1"]...)
	if set.Contains("N") {
		t.Fatalf("N should be excluded from m1's allowed set")
	}
	if !set.Contains("M") {
		t.Fatalf("M should remain allowed on m1")
	}
}

func TestSmartInit_FillsRequiredColumnsWhenPossible(t *testing.T) {
	cfg := fixtureConfig()
	all := map[string]*model.Matrix{"m1": &cfg.AllMatrices[0]}
	ind := smartInit(cfg, all)
	if ind.Matrices["m1"] == nil {
		t.Fatalf("expected smartInit to produce m1")
	}
	if ind.Matrices["m1"].RowCount() != 1 || ind.Matrices["m1"].ColCount() != 7 {
		t.Fatalf("smartInit changed matrix dimensions unexpectedly")
	}
	// cov-m 每列都缺 1 个 M，唯一一行的每一格都应被填成 M
	for c, s := range ind.Matrices["m1"].Rows[0] {
		if s != "M" {
			t.Fatalf("column %d: want M to fill the cov-m gap, got %s", c, s)
		}
	}
}
