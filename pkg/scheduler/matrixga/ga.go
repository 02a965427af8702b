package matrixga

import (
	"context"
	"math/rand"
	"sort"
	"time"

	"github.com/rotacore/rotacore/pkg/errors"
	"github.com/rotacore/rotacore/pkg/logger"
	"github.com/rotacore/rotacore/pkg/model"
	"github.com/rotacore/rotacore/pkg/scheduler/baseline"
	"github.com/rotacore/rotacore/pkg/scheduler/constraint"
	"github.com/rotacore/rotacore/pkg/scheduler/evaluator"
)

// Config 汇总一次 C5 演化所需的全部配置。
//
// AllMatrices 中 id 不在 Evolving 里的矩阵在演化过程中保持不变，只用于拼出完整的嵌套基线；Evolving
// 里列出的矩阵 id 才是被演化的对象（单矩阵模式长度为 1，联合模式为全部）。
type Config struct {
	AllMatrices []model.Matrix
	Evolving    []string

	Employees     []model.Employee
	ShiftTypes    []model.ShiftType
	CoverageRules []model.CoverageRule
	Constraints   []model.Constraint
	Year, Month   int

	PopulationSize  int
	MaxGenerations  int
	StagnationLimit int
	EliteCount      int
	MutationRate    float64
	CrossoverRate   float64
	TournamentSize  int
	Joint           bool
	Timeout         time.Duration

	UseCurrentAsSeed bool
	Rand             *rand.Rand
	OnProgress       func(model.Progress)
}

// WithDefaults 按规范为 C5 填充未设置的默认值：种群规模约 1000，精英占比约 5%。
func (c Config) WithDefaults() Config {
	if c.PopulationSize <= 0 {
		c.PopulationSize = 1000
	}
	if c.MaxGenerations <= 0 {
		c.MaxGenerations = 200
	}
	if c.StagnationLimit <= 0 {
		c.StagnationLimit = 30
	}
	if c.EliteCount <= 0 {
		c.EliteCount = c.PopulationSize / 20
		if c.EliteCount < 1 {
			c.EliteCount = 1
		}
	}
	if c.TournamentSize <= 1 {
		c.TournamentSize = 5
	}
	if c.MutationRate <= 0 {
		c.MutationRate = 0.1
	}
	if c.CrossoverRate <= 0 {
		c.CrossoverRate = 0.8
	}
	if c.Timeout <= 0 {
		c.Timeout = 3000 * time.Second
	}
	if c.Rand == nil {
		c.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return c
}

// Result 是一次矩阵演化完成后的最终产物
type Result struct {
	Matrices    map[string]*model.Matrix
	Eval        *evaluator.Result
	Generations int
	BestEffort  bool
	Failed      bool
	Reason      string
}

// Run 执行矩阵层面的演化（C5）。每次适应度探测先用 baseline.Build 把当前
// 个体的矩阵（演化中的 + 固定的）展开成一个月度排班，再用 evaluator.Evaluate
// 打分；矩阵自身的行约束违反数以 10000 的权重叠加在最前面，保证任何行约束
// 违反都比排班层面的缺陷更致命。
func Run(ctx context.Context, cfg Config) (*Result, error) {
	cfg = cfg.WithDefaults()
	if len(cfg.Evolving) == 0 {
		return nil, errors.ConfigInvalid("no matrix selected for evolution")
	}

	fixed := make(map[string]*model.Matrix)
	all := make(map[string]*model.Matrix, len(cfg.AllMatrices))
	evolvingSet := model.NewShiftSet(cfg.Evolving...)
	for i := range cfg.AllMatrices {
		m := &cfg.AllMatrices[i]
		all[m.ID] = m
		if !evolvingSet.Contains(m.ID) {
			fixed[m.ID] = m
		}
	}

	allowedByMatrix := allowedShiftsByMatrix(cfg.AllMatrices, cfg.Employees, cfg.ShiftTypes)
	followers := followerMap(cfg.Constraints)

	population := initPopulation(cfg, all)
	fitness := make([]float64, len(population))
	evalResults := make([]*evaluator.Result, len(population))
	for i, ind := range population {
		score, r := score(ind, fixed, cfg, allowedByMatrix)
		fitness[i] = score
		evalResults[i] = r
	}

	bestIdx := argmin(fitness)
	bestFitness := fitness[bestIdx]
	bestIndividual := population[bestIdx].Clone()
	bestEval := evalResults[bestIdx]

	log := logger.NewSchedulerLogger()
	start := time.Now()
	stagnation := 0

	for gen := 1; gen <= cfg.MaxGenerations; gen++ {
		select {
		case <-ctx.Done():
			return terminate(bestIndividual, bestEval, gen, "timeout"), nil
		default:
		}
		if time.Since(start) > cfg.Timeout {
			return terminate(bestIndividual, bestEval, gen, "timeout"), nil
		}
		if bestFitness == 0 {
			break
		}
		if stagnation >= cfg.StagnationLimit {
			return terminate(bestIndividual, bestEval, gen, "stagnation"), nil
		}

		order := argsortAsc(fitness)
		next := make([]*Individual, 0, len(population))
		elite := cfg.EliteCount
		if elite > len(population) {
			elite = len(population)
		}
		for i := 0; i < elite; i++ {
			next = append(next, population[order[i]].Clone())
		}

		for len(next) < len(population) {
			pa := tournamentSelect(fitness, cfg.TournamentSize, cfg.Rand)
			var child *Individual
			if cfg.Rand.Float64() < cfg.CrossoverRate {
				pb := tournamentSelect(fitness, cfg.TournamentSize, cfg.Rand)
				child = crossoverRowWise(population[pa], population[pb], cfg.Rand)
			} else {
				child = population[pa].Clone()
			}
			applyMutation(child, cfg, allowedByMatrix, followers)
			next = append(next, child)
		}

		population = next
		improved := false
		for i, ind := range population {
			s, r := score(ind, fixed, cfg, allowedByMatrix)
			fitness[i] = s
			evalResults[i] = r
			if s < bestFitness {
				bestFitness = s
				bestIndividual = ind.Clone()
				bestEval = r
				improved = true
			}
		}
		if improved {
			stagnation = 0
		} else {
			stagnation++
		}

		if gen%5 == 0 {
			prog := model.Progress{
				Generation:     gen,
				MaxGenerations: cfg.MaxGenerations,
				BestFitness:    bestFitness,
				Stagnation:     stagnation,
				AvgFitness:     average(fitness),
				IsValid:        bestEval.IsValid,
				TimeMs:         time.Since(start).Milliseconds(),
			}
			log.Progress("", gen, cfg.MaxGenerations, bestFitness, stagnation)
			if cfg.OnProgress != nil {
				cfg.OnProgress(prog)
			}
		}
	}

	return terminate(bestIndividual, bestEval, cfg.MaxGenerations, ""), nil
}

func applyMutation(child *Individual, cfg Config, allowedByMatrix map[string][]string, followers map[string]string) {
	for id, m := range child.Matrices {
		mutateCells(m, allowedByMatrix[id], cfg.Constraints, followers, cfg.MutationRate, cfg.Rand)
		if cfg.Rand.Float64() < cfg.MutationRate/2 {
			blockSwap(m, followers, cfg.Rand)
		}
		if cfg.Rand.Float64() < cfg.MutationRate/2 {
			rotateRow(m, cfg.Rand.Intn(m.RowCount()), cfg.Rand)
		}
	}
	if cfg.Joint {
		jointRowShuffle(child, allowedByMatrix, cfg.MutationRate, cfg.Rand)
	}
}

// score 把 Individual 里正在演化的矩阵与固定矩阵拼成完整矩阵集合，
// 先算行约束违反数，再用 baseline+evaluator 做嵌套评估。
func score(ind *Individual, fixed map[string]*model.Matrix, cfg Config, allowedByMatrix map[string][]string) (float64, *evaluator.Result) {
	rowViolations := 0
	matrices := make([]model.Matrix, 0, len(ind.Matrices)+len(fixed))
	for _, m := range ind.Matrices {
		for _, row := range m.Rows {
			rowViolations += len(constraint.Validate(row, cfg.Constraints, true))
		}
		matrices = append(matrices, *m)
	}
	for _, m := range fixed {
		matrices = append(matrices, *m)
	}

	schedule, err := baseline.Build(baseline.Input{
		Matrices:   matrices,
		Employees:  cfg.Employees,
		ShiftTypes: cfg.ShiftTypes,
		Year:       cfg.Year, Month: cfg.Month,
		Rand: cfg.Rand,
	})
	if err != nil {
		return float64(rowViolations)*10000 + 1e9, &evaluator.Result{}
	}

	result := evaluator.Evaluate(schedule, evaluator.Input{
		Employees:     cfg.Employees,
		ShiftTypes:    cfg.ShiftTypes,
		CoverageRules: cfg.CoverageRules,
		Constraints:   cfg.Constraints,
		Year:          cfg.Year, Month: cfg.Month,
		Weights: evaluator.DefaultWeights(),
	})

	return float64(rowViolations)*10000 + result.Fitness, result
}

func terminate(best *Individual, eval *evaluator.Result, generations int, reason string) *Result {
	matrices := make(map[string]*model.Matrix, len(best.Matrices))
	for id, m := range best.Matrices {
		matrices[id] = m
	}
	res := &Result{Matrices: matrices, Eval: eval, Generations: generations}
	if reason != "" {
		res.BestEffort = true
		res.Reason = reason
	}
	if eval != nil && !eval.IsValid {
		res.Failed = true
		if res.Reason == "" {
			res.Reason = "constraints_violated"
		}
	}
	return res
}

// initPopulation 生成初始种群：个体0是当前矩阵的精确拷贝（useCurrentAsSeed
// 时），其余个体由 smartInit 按覆盖缺口启发式生成，或在其基础上随机扰动。
func initPopulation(cfg Config, all map[string]*model.Matrix) []*Individual {
	n := cfg.PopulationSize
	pop := make([]*Individual, n)

	seedIdx := 0
	if cfg.UseCurrentAsSeed {
		ind := &Individual{Matrices: make(map[string]*model.Matrix, len(cfg.Evolving))}
		for _, id := range cfg.Evolving {
			ind.Matrices[id] = all[id].Clone()
		}
		pop[0] = ind
		seedIdx = 1
	}

	for i := seedIdx; i < n; i++ {
		ind := smartInit(cfg, all)
		if i > seedIdx {
			p := 0.05 + 0.2*float64(i)/float64(n)
			perturb(ind, cfg, p)
		}
		pop[i] = ind
	}
	return pop
}

func perturb(ind *Individual, cfg Config, rate float64) {
	allowedByMatrix := allowedShiftsByMatrix(cfg.AllMatrices, cfg.Employees, cfg.ShiftTypes)
	for id, m := range ind.Matrices {
		allowed := allowedByMatrix[id]
		if len(allowed) == 0 {
			continue
		}
		for r := range m.Rows {
			for c := range m.Rows[r] {
				if cfg.Rand.Float64() < rate {
					m.Rows[r][c] = allowed[cfg.Rand.Intn(len(allowed))]
				}
			}
		}
	}
}

func argmin(values []float64) int {
	best := 0
	for i, v := range values {
		if v < values[best] {
			best = i
		}
	}
	return best
}

func argsortAsc(values []float64) []int {
	idx := make([]int, len(values))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(i, j int) bool { return values[idx[i]] < values[idx[j]] })
	return idx
}

func average(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

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
