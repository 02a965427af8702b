package schedulega

import (
	"context"
	"math/rand"
	"sort"
	"time"

	"github.com/rotacore/rotacore/pkg/errors"
	"github.com/rotacore/rotacore/pkg/logger"
	"github.com/rotacore/rotacore/pkg/model"
	"github.com/rotacore/rotacore/pkg/scheduler/evaluator"
)

// Config 汇总一次 C4 演化所需的全部配置
type Config struct {
	Employees     []model.Employee
	ShiftTypes    []model.ShiftType
	CoverageRules []model.CoverageRule
	Constraints   []model.Constraint
	Year, Month   int
	Baseline      *model.Schedule
	Weights       evaluator.Weights

	PopulationSize    int
	MaxGenerations    int
	StagnationLimit   int
	EliteCount        int
	MutationRate      float64
	CrossoverRate     float64
	TournamentSize    int
	BaselineAdherence float64
	CrossoverMode     CrossoverMode
	Guided            bool
	Timeout           time.Duration

	Rand       *rand.Rand
	OnProgress func(model.Progress)
}

// WithDefaults 填充未设置的数值型选项为规范规定的默认值
func (c Config) WithDefaults() Config {
	if c.PopulationSize <= 0 {
		c.PopulationSize = 80
	}
	if c.MaxGenerations <= 0 {
		c.MaxGenerations = 300
	}
	if c.StagnationLimit <= 0 {
		c.StagnationLimit = 40
	}
	if c.TournamentSize <= 1 {
		c.TournamentSize = 5
	}
	if c.MutationRate <= 0 {
		c.MutationRate = 0.05
	}
	if c.CrossoverRate <= 0 {
		c.CrossoverRate = 0.8
	}
	if c.BaselineAdherence <= 0 {
		c.BaselineAdherence = 0.7
	}
	if c.CrossoverMode == "" {
		c.CrossoverMode = CrossoverEmployee
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Minute
	}
	if c.Rand == nil {
		c.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return c
}

// Result 是一次演化完成后的最终产物
type Result struct {
	Schedule    *model.Schedule
	Eval        *evaluator.Result
	Generations int
	BestEffort  bool
	Failed      bool
	Reason      string
}

// Run 执行完整的演化流程（C4）：精英保留 + 锦标赛选择 + 交叉 + 变异，
// 在目标适应度达到 0、世代预算耗尽、墙钟超时或停滞达到上限时终止。
func Run(ctx context.Context, cfg Config) (*Result, error) {
	cfg = cfg.WithDefaults()
	if cfg.Baseline == nil {
		return nil, errors.ExecutionError(nil)
	}

	evalIn := evaluator.Input{
		Employees:     cfg.Employees,
		ShiftTypes:    cfg.ShiftTypes,
		CoverageRules: cfg.CoverageRules,
		Constraints:   cfg.Constraints,
		Year:          cfg.Year,
		Month:         cfg.Month,
		Baseline:      cfg.Baseline,
		Weights:       cfg.Weights,
	}

	population := initPopulation(cfg)
	fitness := make([]float64, len(population))
	evalResults := make([]*evaluator.Result, len(population))
	for i, ind := range population {
		r := evaluator.Evaluate(ind, evalIn)
		evalResults[i] = r
		fitness[i] = r.Fitness
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

		next := make([]*model.Schedule, 0, len(population))
		order := argsortAsc(fitness)
		elite := cfg.EliteCount
		if elite > len(population) {
			elite = len(population)
		}
		for i := 0; i < elite; i++ {
			next = append(next, population[order[i]].Clone())
		}

		for len(next) < len(population) {
			var child *model.Schedule
			if cfg.Rand.Float64() < cfg.CrossoverRate {
				pa := tournamentSelect(fitness, cfg.TournamentSize, cfg.Rand)
				pb := tournamentSelect(fitness, cfg.TournamentSize, cfg.Rand)
				child = crossover(population[pa], population[pb], cfg.Employees, cfg.CrossoverMode, cfg.Rand)
				mutate(child, cfg.Employees, cfg.ShiftTypes, cfg.Baseline, cfg.MutationRate, cfg.BaselineAdherence, cfg.Guided, cfg.Rand)
			} else {
				parent := tournamentSelect(fitness, cfg.TournamentSize, cfg.Rand)
				child = population[parent].Clone()
				mutate(child, cfg.Employees, cfg.ShiftTypes, cfg.Baseline, 2*cfg.MutationRate, cfg.BaselineAdherence, cfg.Guided, cfg.Rand)
			}
			next = append(next, child)
		}

		population = next
		improved := false
		for i, ind := range population {
			r := evaluator.Evaluate(ind, evalIn)
			evalResults[i] = r
			fitness[i] = r.Fitness
			if r.Fitness < bestFitness {
				bestFitness = r.Fitness
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
			avg := average(fitness)
			prog := model.Progress{
				Generation:     gen,
				MaxGenerations: cfg.MaxGenerations,
				BestFitness:    bestFitness,
				Stagnation:     stagnation,
				AvgFitness:     avg,
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

func terminate(best *model.Schedule, eval *evaluator.Result, generations int, reason string) *Result {
	res := &Result{
		Schedule:    best,
		Eval:        eval,
		Generations: generations,
	}
	if reason != "" {
		res.BestEffort = true
		res.Reason = reason
	}
	if !eval.IsValid {
		res.Failed = true
		if res.Reason == "" {
			res.Reason = "constraints_violated"
		}
	}
	return res
}

// initPopulation 生成初始种群：个体0是基线的精确拷贝；个体 i 以每格概率
// p_i = 0.02 + 0.15*i/N 扰动基线，扰动值从员工允许班次集合中均匀抽取。
func initPopulation(cfg Config) []*model.Schedule {
	n := cfg.PopulationSize
	pop := make([]*model.Schedule, n)
	pop[0] = cfg.Baseline.Clone()

	allShiftIDs := make([]string, 0, len(cfg.ShiftTypes))
	for _, st := range cfg.ShiftTypes {
		allShiftIDs = append(allShiftIDs, st.ID)
	}

	for i := 1; i < n; i++ {
		ind := cfg.Baseline.Clone()
		p := 0.02 + 0.15*float64(i)/float64(n)
		for _, e := range cfg.Employees {
			shifts := ind.Shifts[e.ID]
			for d := range shifts {
				if cfg.Rand.Float64() < p {
					if cand := pickAllowed(e, allShiftIDs, shifts[d], cfg.Rand); cand != "" {
						shifts[d] = cand
					}
				}
			}
		}
		pop[i] = ind
	}
	return pop
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
