// Package orchestrator 实现 C6：把 C3（贪心基线）、C4（排班层演化）、
// C5（矩阵层演化）编排成两个对外操作——生成月度排班、生成/演化矩阵——并负责
// 在 GA 失败时退回基线。编排层不设置 GA 的 OnProgress 回调，调用方收不到进度事件。
//
// 编排层在教师代码里没有直接对应物：教师的 handler 直接调用单一的
// optimizer.LocalSearchOptimizer；这里把"先跑基线，再用基线种出一个演化
// 种群，GA 失败就拿基线兜底"的决策逻辑收拢到一处，避免 HTTP/CLI 两个
// 入口各自重复一遍。
package orchestrator

import (
	"context"
	"time"

	"github.com/rotacore/rotacore/pkg/errors"
	"github.com/rotacore/rotacore/pkg/logger"
	"github.com/rotacore/rotacore/pkg/model"
	"github.com/rotacore/rotacore/pkg/scheduler/baseline"
	"github.com/rotacore/rotacore/pkg/scheduler/evaluator"
	"github.com/rotacore/rotacore/pkg/scheduler/matrixga"
	"github.com/rotacore/rotacore/pkg/scheduler/schedulega"
)

// GenerateSchedule 执行 C3→(可选)C4 的完整流程：先构建贪心基线，
// 若 Options.UseGA 为真则以基线为种子运行排班层演化；GA 因超时/停滞
// 提前终止时返回其最优个体（best-effort），GA 本身出错或最优个体不合法时
// 退回纯基线（当 Options.GreedyFallback 为真）。
func GenerateSchedule(ctx context.Context, req model.GenerateScheduleRequest) (*model.JobResult, error) {
	start := time.Now()
	log := logger.NewSchedulerLogger()
	log.StartJob("", "schedule", len(req.Employees), model.DaysInMonth(req.Year, req.Month))

	if err := validateMatrices(req.Matrices); err != nil {
		log.ConfigRejected("", err.Error())
		return nil, errors.ConfigInvalid(err.Error())
	}

	baselineSchedule, err := baseline.Build(baseline.Input{
		Matrices:              req.Matrices,
		Employees:             req.Employees,
		ShiftTypes:            req.ShiftTypes,
		Year:                  req.Year,
		Month:                 req.Month,
		PreviousMonthSchedule: req.PreviousMonthSchedule,
		Rand:                  seededRand(req.Options.Seed),
	})
	if err != nil {
		log.ConfigRejected("", err.Error())
		return nil, err
	}

	weights := evaluator.DefaultWeights().ApplyOverrides(req.Options.Weights)

	if !req.Options.UseGA {
		result := evaluator.Evaluate(baselineSchedule, evaluator.Input{
			Employees: req.Employees, ShiftTypes: req.ShiftTypes,
			CoverageRules: req.CoverageRules, Constraints: req.Constraints,
			Year: req.Year, Month: req.Month, Weights: weights,
		})
		recordScheduleMetrics(jobStatus(!result.IsValid, false), time.Since(start), 0, result.Fitness, false)
		return finalize(baselineSchedule, result, 0, false, start), nil
	}

	cfg := schedulega.Config{
		Employees: req.Employees, ShiftTypes: req.ShiftTypes,
		CoverageRules: req.CoverageRules, Constraints: req.Constraints,
		Year: req.Year, Month: req.Month,
		Baseline:          baselineSchedule,
		Weights:           weights,
		PopulationSize:    req.Options.PopulationSize,
		MaxGenerations:    req.Options.MaxGenerations,
		StagnationLimit:   req.Options.StagnationLimit,
		EliteCount:        req.Options.EliteCount,
		MutationRate:      req.Options.MutationRate,
		CrossoverRate:     req.Options.CrossoverRate,
		TournamentSize:    req.Options.TournamentSize,
		BaselineAdherence: req.Options.BaselineAdherence,
		Guided:            true,
		Timeout:           gaTimeout(req.Options.GATimeoutMs),
		Rand:              seededRand(req.Options.Seed),
	}

	gaResult, err := schedulega.Run(ctx, cfg)
	if err != nil || (gaResult.Failed && req.Options.GreedyFallback) {
		if req.Options.GreedyFallback {
			msg := "ga incumbent not valid"
			if err != nil {
				msg = err.Error()
			}
			log.ConfigRejected("", "ga failed, falling back to baseline: "+msg)
			result := evaluator.Evaluate(baselineSchedule, evaluator.Input{
				Employees: req.Employees, ShiftTypes: req.ShiftTypes,
				CoverageRules: req.CoverageRules, Constraints: req.Constraints,
				Year: req.Year, Month: req.Month, Weights: weights,
			})
			recordScheduleMetrics(jobStatus(!result.IsValid, true), time.Since(start), 0, result.Fitness, false)
			return finalize(baselineSchedule, result, 0, true, start), nil
		}
		recordScheduleMetrics("failed", time.Since(start), 0, 0, false)
		return nil, errors.ExecutionError(err)
	}

	log.JobComplete("", time.Since(start), gaResult.Eval.Fitness, gaResult.Eval.IsValid)
	recordScheduleMetrics(jobStatus(gaResult.Failed, gaResult.BestEffort), time.Since(start), gaResult.Generations, gaResult.Eval.Fitness, gaResult.Reason == "stagnation")
	out := finalize(gaResult.Schedule, gaResult.Eval, gaResult.Generations, gaResult.BestEffort, start)
	if gaResult.Reason != "" {
		out.Reason = gaResult.Reason
	}
	return out, nil
}

// GenerateMatrix 执行 C5：单矩阵或联合演化。结果里只含被演化矩阵的最终形态；
// 调用方需要把它与其余固定矩阵合并后才能重新构建基线。
func GenerateMatrix(ctx context.Context, req model.GenerateMatrixRequest) (*model.JobResult, error) {
	start := time.Now()
	log := logger.NewSchedulerLogger()
	log.StartJob("", "matrix", len(req.Employees), 0)

	if err := validateMatrices(req.AllMatrices); err != nil {
		log.ConfigRejected("", err.Error())
		return nil, errors.ConfigInvalid(err.Error())
	}

	evolving := []string{req.TargetMatrixID}
	joint := req.Mode == model.ModeJoint
	if joint {
		evolving = evolving[:0]
		for _, m := range req.AllMatrices {
			evolving = append(evolving, m.ID)
		}
	}

	cfg := matrixga.Config{
		AllMatrices: req.AllMatrices, Evolving: evolving,
		Employees: req.Employees, ShiftTypes: req.ShiftTypes,
		CoverageRules: req.CoverageRules, Constraints: req.Constraints,
		Year: req.Year, Month: req.Month,
		PopulationSize:   req.Options.PopulationSize,
		MaxGenerations:   req.Options.MaxGenerations,
		StagnationLimit:  req.Options.StagnationLimit,
		EliteCount:       req.Options.EliteCount,
		MutationRate:     req.Options.MutationRate,
		CrossoverRate:    req.Options.CrossoverRate,
		TournamentSize:   req.Options.TournamentSize,
		Joint:            joint,
		UseCurrentAsSeed: req.Options.UseCurrentAsSeed,
		Timeout:          gaTimeout(req.Options.GATimeoutMs),
		Rand:             seededRand(req.Options.Seed),
	}

	result, err := matrixga.Run(ctx, cfg)
	if err != nil {
		log.ConfigRejected("", err.Error())
		recordMatrixMetrics(string(req.Mode), "failed", 0, 0)
		return nil, err
	}

	log.JobComplete("", time.Since(start), result.Eval.Fitness, result.Eval.IsValid)
	recordMatrixMetrics(string(req.Mode), jobStatus(result.Failed, result.BestEffort), result.Generations, result.Eval.Fitness)

	out := &model.JobResult{
		Matrices:    result.Matrices,
		BestEffort:  result.BestEffort,
		Failed:      result.Failed,
		Reason:      result.Reason,
		Generations: result.Generations,
		DurationMs:  time.Since(start).Milliseconds(),
	}
	if !joint && len(result.Matrices) == 1 {
		out.Matrix = result.Matrices[req.TargetMatrixID]
	}
	return out, nil
}

func finalize(schedule *model.Schedule, eval *evaluator.Result, generations int, bestEffort bool, start time.Time) *model.JobResult {
	out := &model.JobResult{
		Schedule:    schedule,
		BestEffort:  bestEffort,
		Failed:      eval != nil && !eval.IsValid,
		Generations: generations,
		DurationMs:  time.Since(start).Milliseconds(),
	}
	if out.Failed {
		out.Reason = "constraints_violated"
	}
	return out
}
