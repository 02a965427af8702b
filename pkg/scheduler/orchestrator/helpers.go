package orchestrator

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/rotacore/rotacore/internal/metrics"
	"github.com/rotacore/rotacore/pkg/model"
)

// validateMatrices 对请求里直接反序列化出来的矩阵逐一校验维度规则
// （R*C 必须是 7 的倍数），在跑基线/GA 之前拒绝畸形配置。
func validateMatrices(matrices []model.Matrix) error {
	for i := range matrices {
		if err := matrices[i].Validate(); err != nil {
			return fmt.Errorf("matrix at index %d: %w", i, err)
		}
	}
	return nil
}

// seededRand 构造一个确定性 RNG：seed 非零时使用它，否则用当前时间播种。
func seededRand(seed int64) *rand.Rand {
	if seed != 0 {
		return rand.New(rand.NewSource(seed))
	}
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// gaTimeout 把毫秒配置转换为 time.Duration，未设置时退回 GA 包自身的默认值。
func gaTimeout(ms int) time.Duration {
	if ms <= 0 {
		return 0
	}
	return time.Duration(ms) * time.Millisecond
}

// jobStatus 把作业的 failed/best-effort 状态收拢成一个指标标签值。
func jobStatus(failed, bestEffort bool) string {
	switch {
	case failed:
		return "failed"
	case bestEffort:
		return "best_effort"
	default:
		return "complete"
	}
}

// recordScheduleMetrics 把一次 C3/C4 作业的结果写入 Prometheus 注册表。
func recordScheduleMetrics(status string, duration time.Duration, generations int, fitness float64, stagnated bool) {
	reg := metrics.Get()
	reg.ScheduleJobsTotal.WithLabelValues(status).Inc()
	reg.ScheduleJobDuration.WithLabelValues(status).Observe(duration.Seconds())
	if generations > 0 {
		reg.ScheduleGenerations.Observe(float64(generations))
	}
	reg.ScheduleBestFitness.Set(fitness)
	if stagnated {
		reg.ScheduleStagnations.Inc()
	}
}

// recordMatrixMetrics 把一次 C5 作业的结果写入 Prometheus 注册表。
func recordMatrixMetrics(mode, status string, generations int, fitness float64) {
	reg := metrics.Get()
	reg.MatrixJobsTotal.WithLabelValues(mode, status).Inc()
	if generations > 0 {
		reg.MatrixGenerations.Observe(float64(generations))
	}
	reg.MatrixBestFitness.Set(fitness)
}
