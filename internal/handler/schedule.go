// Package handler 提供 HTTP 请求处理器
package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/rotacore/rotacore/internal/history"
	"github.com/rotacore/rotacore/pkg/errors"
	"github.com/rotacore/rotacore/pkg/model"
	"github.com/rotacore/rotacore/pkg/report"
	"github.com/rotacore/rotacore/pkg/scheduler/evaluator"
	"github.com/rotacore/rotacore/pkg/scheduler/orchestrator"
)

// ScheduleHandler 排班生成处理器
type ScheduleHandler struct {
	store *history.Store
}

// NewScheduleHandler 创建排班生成处理器
func NewScheduleHandler(store *history.Store) *ScheduleHandler {
	return &ScheduleHandler{store: store}
}

// Generate 处理 POST /api/v1/schedule/generate：运行 C3(+C4)，把结果写入
// 作业审计表，并在成功时把本月排班存为下个月的连续性参照。
func (h *ScheduleHandler) Generate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, errors.New(errors.CodeConfigInvalid, "仅支持POST方法"))
		return
	}

	var req model.GenerateScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeConfigInvalid, "解析请求失败"))
		return
	}

	if req.PreviousMonthSchedule == nil && h.store != nil {
		if snap, err := h.store.LatestScheduleSnapshot(r.Context(), req.Year, req.Month); err == nil && snap != nil {
			req.PreviousMonthSchedule = snap.Schedule
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), ganTimeout(req.Options.GATimeoutMs))
	defer cancel()

	start := time.Now()
	result, err := orchestrator.GenerateSchedule(ctx, req)
	if err != nil {
		respondError(w, errors.ExecutionError(err))
		return
	}

	if result.Schedule != nil {
		stats := report.Summarize(result.Schedule, evalOf(result, req), req.CoverageRules, model.DaysInMonth(req.Year, req.Month))
		result.Statistics = stats
	}

	if h.store != nil {
		jobID := uuid.New()
		_ = h.store.RecordJob(r.Context(), &history.JobRecord{
			ID: jobID, Kind: "schedule", Status: statusOf(result),
			Reason: result.Reason, Generations: result.Generations,
			DurationMs: time.Since(start).Milliseconds(), Result: *result,
		})
		if !result.Failed && result.Schedule != nil {
			_ = h.store.SaveScheduleSnapshot(r.Context(), &history.ScheduleSnapshot{
				Year: req.Year, Month: req.Month, Schedule: result.Schedule,
			})
		}
	}

	respondJSON(w, http.StatusOK, result)
}

// MatrixHandler 矩阵生成/演化处理器
type MatrixHandler struct {
	store *history.Store
}

// NewMatrixHandler 创建矩阵处理器
func NewMatrixHandler(store *history.Store) *MatrixHandler {
	return &MatrixHandler{store: store}
}

// Generate 处理 POST /api/v1/matrix/generate：运行 C5。
func (h *MatrixHandler) Generate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, errors.New(errors.CodeConfigInvalid, "仅支持POST方法"))
		return
	}

	var req model.GenerateMatrixRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeConfigInvalid, "解析请求失败"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), ganTimeout(req.Options.GATimeoutMs))
	defer cancel()

	start := time.Now()
	result, err := orchestrator.GenerateMatrix(ctx, req)
	if err != nil {
		respondError(w, errors.ExecutionError(err))
		return
	}

	if h.store != nil {
		_ = h.store.RecordJob(r.Context(), &history.JobRecord{
			ID: uuid.New(), Kind: "matrix", Status: statusOf(result),
			Reason: result.Reason, Generations: result.Generations,
			DurationMs: time.Since(start).Milliseconds(), Result: *result,
		})
	}

	respondJSON(w, http.StatusOK, result)
}

// JobHandler 提供作业审计记录的只读查询
type JobHandler struct {
	store *history.Store
}

// NewJobHandler 创建作业查询处理器
func NewJobHandler(store *history.Store) *JobHandler {
	return &JobHandler{store: store}
}

// Get 处理 GET /api/v1/jobs/{id}
func (h *JobHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		respondError(w, errors.New(errors.CodeExecutionError, "job history is not configured"))
		return
	}
	idStr := r.PathValue("id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeConfigInvalid, "无效的作业ID"))
		return
	}
	rec, err := h.store.GetJob(r.Context(), id)
	if err != nil {
		respondError(w, errors.ExecutionError(err))
		return
	}
	if rec == nil {
		respondError(w, errors.New(errors.CodeNoValidBaseline, "job not found").WithField("id", idStr))
		return
	}
	respondJSON(w, http.StatusOK, rec)
}

func statusOf(r *model.JobResult) string {
	switch {
	case r.Failed:
		return "failed"
	case r.BestEffort:
		return "best_effort"
	default:
		return "complete"
	}
}

func evalOf(result *model.JobResult, req model.GenerateScheduleRequest) *evaluator.Result {
	return evaluator.Evaluate(result.Schedule, evaluator.Input{
		Employees: req.Employees, ShiftTypes: req.ShiftTypes,
		CoverageRules: req.CoverageRules, Constraints: req.Constraints,
		Year: req.Year, Month: req.Month, Weights: evaluator.DefaultWeights().ApplyOverrides(req.Options.Weights),
	})
}

func ganTimeout(ms int) time.Duration {
	if ms <= 0 {
		return 30 * time.Minute
	}
	return time.Duration(ms) * time.Millisecond
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, err *errors.AppError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.HTTPStatus)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error":   true,
		"code":    err.Code,
		"message": err.Message,
		"details": err.Details,
	})
}
