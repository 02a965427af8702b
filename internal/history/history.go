// Package history 提供排班历史与作业审计的数据访问层（C7）。
//
// 沿用教师 internal/repository 的接口形状（ListFilter、DB 接口上的
// ExecContext/QueryContext/QueryRowContext；没有泛型 Repository[T]），把原本围绕
// 组织/门店排班记录的 schema 收拢成两张表：schedule_snapshots（供 C3 读取
// 上月排班做连续性评分）与 scheduling_jobs（作业审计，记录每次生成/演化的
// 请求与结果）。
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rotacore/rotacore/pkg/model"
)

// DB 是仓储所需的最小数据库接口，由 internal/database.DB 满足。
type DB interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// ListFilter 列表查询过滤器
type ListFilter struct {
	Status   string
	Offset   int
	Limit    int
	OrderDir string
}

// DefaultListFilter 返回默认过滤器
func DefaultListFilter() ListFilter {
	return ListFilter{Offset: 0, Limit: 20, OrderDir: "desc"}
}

// ScheduleSnapshot 是某个月度排班表的持久化快照，供下一个月的 C3
// 基线构建读取以计算连续性分数。
type ScheduleSnapshot struct {
	ID        uuid.UUID       `json:"id"`
	Year      int             `json:"year"`
	Month     int             `json:"month"`
	Schedule  *model.Schedule `json:"schedule"`
	CreatedAt time.Time       `json:"created_at"`
}

// JobRecord 是一次排班/矩阵生成作业的审计记录。
type JobRecord struct {
	ID          uuid.UUID      `json:"id"`
	Kind        string         `json:"kind"` // schedule/matrix
	Status      string         `json:"status"`
	Reason      string         `json:"reason,omitempty"`
	Generations int            `json:"generations"`
	DurationMs  int64          `json:"duration_ms"`
	Result      model.JobResult `json:"result"`
	CreatedAt   time.Time      `json:"created_at"`
}

// Store 封装排班历史与作业审计的全部读写操作。
type Store struct {
	db DB
}

// NewStore 创建历史存储
func NewStore(db DB) *Store {
	return &Store{db: db}
}

// SaveScheduleSnapshot 持久化一次月度排班，供后续月份的连续性评分使用。
func (s *Store) SaveScheduleSnapshot(ctx context.Context, snap *ScheduleSnapshot) error {
	if snap.ID == uuid.Nil {
		snap.ID = uuid.New()
	}
	snap.CreatedAt = time.Now()

	payload, err := json.Marshal(snap.Schedule)
	if err != nil {
		return fmt.Errorf("序列化排班快照失败: %w", err)
	}

	query := `
		INSERT INTO schedule_snapshots (id, year, month, payload, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err = s.db.ExecContext(ctx, query, snap.ID, snap.Year, snap.Month, payload, snap.CreatedAt)
	if err != nil {
		return fmt.Errorf("保存排班快照失败: %w", err)
	}
	return nil
}

// LatestScheduleSnapshot 取某年月之前最近一次保存的排班快照，作为 C3 的
// PreviousMonthSchedule 输入。
func (s *Store) LatestScheduleSnapshot(ctx context.Context, beforeYear, beforeMonth int) (*ScheduleSnapshot, error) {
	query := `
		SELECT id, year, month, payload, created_at
		FROM schedule_snapshots
		WHERE (year * 12 + month) < ($1 * 12 + $2)
		ORDER BY (year * 12 + month) DESC
		LIMIT 1
	`
	row := s.db.QueryRowContext(ctx, query, beforeYear, beforeMonth)

	var snap ScheduleSnapshot
	var payload []byte
	if err := row.Scan(&snap.ID, &snap.Year, &snap.Month, &payload, &snap.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("查询排班快照失败: %w", err)
	}
	var sched model.Schedule
	if err := json.Unmarshal(payload, &sched); err != nil {
		return nil, fmt.Errorf("反序列化排班快照失败: %w", err)
	}
	snap.Schedule = &sched
	return &snap, nil
}

// RecordJob 写入一条作业审计记录。
func (s *Store) RecordJob(ctx context.Context, rec *JobRecord) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	rec.CreatedAt = time.Now()

	resultJSON, err := json.Marshal(rec.Result)
	if err != nil {
		return fmt.Errorf("序列化作业结果失败: %w", err)
	}

	query := `
		INSERT INTO scheduling_jobs (id, kind, status, reason, generations, duration_ms, result, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err = s.db.ExecContext(ctx, query,
		rec.ID, rec.Kind, rec.Status, rec.Reason, rec.Generations, rec.DurationMs, resultJSON, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("写入作业审计记录失败: %w", err)
	}
	return nil
}

// GetJob 按 id 取回一条作业审计记录。
func (s *Store) GetJob(ctx context.Context, id uuid.UUID) (*JobRecord, error) {
	query := `
		SELECT id, kind, status, reason, generations, duration_ms, result, created_at
		FROM scheduling_jobs
		WHERE id = $1
	`
	row := s.db.QueryRowContext(ctx, query, id)

	var rec JobRecord
	var resultJSON []byte
	if err := row.Scan(&rec.ID, &rec.Kind, &rec.Status, &rec.Reason, &rec.Generations, &rec.DurationMs, &resultJSON, &rec.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("查询作业审计记录失败: %w", err)
	}
	if err := json.Unmarshal(resultJSON, &rec.Result); err != nil {
		return nil, fmt.Errorf("反序列化作业结果失败: %w", err)
	}
	return &rec, nil
}

// ListJobs 按状态分页列出作业审计记录。
func (s *Store) ListJobs(ctx context.Context, filter ListFilter) ([]*JobRecord, error) {
	query := `
		SELECT id, kind, status, reason, generations, duration_ms, result, created_at
		FROM scheduling_jobs
		WHERE ($1 = '' OR status = $1)
		ORDER BY created_at DESC
		OFFSET $2 LIMIT $3
	`
	rows, err := s.db.QueryContext(ctx, query, filter.Status, filter.Offset, filter.Limit)
	if err != nil {
		return nil, fmt.Errorf("查询作业审计列表失败: %w", err)
	}
	defer rows.Close()

	var out []*JobRecord
	for rows.Next() {
		var rec JobRecord
		var resultJSON []byte
		if err := rows.Scan(&rec.ID, &rec.Kind, &rec.Status, &rec.Reason, &rec.Generations, &rec.DurationMs, &resultJSON, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("扫描作业审计记录失败: %w", err)
		}
		if err := json.Unmarshal(resultJSON, &rec.Result); err != nil {
			return nil, fmt.Errorf("反序列化作业结果失败: %w", err)
		}
		out = append(out, &rec)
	}
	return out, rows.Err()
}
