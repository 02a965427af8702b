package model

// ConstraintKind 枚举七种序列约束类型
type ConstraintKind string

const (
	MustFollow            ConstraintKind = "must_follow"
	CannotFollow          ConstraintKind = "cannot_follow"
	MustPrecede           ConstraintKind = "must_precede"
	CannotPrecede         ConstraintKind = "cannot_precede"
	MaxConsecutive        ConstraintKind = "max_consecutive"
	MaxConsecutiveWithout ConstraintKind = "max_consecutive_without"
	MinGap                ConstraintKind = "min_gap"
)

// Constraint 是七种规则的带标签联合体（tagged variant）。
//
// 每种 Kind 只使用自己需要的字段，其余字段保持零值：
//   - must_follow / cannot_follow / must_precede / cannot_precede: ShiftA, ShiftB
//   - max_consecutive / max_consecutive_without: ShiftA, Days
//   - min_gap: ShiftA, ShiftB, Days
type Constraint struct {
	ID      string         `json:"id"`
	Kind    ConstraintKind `json:"kind"`
	Enabled bool           `json:"enabled"`
	ShiftA  string         `json:"shift_a"`
	ShiftB  string         `json:"shift_b,omitempty"`
	Days    int            `json:"days,omitempty"`
}

// CoverageRule 要求某天属于 ShiftIDs 集合的分配总数恰好等于 Min。
//
// 字段名沿用外部线协议的 "min"，但评估时是精确匹配（见 evaluator 包的设计说明），
// 多于或少于都会被计分为覆盖违反。
type CoverageRule struct {
	ID       string   `json:"id"`
	Min      int      `json:"min"`
	ShiftIDs []string `json:"shift_ids"`
}

// Violation 是单次约束检查产生的一条违反记录
type Violation struct {
	DayIndex     int    `json:"day_index"`
	ConstraintID string `json:"constraint_id"`
	Message      string `json:"message"`
}
