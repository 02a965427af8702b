package model

// OptimizerOptions 是 OptimizerOptions 的完整枚举，全部字段可选。
type OptimizerOptions struct {
	UseGA             bool               `json:"use_ga"`
	GreedyFallback    bool               `json:"greedy_fallback"`
	GATimeoutMs       int                `json:"ga_timeout_ms,omitempty"`
	PopulationSize    int                `json:"population_size,omitempty"`
	MaxGenerations    int                `json:"max_generations,omitempty"`
	StagnationLimit   int                `json:"stagnation_limit,omitempty"`
	EliteCount        int                `json:"elite_count,omitempty"`
	MutationRate      float64            `json:"mutation_rate,omitempty"`
	CrossoverRate     float64            `json:"crossover_rate,omitempty"`
	TournamentSize    int                `json:"tournament_size,omitempty"`
	BaselineAdherence float64            `json:"baseline_adherence,omitempty"`
	Weights           map[string]float64 `json:"weights,omitempty"`
	UseCurrentAsSeed  bool               `json:"use_current_as_seed,omitempty"`
	Seed              int64              `json:"seed,omitempty"`
}

// GenerateScheduleRequest 是生成月度排班的作业请求
type GenerateScheduleRequest struct {
	Year                 int               `json:"year"`
	Month                 int               `json:"month"`
	Employees             []Employee        `json:"employees"`
	ShiftTypes            []ShiftType       `json:"shift_types"`
	Matrices              []Matrix          `json:"matrices"`
	CoverageRules         []CoverageRule    `json:"coverage_rules"`
	Constraints           []Constraint      `json:"constraints"`
	PreviousMonthSchedule *Schedule         `json:"previous_month_schedule,omitempty"`
	Options               OptimizerOptions  `json:"options"`
}

// MatrixGenerationMode 区分单矩阵演化与联合演化
type MatrixGenerationMode string

const (
	ModeSingle MatrixGenerationMode = "single"
	ModeJoint  MatrixGenerationMode = "joint"
)

// GenerateMatrixRequest 是生成/演化矩阵的作业请求
type GenerateMatrixRequest struct {
	Mode           MatrixGenerationMode `json:"mode"`
	TargetMatrixID string               `json:"target_matrix_id,omitempty"`
	AllMatrices    []Matrix             `json:"all_matrices"`
	ShiftTypes     []ShiftType          `json:"shift_types"`
	Constraints    []Constraint         `json:"constraints"`
	CoverageRules  []CoverageRule       `json:"coverage_rules"`
	ColumnCount    int                  `json:"column_count"`
	RowCount       int                  `json:"row_count,omitempty"`
	Employees      []Employee           `json:"employees"`
	Year           int                  `json:"year"`
	Month          int                  `json:"month"`
	Options        OptimizerOptions     `json:"options"`
}

// Progress 是演化过程中的周期性进度事件
type Progress struct {
	Generation     int     `json:"generation"`
	MaxGenerations int     `json:"max_generations"`
	BestFitness    float64 `json:"best_fitness"`
	Stagnation     int     `json:"stagnation"`
	AvgFitness     float64 `json:"avg_fitness,omitempty"`
	IsValid        bool    `json:"is_valid"`
	TimeMs         int64   `json:"time_ms,omitempty"`
}

// JobResult 是作业执行完成后的响应载荷
type JobResult struct {
	Schedule    *Schedule          `json:"schedule,omitempty"`
	Matrix      *Matrix            `json:"matrix,omitempty"`
	Matrices    map[string]*Matrix `json:"matrices,omitempty"`
	Statistics  *ScheduleStatistics `json:"statistics,omitempty"`
	BestEffort  bool               `json:"best_effort,omitempty"`
	Failed      bool               `json:"failed,omitempty"`
	Reason      string             `json:"reason,omitempty"`
	Generations int                `json:"generations"`
	DurationMs  int64              `json:"duration_ms"`
}

// ScheduleStatistics 是 C8 报表模块产出的事后统计
type ScheduleStatistics struct {
	CoverageRate    float64            `json:"coverage_rate"`
	FairnessGini    float64            `json:"fairness_gini"`
	TotalHours      float64            `json:"total_hours"`
	PerEmployeeHours map[string]float64 `json:"per_employee_hours,omitempty"`
	UnfilledDays    int                `json:"unfilled_days"`
}
