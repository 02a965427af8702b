package model

import "sort"

// AssignmentMeta 描述某员工在某次基线构建中得到的来源信息
type AssignmentMeta struct {
	MatrixRow       int     `json:"matrix_row"`
	DayOffset       int     `json:"day_offset"`
	ContinuityScore float64 `json:"continuity_score"`
	Source          string  `json:"source"` // greedy/ga
}

// Schedule 是员工 id 到定长班次序列（每月每天一个）的映射，外加每员工元数据
type Schedule struct {
	Shifts map[string][]string       `json:"shifts"`
	Meta   map[string]AssignmentMeta `json:"meta,omitempty"`
}

// NewSchedule 创建一个空 schedule
func NewSchedule() *Schedule {
	return &Schedule{
		Shifts: make(map[string][]string),
		Meta:   make(map[string]AssignmentMeta),
	}
}

// Clone 深拷贝 schedule，用于 GA 个体的独立变异
func (s *Schedule) Clone() *Schedule {
	out := NewSchedule()
	for emp, shifts := range s.Shifts {
		out.Shifts[emp] = append([]string(nil), shifts...)
	}
	for emp, meta := range s.Meta {
		out.Meta[emp] = meta
	}
	return out
}

// EmployeeIDs 返回排序后的员工 id 列表，便于确定性遍历与测试复现
func (s *Schedule) EmployeeIDs() []string {
	ids := make([]string, 0, len(s.Shifts))
	for id := range s.Shifts {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
