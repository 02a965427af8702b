package model

import "fmt"

// Matrix 是一个 R x C 的周期性矩阵，行主序展平后构成一条循环的"蛇形"序列。
//
// R 通常等于绑定到该矩阵的员工数，C 通常为 7（一周），但可以是任意正整数。
// 新类型，没有教师仓库的直接对应物；最接近的前身是教师的
// ShiftRotationPatternConstraint.pattern 字符串，这里被推广成真正的网格数据。
type Matrix struct {
	ID   string     `json:"id"`
	Rows [][]string `json:"rows"`
}

// NewMatrix 校验并构造一个矩阵
//
// 要求矩阵非空且每行等长；R*C 不是 7 的倍数时视为配置无效——教师源码对此
// 静默容忍，这次重写刻意改变了这一行为（见 DESIGN.md 的未决问题记录）。
func NewMatrix(id string, rows [][]string) (*Matrix, error) {
	m := &Matrix{ID: id, Rows: rows}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Validate 校验一个已经构造好的矩阵（例如从请求 JSON 直接解码出来的）是否
// 符合 NewMatrix 的同一组规则。请求路径（HTTP handler、cmd/rotactl）与 CLI
// 都直接反序列化出 Matrix 值而不经过 NewMatrix，所以这条校验必须在编排层
// 入口被显式调用，否则维度规则只会在测试用的 mustMatrix 辅助函数里生效。
func (m *Matrix) Validate() error {
	if len(m.Rows) == 0 || len(m.Rows[0]) == 0 {
		return fmt.Errorf("matrix %q: empty grid", m.ID)
	}
	c := len(m.Rows[0])
	for i, row := range m.Rows {
		if len(row) != c {
			return fmt.Errorf("matrix %q: row %d has length %d, want %d", m.ID, i, len(row), c)
		}
	}
	if (len(m.Rows)*c)%7 != 0 {
		return fmt.Errorf("matrix %q: R*C=%d is not a multiple of 7", m.ID, len(m.Rows)*c)
	}
	return nil
}

// RowCount 返回矩阵行数 R
func (m *Matrix) RowCount() int {
	return len(m.Rows)
}

// ColCount 返回矩阵列数 C
func (m *Matrix) ColCount() int {
	if len(m.Rows) == 0 {
		return 0
	}
	return len(m.Rows[0])
}

// SnakeLength 返回展平后蛇形序列的长度 R*C
func (m *Matrix) SnakeLength() int {
	return m.RowCount() * m.ColCount()
}

// Snake 按行主序展平整个矩阵
func (m *Matrix) Snake() []string {
	out := make([]string, 0, m.SnakeLength())
	for _, row := range m.Rows {
		out = append(out, row...)
	}
	return out
}

// At 返回蛇形序列上 index（可为负数或越界，按循环取模）位置的班次 id
func (m *Matrix) At(index int) string {
	snake := m.Snake()
	n := len(snake)
	if n == 0 {
		return ""
	}
	i := index % n
	if i < 0 {
		i += n
	}
	return snake[i]
}

// CellIndex 计算 (row, offset) 在蛇形序列中的起始索引
func (m *Matrix) CellIndex(row, offset int) int {
	return row*m.ColCount() + offset
}

// SetAt 按循环索引写入蛇形序列上的一个单元（用于变异算子）
func (m *Matrix) SetAt(index int, shiftID string) {
	c := m.ColCount()
	if c == 0 {
		return
	}
	n := m.SnakeLength()
	i := index % n
	if i < 0 {
		i += n
	}
	r, col := i/c, i%c
	m.Rows[r][col] = shiftID
}

// Clone 深拷贝矩阵
func (m *Matrix) Clone() *Matrix {
	rows := make([][]string, len(m.Rows))
	for i, row := range m.Rows {
		rows[i] = append([]string(nil), row...)
	}
	return &Matrix{ID: m.ID, Rows: rows}
}
