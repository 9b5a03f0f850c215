package repository

import "strings"

// assignments accumulates the SET clause of a partial UPDATE.
type assignments struct {
	cols []string
	args []any
}

func (a *assignments) set(col string, v any) {
	a.cols = append(a.cols, col+" = ?")
	a.args = append(a.args, v)
}

func (a *assignments) empty() bool { return len(a.cols) == 0 }

// clause renders the SET list, always bumping updated_at.
func (a *assignments) clause() string {
	return strings.Join(append(a.cols, "updated_at = CURRENT_TIMESTAMP"), ", ")
}
