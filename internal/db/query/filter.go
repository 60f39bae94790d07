package query

import (
	"strings"

	"gorm.io/gorm"
)

// Filter accumulates AND-joined conditions with bound arguments. Column
// names come from code, never from request input.
type Filter struct {
	conditions []string
	args       []interface{}
}

func NewFilter() *Filter {
	return &Filter{}
}

func (f *Filter) Equal(column string, value interface{}) *Filter {
	return f.add(column+" = ?", value)
}

func (f *Filter) NotEqual(column string, value interface{}) *Filter {
	return f.add(column+" <> ?", value)
}

func (f *Filter) GreaterThan(column string, value interface{}) *Filter {
	return f.add(column+" > ?", value)
}

func (f *Filter) In(column string, values interface{}) *Filter {
	return f.add(column+" IN ?", values)
}

// Like matches pattern anywhere in column, case-insensitively.
func (f *Filter) Like(column, pattern string) *Filter {
	escaped := strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`).Replace(strings.ToLower(pattern))
	return f.add("LOWER("+column+") LIKE ? ESCAPE '\\'", "%"+escaped+"%")
}

// AnyLike matches pattern in at least one of the columns.
func (f *Filter) AnyLike(pattern string, columns ...string) *Filter {
	if len(columns) == 0 {
		return f
	}
	sub := NewFilter()
	for _, c := range columns {
		sub.Like(c, pattern)
	}
	return f.add("("+strings.Join(sub.conditions, " OR ")+")", sub.args...)
}

func (f *Filter) Empty() bool {
	return len(f.conditions) == 0
}

// Build returns the WHERE clause body and its arguments.
func (f *Filter) Build() (string, []interface{}) {
	return strings.Join(f.conditions, " AND "), f.args
}

// Apply adds the conditions to tx.
func (f *Filter) Apply(tx *gorm.DB) *gorm.DB {
	if f.Empty() {
		return tx
	}
	clause, args := f.Build()
	return tx.Where(clause, args...)
}

func (f *Filter) add(condition string, args ...interface{}) *Filter {
	f.conditions = append(f.conditions, condition)
	f.args = append(f.args, args...)
	return f
}
