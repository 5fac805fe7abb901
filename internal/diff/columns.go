package diff

import (
	"strings"

	"github.com/soumikc/driftline/internal/sqlschema"
)

// ColumnChanges is a bitset over the attributes that can differ between the
// two sides of a column pair. It drives both the step builder and the
// destructive checker.
type ColumnChanges uint8

const (
	ColumnTypeChanged ColumnChanges = 1 << iota
	ColumnArityChanged
	ColumnDefaultChanged
	ColumnAutoIncrementChanged
)

// TypeChanged reports whether the column type differs.
func (c ColumnChanges) TypeChanged() bool { return c&ColumnTypeChanged != 0 }

// ArityChanged reports whether nullability differs.
func (c ColumnChanges) ArityChanged() bool { return c&ColumnArityChanged != 0 }

// DefaultChanged reports whether the default value differs.
func (c ColumnChanges) DefaultChanged() bool { return c&ColumnDefaultChanged != 0 }

// AutoIncrementChanged reports whether the autoincrement flag differs.
func (c ColumnChanges) AutoIncrementChanged() bool { return c&ColumnAutoIncrementChanged != 0 }

// DiffersInSomething reports whether any attribute differs.
func (c ColumnChanges) DiffersInSomething() bool { return c != 0 }

// OnlyDefaultChanged reports whether the default is the single difference,
// the one alteration that is always safe to apply.
func (c ColumnChanges) OnlyDefaultChanged() bool { return c == ColumnDefaultChanged }

func (c ColumnChanges) String() string {
	var parts []string
	if c.TypeChanged() {
		parts = append(parts, "type")
	}
	if c.ArityChanged() {
		parts = append(parts, "arity")
	}
	if c.DefaultChanged() {
		parts = append(parts, "default")
	}
	if c.AutoIncrementChanged() {
		parts = append(parts, "autoincrement")
	}
	return strings.Join(parts, ",")
}

// compareColumns computes the change bitset for a column pair.
func compareColumns(pair sqlschema.Pair[sqlschema.ColumnWalker]) ColumnChanges {
	previous, next := pair.Previous.Get(), pair.Next.Get()

	var changes ColumnChanges
	if !previous.Type.Equal(next.Type) {
		changes |= ColumnTypeChanged
	}
	if previous.Arity != next.Arity {
		changes |= ColumnArityChanged
	}
	if !sqlschema.DefaultsEqual(previous.Default, next.Default) {
		changes |= ColumnDefaultChanged
	}
	if previous.AutoIncrement != next.AutoIncrement {
		changes |= ColumnAutoIncrementChanged
	}
	return changes
}
