package flavour

import (
	"strconv"
	"strings"

	"github.com/soumikc/driftline/internal/sqlschema"
)

// castMatrix maps (previous family, next family) to a classification.
// Pairs absent from the matrix are NotCastable. Same-family transitions
// (native annotation changes) are handled by classifyNativeChange before the
// matrix is consulted.
type castMatrix map[sqlschema.Family]map[sqlschema.Family]ColumnTypeChange

func (m castMatrix) classify(previous, next sqlschema.ColumnType) ColumnTypeChange {
	if previous.Family == next.Family {
		return classifyNativeChange(previous, next)
	}
	if row, ok := m[previous.Family]; ok {
		if kind, ok := row[next.Family]; ok {
			return kind
		}
	}
	return NotCastable
}

// classifyNativeChange handles a type change within one family, i.e. only
// the backend-native annotation moved (varchar(10) -> varchar(20), enum
// value list changed, precision changed).
func classifyNativeChange(previous, next sqlschema.ColumnType) ColumnTypeChange {
	if previous.Family == sqlschema.FamilyEnum {
		// The enum type itself changed. Values may have been removed;
		// only live data can tell whether rows reference them.
		return RiskyCast
	}
	prevLen, prevOK := nativeLength(previous.Native)
	nextLen, nextOK := nativeLength(next.Native)
	if prevOK && nextOK {
		if nextLen >= prevLen {
			return SafeCast
		}
		return RiskyCast
	}
	if prevOK && !nextOK {
		// Length restriction lifted (varchar(n) -> text).
		return SafeCast
	}
	return RiskyCast
}

// nativeLength extracts the single parenthesised length of a native type
// annotation, e.g. 191 from "varchar(191)". Types without a plain length
// (none, or precision/scale pairs) report ok=false.
func nativeLength(native string) (int, bool) {
	open := strings.IndexByte(native, '(')
	end := strings.IndexByte(native, ')')
	if open < 0 || end < open {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(native[open+1 : end]))
	if err != nil {
		return 0, false
	}
	return n, true
}
