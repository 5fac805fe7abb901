package sqlschema

// Family is the abstract category of a column type, shared by all backends.
// Backend-specific precision/length lives in ColumnType.Native.
type Family string

const (
	FamilyInt         Family = "int"
	FamilyBigInt      Family = "bigint"
	FamilyFloat       Family = "float"
	FamilyDecimal     Family = "decimal"
	FamilyBoolean     Family = "boolean"
	FamilyString      Family = "string"
	FamilyDateTime    Family = "datetime"
	FamilyDate        Family = "date"
	FamilyTime        Family = "time"
	FamilyJSON        Family = "json"
	FamilyBytes       Family = "bytes"
	FamilyUUID        Family = "uuid"
	FamilyEnum        Family = "enum"
	FamilyUnsupported Family = "unsupported"
)

// ColumnType is the type of a column: an abstract family plus an optional
// backend-native annotation (e.g. "varchar(191)") and, for enums, the name
// of the database enum type.
type ColumnType struct {
	Family   Family `json:"family"`
	Native   string `json:"native,omitempty"`
	EnumName string `json:"enum_name,omitempty"`
}

// Equal reports whether two column types are identical, native annotation
// included.
func (ct ColumnType) Equal(other ColumnType) bool {
	return ct == other
}

// String renders the type for diagnostics: the native annotation when one is
// known, the family otherwise.
func (ct ColumnType) String() string {
	if ct.Native != "" {
		return ct.Native
	}
	if ct.Family == FamilyEnum && ct.EnumName != "" {
		return "enum(" + ct.EnumName + ")"
	}
	return string(ct.Family)
}

// Arity is the nullability of a column.
type Arity string

const (
	Required Arity = "required"
	Nullable Arity = "nullable"
	List     Arity = "list" // array columns (Postgres)
)

// DefaultKind distinguishes how a column default is produced.
type DefaultKind string

const (
	DefaultLiteral     DefaultKind = "literal"     // constant value
	DefaultNow         DefaultKind = "now"         // current timestamp
	DefaultSequence    DefaultKind = "sequence"    // nextval / identity
	DefaultDBGenerated DefaultKind = "dbgenerated" // arbitrary expression
)

// Default is a column default value or expression.
type Default struct {
	Kind  DefaultKind `json:"kind"`
	Value string      `json:"value,omitempty"`
}

// DefaultsEqual compares two optional defaults.
func DefaultsEqual(a, b *Default) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// SortOrder is the direction of one index key part.
type SortOrder string

const (
	Ascending  SortOrder = "asc"
	Descending SortOrder = "desc"
)

// IndexAlgorithm is the index access method.
type IndexAlgorithm string

const (
	BTree    IndexAlgorithm = "btree"
	Hash     IndexAlgorithm = "hash"
	Gin      IndexAlgorithm = "gin"
	Gist     IndexAlgorithm = "gist"
	Fulltext IndexAlgorithm = "fulltext"
)

// ReferentialAction is an ON DELETE / ON UPDATE behaviour.
type ReferentialAction string

const (
	NoAction   ReferentialAction = "no_action"
	Restrict   ReferentialAction = "restrict"
	Cascade    ReferentialAction = "cascade"
	SetNull    ReferentialAction = "set_null"
	SetDefault ReferentialAction = "set_default"
)
