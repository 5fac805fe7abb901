package postgres

import (
	"context"
	"strconv"
	"strings"

	"github.com/soumikc/driftline/internal/database"
	"github.com/soumikc/driftline/internal/sqlschema"
)

// Introspector builds a sqlschema.Schema from a live PostgreSQL database.
// It is the default previous-catalog source for the Postgres and CockroachDB
// flavours.
type Introspector struct {
	conn database.Conn
}

// NewIntrospector creates a PostgreSQL schema introspector over conn.
func NewIntrospector(conn database.Conn) *Introspector {
	return &Introspector{conn: conn}
}

// Introspect reads the full catalog of one namespace.
func (in *Introspector) Introspect(ctx context.Context, namespace string) (*sqlschema.Schema, error) {
	if namespace == "" {
		namespace = "public"
	}

	schema := &sqlschema.Schema{}

	enums, err := in.loadEnums(ctx, namespace)
	if err != nil {
		return nil, err
	}
	schema.Enums = enums

	enumNames := make(map[string]bool, len(enums))
	for _, e := range enums {
		enumNames[e.Name] = true
	}

	if err := in.loadColumns(ctx, namespace, schema, enumNames); err != nil {
		return nil, err
	}
	if err := in.loadPrimaryKeys(ctx, namespace, schema); err != nil {
		return nil, err
	}
	if err := in.loadForeignKeys(ctx, namespace, schema); err != nil {
		return nil, err
	}
	if err := in.loadIndexes(ctx, namespace, schema); err != nil {
		return nil, err
	}
	return schema, nil
}

func (in *Introspector) loadEnums(ctx context.Context, namespace string) ([]sqlschema.Enum, error) {
	const q = `
		SELECT t.typname, e.enumlabel
		FROM pg_type t
		JOIN pg_enum e ON e.enumtypid = t.oid
		JOIN pg_namespace ns ON ns.oid = t.typnamespace
		WHERE ns.nspname = $1
		ORDER BY t.typname, e.enumsortorder`

	rows, err := in.conn.Query(ctx, q, namespace)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var enums []sqlschema.Enum
	for rows.Next() {
		var name, label string
		if err := rows.Scan(&name, &label); err != nil {
			return nil, err
		}
		if len(enums) == 0 || enums[len(enums)-1].Name != name {
			enums = append(enums, sqlschema.Enum{Name: name})
		}
		enums[len(enums)-1].Values = append(enums[len(enums)-1].Values, label)
	}
	return enums, rows.Err()
}

func (in *Introspector) loadColumns(ctx context.Context, namespace string, schema *sqlschema.Schema, enumNames map[string]bool) error {
	const q = `
		SELECT c.table_name, c.column_name, c.udt_name,
		       c.is_nullable = 'YES', c.column_default,
		       c.character_maximum_length, c.is_identity = 'YES'
		FROM information_schema.columns c
		JOIN information_schema.tables t
		  ON t.table_schema = c.table_schema AND t.table_name = c.table_name
		WHERE c.table_schema = $1 AND t.table_type = 'BASE TABLE'
		ORDER BY c.table_name, c.ordinal_position`

	rows, err := in.conn.Query(ctx, q, namespace)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			tableName, columnName, udtName string
			nullable, identity             bool
			columnDefault                  *string
			maxLength                      *int
		)
		if err := rows.Scan(&tableName, &columnName, &udtName, &nullable, &columnDefault, &maxLength, &identity); err != nil {
			return err
		}

		if len(schema.Tables) == 0 || schema.Tables[len(schema.Tables)-1].Name != tableName {
			schema.Tables = append(schema.Tables, sqlschema.Table{Namespace: namespace, Name: tableName})
		}
		table := &schema.Tables[len(schema.Tables)-1]

		col := sqlschema.Column{
			Name:  columnName,
			Type:  pgColumnType(udtName, maxLength, enumNames),
			Arity: sqlschema.Required,
		}
		if nullable {
			col.Arity = sqlschema.Nullable
		}
		if strings.HasPrefix(udtName, "_") {
			col.Arity = sqlschema.List
		}
		col.Default, col.AutoIncrement = pgDefault(columnDefault, identity)
		table.Columns = append(table.Columns, col)
	}
	return rows.Err()
}

func (in *Introspector) loadPrimaryKeys(ctx context.Context, namespace string, schema *sqlschema.Schema) error {
	const q = `
		SELECT tc.table_name, tc.constraint_name, kcu.column_name
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
		  ON kcu.constraint_name = tc.constraint_name
		 AND kcu.table_schema = tc.table_schema
		WHERE tc.table_schema = $1 AND tc.constraint_type = 'PRIMARY KEY'
		ORDER BY tc.table_name, kcu.ordinal_position`

	rows, err := in.conn.Query(ctx, q, namespace)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var tableName, constraintName, columnName string
		if err := rows.Scan(&tableName, &constraintName, &columnName); err != nil {
			return err
		}
		i := schema.TableIndex(namespace, tableName)
		if i < 0 {
			continue
		}
		table := &schema.Tables[i]
		if table.PrimaryKey == nil {
			table.PrimaryKey = &sqlschema.PrimaryKey{Name: constraintName}
		}
		table.PrimaryKey.Columns = append(table.PrimaryKey.Columns, columnName)
	}
	return rows.Err()
}

func (in *Introspector) loadForeignKeys(ctx context.Context, namespace string, schema *sqlschema.Schema) error {
	// information_schema loses column pairing on composite keys, so this
	// goes through pg_constraint directly.
	const q = `
		SELECT src.relname, con.conname, att.attname, ref.relname, refatt.attname,
		       con.confdeltype, con.confupdtype
		FROM pg_constraint con
		JOIN pg_class src ON src.oid = con.conrelid
		JOIN pg_namespace ns ON ns.oid = src.relnamespace
		JOIN pg_class ref ON ref.oid = con.confrelid
		CROSS JOIN LATERAL unnest(con.conkey, con.confkey) WITH ORDINALITY AS k(attnum, refattnum, ord)
		JOIN pg_attribute att ON att.attrelid = con.conrelid AND att.attnum = k.attnum
		JOIN pg_attribute refatt ON refatt.attrelid = con.confrelid AND refatt.attnum = k.refattnum
		WHERE con.contype = 'f' AND ns.nspname = $1
		ORDER BY src.relname, con.conname, k.ord`

	rows, err := in.conn.Query(ctx, q, namespace)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var tableName, constraintName, columnName, refTable, refColumn string
		var delType, updType string
		if err := rows.Scan(&tableName, &constraintName, &columnName, &refTable, &refColumn, &delType, &updType); err != nil {
			return err
		}
		i := schema.TableIndex(namespace, tableName)
		if i < 0 {
			continue
		}
		table := &schema.Tables[i]

		fks := table.ForeignKeys
		if len(fks) == 0 || fks[len(fks)-1].Name != constraintName {
			table.ForeignKeys = append(table.ForeignKeys, sqlschema.ForeignKey{
				Name:            constraintName,
				ReferencedTable: refTable,
				OnDelete:        pgReferentialAction(delType),
				OnUpdate:        pgReferentialAction(updType),
			})
		}
		fk := &table.ForeignKeys[len(table.ForeignKeys)-1]
		fk.Columns = append(fk.Columns, columnName)
		fk.ReferencedColumns = append(fk.ReferencedColumns, refColumn)
	}
	return rows.Err()
}

func (in *Introspector) loadIndexes(ctx context.Context, namespace string, schema *sqlschema.Schema) error {
	const q = `
		SELECT t.relname, i.relname, ix.indisunique, am.amname,
		       a.attname, (ix.indoption[k.ord-1] & 1) = 1
		FROM pg_index ix
		JOIN pg_class i ON i.oid = ix.indexrelid
		JOIN pg_class t ON t.oid = ix.indrelid
		JOIN pg_namespace ns ON ns.oid = t.relnamespace
		JOIN pg_am am ON am.oid = i.relam
		CROSS JOIN LATERAL unnest(ix.indkey) WITH ORDINALITY AS k(attnum, ord)
		JOIN pg_attribute a ON a.attrelid = t.oid AND a.attnum = k.attnum
		WHERE ns.nspname = $1 AND NOT ix.indisprimary AND t.relkind = 'r'
		ORDER BY t.relname, i.relname, k.ord`

	rows, err := in.conn.Query(ctx, q, namespace)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var tableName, indexName, amName, columnName string
		var unique, desc bool
		if err := rows.Scan(&tableName, &indexName, &unique, &amName, &columnName, &desc); err != nil {
			return err
		}
		i := schema.TableIndex(namespace, tableName)
		if i < 0 {
			continue
		}
		table := &schema.Tables[i]

		ixs := table.Indexes
		if len(ixs) == 0 || ixs[len(ixs)-1].Name != indexName {
			table.Indexes = append(table.Indexes, sqlschema.Index{
				Name:      indexName,
				Unique:    unique,
				Algorithm: pgIndexAlgorithm(amName),
			})
		}
		ix := &table.Indexes[len(table.Indexes)-1]
		sort := sqlschema.Ascending
		if desc {
			sort = sqlschema.Descending
		}
		ix.Columns = append(ix.Columns, sqlschema.IndexColumn{Name: columnName, Sort: sort})
	}
	return rows.Err()
}

// pgColumnType maps a udt_name to the abstract type family, keeping the
// native name as annotation.
func pgColumnType(udtName string, maxLength *int, enumNames map[string]bool) sqlschema.ColumnType {
	base := strings.TrimPrefix(udtName, "_") // arrays carry the element type

	ct := sqlschema.ColumnType{Native: base}
	if maxLength != nil {
		ct.Native = base + "(" + strconv.Itoa(*maxLength) + ")"
	}

	switch base {
	case "int2", "int4":
		ct.Family = sqlschema.FamilyInt
	case "int8":
		ct.Family = sqlschema.FamilyBigInt
	case "float4", "float8":
		ct.Family = sqlschema.FamilyFloat
	case "numeric":
		ct.Family = sqlschema.FamilyDecimal
	case "bool":
		ct.Family = sqlschema.FamilyBoolean
	case "text", "varchar", "bpchar", "name", "citext":
		ct.Family = sqlschema.FamilyString
	case "timestamp", "timestamptz":
		ct.Family = sqlschema.FamilyDateTime
	case "date":
		ct.Family = sqlschema.FamilyDate
	case "time", "timetz":
		ct.Family = sqlschema.FamilyTime
	case "json", "jsonb":
		ct.Family = sqlschema.FamilyJSON
	case "bytea":
		ct.Family = sqlschema.FamilyBytes
	case "uuid":
		ct.Family = sqlschema.FamilyUUID
	default:
		if enumNames[base] {
			ct.Family = sqlschema.FamilyEnum
			ct.EnumName = base
			ct.Native = ""
		} else {
			ct.Family = sqlschema.FamilyUnsupported
		}
	}
	return ct
}

// pgDefault interprets a column_default expression.
func pgDefault(expr *string, identity bool) (*sqlschema.Default, bool) {
	if identity {
		return &sqlschema.Default{Kind: sqlschema.DefaultSequence}, true
	}
	if expr == nil {
		return nil, false
	}
	e := *expr
	switch {
	case strings.HasPrefix(e, "nextval("):
		return &sqlschema.Default{Kind: sqlschema.DefaultSequence, Value: e}, true
	case strings.HasPrefix(e, "now()") || strings.HasPrefix(e, "CURRENT_TIMESTAMP"):
		return &sqlschema.Default{Kind: sqlschema.DefaultNow}, false
	case strings.ContainsRune(e, '('):
		return &sqlschema.Default{Kind: sqlschema.DefaultDBGenerated, Value: e}, false
	default:
		// Strip the "::type" suffix Postgres appends to literals.
		if i := strings.Index(e, "::"); i >= 0 {
			e = e[:i]
		}
		return &sqlschema.Default{Kind: sqlschema.DefaultLiteral, Value: strings.Trim(e, "'")}, false
	}
}

func pgReferentialAction(code string) sqlschema.ReferentialAction {
	switch code {
	case "c":
		return sqlschema.Cascade
	case "n":
		return sqlschema.SetNull
	case "d":
		return sqlschema.SetDefault
	case "r":
		return sqlschema.Restrict
	default:
		return sqlschema.NoAction
	}
}

func pgIndexAlgorithm(amName string) sqlschema.IndexAlgorithm {
	switch amName {
	case "hash":
		return sqlschema.Hash
	case "gin":
		return sqlschema.Gin
	case "gist":
		return sqlschema.Gist
	default:
		return sqlschema.BTree
	}
}
