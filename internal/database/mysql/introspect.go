package mysql

import (
	"context"
	"strings"

	"github.com/soumikc/driftline/internal/database"
	"github.com/soumikc/driftline/internal/sqlschema"
)

// Introspector builds a sqlschema.Schema from a live MySQL database.
type Introspector struct {
	conn database.Conn
}

// NewIntrospector creates a MySQL schema introspector over conn.
func NewIntrospector(conn database.Conn) *Introspector {
	return &Introspector{conn: conn}
}

// Introspect reads the full catalog of one database. An empty name means the
// connection's current database.
func (in *Introspector) Introspect(ctx context.Context, dbName string) (*sqlschema.Schema, error) {
	if dbName == "" {
		if err := in.conn.QueryRow(ctx, "SELECT DATABASE()").Scan(&dbName); err != nil {
			return nil, err
		}
	}

	schema := &sqlschema.Schema{}
	if err := in.loadColumns(ctx, dbName, schema); err != nil {
		return nil, err
	}
	if err := in.loadKeys(ctx, dbName, schema); err != nil {
		return nil, err
	}
	if err := in.loadForeignKeys(ctx, dbName, schema); err != nil {
		return nil, err
	}
	return schema, nil
}

func (in *Introspector) loadColumns(ctx context.Context, dbName string, schema *sqlschema.Schema) error {
	const q = `
		SELECT c.table_name, c.column_name, c.data_type, c.column_type,
		       c.is_nullable = 'YES', c.column_default,
		       c.extra LIKE '%auto_increment%'
		FROM information_schema.columns c
		JOIN information_schema.tables t
		  ON t.table_schema = c.table_schema AND t.table_name = c.table_name
		WHERE c.table_schema = ? AND t.table_type = 'BASE TABLE'
		ORDER BY c.table_name, c.ordinal_position`

	rows, err := in.conn.Query(ctx, q, dbName)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			tableName, columnName, dataType, columnType string
			nullable, autoIncrement                     bool
			columnDefault                               *string
		)
		if err := rows.Scan(&tableName, &columnName, &dataType, &columnType, &nullable, &columnDefault, &autoIncrement); err != nil {
			return err
		}

		if len(schema.Tables) == 0 || schema.Tables[len(schema.Tables)-1].Name != tableName {
			schema.Tables = append(schema.Tables, sqlschema.Table{Name: tableName})
		}
		table := &schema.Tables[len(schema.Tables)-1]

		col := sqlschema.Column{
			Name:          columnName,
			Type:          mysqlColumnType(dataType, columnType),
			Arity:         sqlschema.Required,
			AutoIncrement: autoIncrement,
		}
		if nullable {
			col.Arity = sqlschema.Nullable
		}
		col.Default = mysqlDefault(columnDefault, autoIncrement)
		table.Columns = append(table.Columns, col)
	}
	return rows.Err()
}

// loadKeys reads primary keys and secondary indexes from
// information_schema.statistics in one pass.
func (in *Introspector) loadKeys(ctx context.Context, dbName string, schema *sqlschema.Schema) error {
	const q = `
		SELECT s.table_name, s.index_name, s.column_name,
		       s.non_unique = 0, s.index_type, s.collation, COALESCE(s.sub_part, 0)
		FROM information_schema.statistics s
		WHERE s.table_schema = ?
		ORDER BY s.table_name, s.index_name, s.seq_in_index`

	rows, err := in.conn.Query(ctx, q, dbName)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			tableName, indexName, columnName, indexType string
			unique                                      bool
			collation                                   *string
			subPart                                     int
		)
		if err := rows.Scan(&tableName, &indexName, &columnName, &unique, &indexType, &collation, &subPart); err != nil {
			return err
		}
		i := schema.TableIndex("", tableName)
		if i < 0 {
			continue
		}
		table := &schema.Tables[i]

		if indexName == "PRIMARY" {
			if table.PrimaryKey == nil {
				// MySQL primary keys cannot carry a name.
				table.PrimaryKey = &sqlschema.PrimaryKey{}
			}
			table.PrimaryKey.Columns = append(table.PrimaryKey.Columns, columnName)
			continue
		}

		ixs := table.Indexes
		if len(ixs) == 0 || ixs[len(ixs)-1].Name != indexName {
			table.Indexes = append(table.Indexes, sqlschema.Index{
				Name:      indexName,
				Unique:    unique,
				Algorithm: mysqlIndexAlgorithm(indexType),
			})
		}
		ix := &table.Indexes[len(table.Indexes)-1]
		sort := sqlschema.Ascending
		if collation != nil && *collation == "D" {
			sort = sqlschema.Descending
		}
		ix.Columns = append(ix.Columns, sqlschema.IndexColumn{Name: columnName, Sort: sort, Length: subPart})
	}
	return rows.Err()
}

func (in *Introspector) loadForeignKeys(ctx context.Context, dbName string, schema *sqlschema.Schema) error {
	const q = `
		SELECT kcu.table_name, kcu.constraint_name, kcu.column_name,
		       kcu.referenced_table_name, kcu.referenced_column_name,
		       rc.delete_rule, rc.update_rule
		FROM information_schema.key_column_usage kcu
		JOIN information_schema.referential_constraints rc
		  ON rc.constraint_name = kcu.constraint_name
		 AND rc.constraint_schema = kcu.table_schema
		WHERE kcu.table_schema = ? AND kcu.referenced_table_name IS NOT NULL
		ORDER BY kcu.table_name, kcu.constraint_name, kcu.ordinal_position`

	rows, err := in.conn.Query(ctx, q, dbName)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var tableName, constraintName, columnName, refTable, refColumn, deleteRule, updateRule string
		if err := rows.Scan(&tableName, &constraintName, &columnName, &refTable, &refColumn, &deleteRule, &updateRule); err != nil {
			return err
		}
		i := schema.TableIndex("", tableName)
		if i < 0 {
			continue
		}
		table := &schema.Tables[i]

		fks := table.ForeignKeys
		if len(fks) == 0 || fks[len(fks)-1].Name != constraintName {
			table.ForeignKeys = append(table.ForeignKeys, sqlschema.ForeignKey{
				Name:            constraintName,
				ReferencedTable: refTable,
				OnDelete:        mysqlReferentialAction(deleteRule),
				OnUpdate:        mysqlReferentialAction(updateRule),
			})
		}
		fk := &table.ForeignKeys[len(table.ForeignKeys)-1]
		fk.Columns = append(fk.Columns, columnName)
		fk.ReferencedColumns = append(fk.ReferencedColumns, refColumn)
	}
	return rows.Err()
}

// mysqlColumnType maps a MySQL data type to the abstract family, keeping the
// full column_type (with display width / length / unsigned) as the native
// annotation.
func mysqlColumnType(dataType, columnType string) sqlschema.ColumnType {
	ct := sqlschema.ColumnType{Native: columnType}

	switch dataType {
	case "tinyint":
		if strings.HasPrefix(columnType, "tinyint(1)") {
			ct.Family = sqlschema.FamilyBoolean
		} else {
			ct.Family = sqlschema.FamilyInt
		}
	case "smallint", "mediumint", "int":
		ct.Family = sqlschema.FamilyInt
	case "bigint":
		ct.Family = sqlschema.FamilyBigInt
	case "float", "double":
		ct.Family = sqlschema.FamilyFloat
	case "decimal":
		ct.Family = sqlschema.FamilyDecimal
	case "char", "varchar", "text", "tinytext", "mediumtext", "longtext":
		ct.Family = sqlschema.FamilyString
	case "datetime", "timestamp":
		ct.Family = sqlschema.FamilyDateTime
	case "date":
		ct.Family = sqlschema.FamilyDate
	case "time":
		ct.Family = sqlschema.FamilyTime
	case "json":
		ct.Family = sqlschema.FamilyJSON
	case "binary", "varbinary", "blob", "tinyblob", "mediumblob", "longblob":
		ct.Family = sqlschema.FamilyBytes
	case "enum":
		ct.Family = sqlschema.FamilyEnum
	default:
		ct.Family = sqlschema.FamilyUnsupported
	}
	return ct
}

func mysqlDefault(expr *string, autoIncrement bool) *sqlschema.Default {
	if autoIncrement {
		return &sqlschema.Default{Kind: sqlschema.DefaultSequence}
	}
	if expr == nil {
		return nil
	}
	e := *expr
	switch {
	case strings.HasPrefix(strings.ToUpper(e), "CURRENT_TIMESTAMP"):
		return &sqlschema.Default{Kind: sqlschema.DefaultNow}
	case strings.ContainsRune(e, '('):
		return &sqlschema.Default{Kind: sqlschema.DefaultDBGenerated, Value: e}
	default:
		return &sqlschema.Default{Kind: sqlschema.DefaultLiteral, Value: e}
	}
}

func mysqlReferentialAction(rule string) sqlschema.ReferentialAction {
	switch rule {
	case "CASCADE":
		return sqlschema.Cascade
	case "SET NULL":
		return sqlschema.SetNull
	case "SET DEFAULT":
		return sqlschema.SetDefault
	case "RESTRICT":
		return sqlschema.Restrict
	default:
		return sqlschema.NoAction
	}
}

func mysqlIndexAlgorithm(indexType string) sqlschema.IndexAlgorithm {
	switch indexType {
	case "HASH":
		return sqlschema.Hash
	case "FULLTEXT":
		return sqlschema.Fulltext
	default:
		return sqlschema.BTree
	}
}
