package postgres

import (
	"context"
	"strings"

	"github.com/soumikc/driftline/internal/database"
	"github.com/soumikc/driftline/internal/history"
	"github.com/soumikc/driftline/internal/sqlschema"
)

// Replayer applies a migration history to a shadow database and introspects
// the resulting catalog. The connection must point at a disposable database:
// Replay drops and recreates the working namespace before every run.
type Replayer struct {
	conn      database.Conn
	namespace string
}

// NewReplayer creates a replayer over the shadow connection. An empty
// namespace means "public".
func NewReplayer(conn database.Conn, namespace string) *Replayer {
	if namespace == "" {
		namespace = "public"
	}
	return &Replayer{conn: conn, namespace: namespace}
}

// Replay resets the namespace, executes the scripts in order and returns the
// introspected catalog. The first failing script aborts the replay.
func (r *Replayer) Replay(ctx context.Context, scripts []history.Script) (*sqlschema.Schema, error) {
	ident := quoteIdent(r.namespace)
	if err := r.conn.Exec(ctx, "DROP SCHEMA IF EXISTS "+ident+" CASCADE"); err != nil {
		return nil, err
	}
	if err := r.conn.Exec(ctx, "CREATE SCHEMA "+ident); err != nil {
		return nil, err
	}

	for _, script := range scripts {
		if err := r.conn.Exec(ctx, script.SQL); err != nil {
			return nil, err
		}
	}

	return NewIntrospector(r.conn).Introspect(ctx, r.namespace)
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
