package main

import (
	"context"

	"github.com/soumikc/driftline/internal/config"
	"github.com/soumikc/driftline/internal/database"
	"github.com/soumikc/driftline/internal/database/mssql"
	"github.com/soumikc/driftline/internal/database/mysql"
	"github.com/soumikc/driftline/internal/database/postgres"
	"github.com/soumikc/driftline/internal/database/sqlite"
	"github.com/soumikc/driftline/internal/errs"
	"github.com/soumikc/driftline/internal/filestore/minio"
	"github.com/soumikc/driftline/internal/flavour"
	"github.com/soumikc/driftline/internal/history"
	"github.com/soumikc/driftline/internal/logger"
	"github.com/soumikc/driftline/internal/migrate"
	"github.com/soumikc/driftline/internal/sqlschema"
)

// runtime carries the wired pieces a command needs. close releases whatever
// connections setup opened.
type runtime struct {
	cfg     *config.Config
	flav    flavour.Flavour
	log     *logger.Logger
	conn    database.Conn // nil when planning offline
	closers []func()
}

func setup(ctx context.Context) (*runtime, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	flav, err := cfg.Flavor()
	if err != nil {
		return nil, err
	}

	r := &runtime{
		cfg:  cfg,
		flav: flav,
		log:  logger.New(cfg.LoggerSettings()),
	}

	if cfg.Database.DSN != "" {
		conn, err := openConn(ctx, cfg.DatabaseSettings())
		if err != nil {
			return nil, err
		}
		r.conn = conn
		r.closers = append(r.closers, conn.Close)
	}

	return r, nil
}

func (r *runtime) close() {
	for _, fn := range r.closers {
		fn()
	}
}

// openConn picks the driver package for the configured engine.
func openConn(ctx context.Context, cfg *database.Config) (database.Conn, error) {
	switch cfg.Driver {
	case database.DriverPostgres:
		return postgres.New(ctx, cfg)
	case database.DriverMySQL:
		return mysql.New(ctx, cfg)
	case database.DriverSQLite:
		return sqlite.New(ctx, cfg)
	case database.DriverMSSQL:
		return mssql.New(ctx, cfg)
	default:
		return nil, errs.New(errs.ErrKindInvalidInput, "unknown driver "+string(cfg.Driver))
	}
}

// introspector returns a live-catalog source for the target database, or nil
// when the engine has no introspector or no connection is configured.
func (r *runtime) introspector() migrate.Introspector {
	if r.conn == nil {
		return nil
	}
	switch r.cfg.DatabaseSettings().Driver {
	case database.DriverPostgres:
		in := postgres.NewIntrospector(r.conn)
		ns := r.cfg.Database.Namespace
		return migrate.IntrospectorFunc(func(ctx context.Context) (*sqlschema.Schema, error) {
			return in.Introspect(ctx, ns)
		})
	case database.DriverMySQL:
		in := mysql.NewIntrospector(r.conn)
		ns := r.cfg.Database.Namespace
		return migrate.IntrospectorFunc(func(ctx context.Context) (*sqlschema.Schema, error) {
			return in.Introspect(ctx, ns)
		})
	default:
		return nil
	}
}

// replayer opens the shadow database and wraps it in a history replayer.
// Only the postgres wire protocol supports shadow replay today.
func (r *runtime) replayer(ctx context.Context) (migrate.ShadowReplayer, error) {
	if r.cfg.Shadow.DSN == "" {
		return nil, errs.New(errs.ErrKindInvalidInput, "shadow.dsn is required to replay a migration history")
	}
	if r.cfg.DatabaseSettings().Driver != database.DriverPostgres {
		return nil, errs.New(errs.ErrKindUnsupported, "history replay is only supported on postgres-protocol backends")
	}

	conn, err := openConn(ctx, r.cfg.ShadowSettings())
	if err != nil {
		return nil, err
	}
	r.closers = append(r.closers, conn.Close)

	return postgres.NewReplayer(conn, r.cfg.Shadow.Namespace), nil
}

// loadHistory reads the configured history source. ok is false when no
// history is configured at all.
func (r *runtime) loadHistory(ctx context.Context) (scripts []history.Script, ok bool, err error) {
	switch {
	case r.cfg.History.Dir != "":
		scripts, err = history.LoadDir(r.cfg.History.Dir)
		return scripts, true, err
	case r.cfg.History.Store != nil:
		storeCfg := r.cfg.StoreSettings()
		store, err := minio.New(ctx, storeCfg)
		if err != nil {
			return nil, true, err
		}
		defer store.Close()
		scripts, err = history.LoadStore(ctx, store, storeCfg)
		return scripts, true, err
	default:
		return nil, false, nil
	}
}
