package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	gomysql "github.com/go-sql-driver/mysql"
	"golang.org/x/crypto/ssh"

	"github.com/mysqlschema/mysqlschema/internal/logger"
)

// Driver is a connection to one database. Introspection uses the connection pool;
// Exec and the session helpers share one pinned connection so that session
// variables such as foreign_key_checks apply to the statements that follow.
type Driver struct {
	db          *sql.DB
	database    string
	concurrency int
	tunnel      *ssh.Client
	network     string

	mu      sync.Mutex
	session *sql.Conn
}

// Connect opens the database described by cfg, through an SSH tunnel when configured,
// and verifies it with a ping
func Connect(ctx context.Context, cfg *Config) (*Driver, error) {
	log := logger.Get()

	log.Debug("Attempting database connection",
		"host", cfg.Host,
		"port", cfg.Port,
		"database", cfg.Database,
		"user", cfg.User,
		"ssh", cfg.SSH != nil,
	)

	if cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()
	}

	network := "tcp"
	var tunnel *ssh.Client
	if cfg.SSH != nil {
		var err error
		tunnel, err = openTunnel(ctx, cfg.SSH)
		if err != nil {
			log.Debug("SSH tunnel failed", "error", err)
			return nil, fmt.Errorf("failed to open ssh tunnel: %w", err)
		}
		network = registerTunnel(cfg.SSH, tunnel)
	}

	connector, err := gomysql.NewConnector(cfg.driverConfig(network))
	if err != nil {
		closeTunnel(network, tunnel)
		return nil, fmt.Errorf("failed to configure database connection: %w", err)
	}
	db := sql.OpenDB(connector)

	if err := db.PingContext(ctx); err != nil {
		log.Debug("Database ping failed", "error", err)
		db.Close()
		closeTunnel(network, tunnel)
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Debug("Database connection established successfully")
	return &Driver{
		db:          db,
		database:    cfg.Database,
		concurrency: cfg.concurrency(),
		tunnel:      tunnel,
		network:     network,
	}, nil
}

func closeTunnel(network string, tunnel *ssh.Client) {
	if tunnel != nil {
		unregisterTunnel(network, tunnel)
		tunnel.Close()
	}
}

// DB returns the underlying connection pool
func (d *Driver) DB() *sql.DB {
	return d.db
}

// Database returns the name of the connected database
func (d *Driver) Database() string {
	return d.database
}

// Close releases the session connection, the pool and the SSH tunnel
func (d *Driver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	var errs []error
	if d.session != nil {
		errs = append(errs, d.session.Close())
		d.session = nil
	}
	errs = append(errs, d.db.Close())
	if d.tunnel != nil {
		unregisterTunnel(d.network, d.tunnel)
		errs = append(errs, d.tunnel.Close())
	}
	return errors.Join(errs...)
}

// conn returns the pinned session connection, opening it on first use
func (d *Driver) conn(ctx context.Context) (*sql.Conn, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.session != nil {
		return d.session, nil
	}
	conn, err := d.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire session connection: %w", err)
	}
	d.session = conn
	return conn, nil
}

// Exec runs statements one by one on the session connection and stops at the first failure
func (d *Driver) Exec(ctx context.Context, stmts []string) error {
	conn, err := d.conn(ctx)
	if err != nil {
		return err
	}
	for i, stmt := range stmts {
		if _, err := ExecContextWithLogging(ctx, conn, stmt, fmt.Sprintf("statement %d of %d", i+1, len(stmts))); err != nil {
			return fmt.Errorf("failed to execute statement %d: %w\n%s", i+1, err, stmt)
		}
	}
	return nil
}

// Execer is satisfied by *sql.DB, *sql.Conn and *sql.Tx
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// ExecContextWithLogging executes SQL with debug logging if debug mode is enabled.
// It logs the SQL statement before execution and the result/error after execution.
func ExecContextWithLogging(ctx context.Context, db Execer, sqlStmt string, description string) (sql.Result, error) {
	isDebug := logger.IsDebug()
	if isDebug {
		logger.Get().Debug("Executing SQL", "description", description, "sql", sqlStmt)
	}

	result, err := db.ExecContext(ctx, sqlStmt)

	if isDebug {
		if err != nil {
			logger.Get().Debug("SQL execution failed", "description", description, "error", err)
		} else {
			logger.Get().Debug("SQL execution succeeded", "description", description)
		}
	}

	return result, err
}
