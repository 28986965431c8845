// Package mysql connects to a live MySQL server to introspect, dump and migrate a schema.
package mysql

import (
	"fmt"
	"net"
	"strconv"
	"time"

	gomysql "github.com/go-sql-driver/mysql"
)

const (
	defaultPort        = 3306
	defaultConcurrency = 8
)

// Config holds database connection parameters
type Config struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string

	// ConnectTimeout bounds the TCP and SSH handshakes. Zero means no timeout.
	ConnectTimeout time.Duration

	// Concurrency caps the number of SHOW CREATE queries run in parallel during introspection
	Concurrency int

	// SSH tunnels the connection through a bastion host when set
	SSH *SSHConfig
}

// ConfigFromDSN builds a Config from a go-sql-driver DSN such as
// "user:pass@tcp(host:3306)/db"
func ConfigFromDSN(dsn string) (*Config, error) {
	parsed, err := gomysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse mysql dsn: %w", err)
	}
	host, portStr, err := net.SplitHostPort(parsed.Addr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse address %q: %w", parsed.Addr, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid port %q: %w", portStr, err)
	}
	return &Config{
		Host:           host,
		Port:           port,
		Database:       parsed.DBName,
		User:           parsed.User,
		Password:       parsed.Passwd,
		ConnectTimeout: parsed.Timeout,
	}, nil
}

// Addr returns host:port, defaulting the port to 3306
func (c *Config) Addr() string {
	port := c.Port
	if port == 0 {
		port = defaultPort
	}
	return net.JoinHostPort(c.Host, strconv.Itoa(port))
}

func (c *Config) concurrency() int {
	if c.Concurrency > 0 {
		return c.Concurrency
	}
	return defaultConcurrency
}

// driverConfig translates the config into go-sql-driver settings. network is "tcp"
// or the name of a registered SSH dialer.
func (c *Config) driverConfig(network string) *gomysql.Config {
	cfg := gomysql.NewConfig()
	cfg.User = c.User
	cfg.Passwd = c.Password
	cfg.Net = network
	cfg.Addr = c.Addr()
	cfg.DBName = c.Database
	cfg.Timeout = c.ConnectTimeout
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	// Routine bodies contain ';' and are sent as one statement; never split them
	cfg.MultiStatements = false
	cfg.Params = map[string]string{"charset": "utf8mb4"}
	return cfg
}

// DSN returns the connection string without the SSH tunnel, for logging and tests
func (c *Config) DSN() string {
	return c.driverConfig("tcp").FormatDSN()
}
