// Package testutil provides shared test utilities for mysqlschema
package testutil

import (
	"context"
	"database/sql"
	"io"
	"log"
	"net"
	"os"
	"strconv"
	"testing"

	_ "github.com/go-sql-driver/mysql"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mysql"
)

var suppressedLogger = log.New(io.Discard, "", 0)

// getMySQLVersion returns the MySQL image tag to use for testing.
// It reads from the MYSQLSCHEMA_MYSQL_VERSION environment variable,
// defaulting to "8.0" if not set.
func getMySQLVersion() string {
	if version := os.Getenv("MYSQLSCHEMA_MYSQL_VERSION"); version != "" {
		return version
	}
	return "8.0"
}

// ContainerInfo holds MySQL container connection details
type ContainerInfo struct {
	Container testcontainers.Container
	Host      string
	Port      int
	Database  string
	User      string
	Password  string
	DSN       string
	Conn      *sql.DB
}

// SetupMySQLContainer starts a MySQL container, skipping the test under -short.
// The root account is used so routines and triggers can be created without
// extra server flags.
func SetupMySQLContainer(ctx context.Context, t *testing.T) *ContainerInfo {
	return SetupMySQLContainerWithDB(ctx, t, "testdb", "test")
}

// SetupMySQLContainerWithDB starts a MySQL container with a custom database and root password
func SetupMySQLContainerWithDB(ctx context.Context, t *testing.T, database, password string) *ContainerInfo {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping MySQL container test in short mode")
	}

	mysqlContainer, err := mysql.Run(ctx,
		"mysql:"+getMySQLVersion(),
		mysql.WithDatabase(database),
		mysql.WithUsername("root"),
		mysql.WithPassword(password),
		testcontainers.WithLogger(suppressedLogger),
	)
	if err != nil {
		t.Fatalf("Failed to start container: %v", err)
	}

	testDSN, err := mysqlContainer.ConnectionString(ctx, "parseTime=true")
	if err != nil {
		t.Fatalf("Failed to get connection string: %v", err)
	}

	conn, err := sql.Open("mysql", testDSN)
	if err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}

	containerHost, err := mysqlContainer.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}
	containerPort, err := mysqlContainer.MappedPort(ctx, "3306/tcp")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	return &ContainerInfo{
		Container: mysqlContainer,
		Host:      containerHost,
		Port:      containerPort.Int(),
		Database:  database,
		User:      "root",
		Password:  password,
		DSN:       testDSN,
		Conn:      conn,
	}
}

// Addr returns host:port of the container
func (ci *ContainerInfo) Addr() string {
	return net.JoinHostPort(ci.Host, strconv.Itoa(ci.Port))
}

// Terminate cleans up the container and connection
func (ci *ContainerInfo) Terminate(ctx context.Context, t *testing.T) {
	ci.Conn.Close()
	if err := ci.Container.Terminate(ctx); err != nil {
		t.Logf("Failed to terminate container: %v", err)
	}
}

// SetEnv points the CLI's connection environment variables at the container
func (ci *ContainerInfo) SetEnv(t *testing.T) {
	t.Setenv("MYSQL_HOST", ci.Host)
	t.Setenv("MYSQL_TCP_PORT", strconv.Itoa(ci.Port))
	t.Setenv("MYSQL_DATABASE", ci.Database)
	t.Setenv("MYSQL_USER", ci.User)
	t.Setenv("MYSQL_PWD", ci.Password)
}
