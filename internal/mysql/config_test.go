package mysql

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestConfigFromDSN(t *testing.T) {
	tests := []struct {
		name    string
		dsn     string
		want    *Config
		wantErr bool
	}{
		{
			name: "full dsn",
			dsn:  "app:s3cret@tcp(db.internal:3307)/shop?timeout=5s",
			want: &Config{Host: "db.internal", Port: 3307, Database: "shop", User: "app", Password: "s3cret", ConnectTimeout: 5 * time.Second},
		},
		{
			name: "ipv6 host",
			dsn:  "root@tcp([::1]:3306)/test",
			want: &Config{Host: "::1", Port: 3306, Database: "test", User: "root"},
		},
		{
			name:    "invalid dsn",
			dsn:     "not a dsn",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ConfigFromDSN(tt.dsn)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ConfigFromDSN() error = %v, wantErr %v", err, tt.wantErr)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ConfigFromDSN() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestConfigAddr(t *testing.T) {
	if got := (&Config{Host: "localhost"}).Addr(); got != "localhost:3306" {
		t.Errorf("Addr() = %q, want default port", got)
	}
	if got := (&Config{Host: "10.0.0.5", Port: 3310}).Addr(); got != "10.0.0.5:3310" {
		t.Errorf("Addr() = %q", got)
	}
}

func TestConfigDriverConfig(t *testing.T) {
	cfg := &Config{Host: "localhost", Port: 3306, Database: "shop", User: "app", Password: "pw"}

	dc := cfg.driverConfig("mysqlschema+ssh1")
	if dc.Net != "mysqlschema+ssh1" || dc.Addr != "localhost:3306" {
		t.Errorf("unexpected network settings: %s %s", dc.Net, dc.Addr)
	}
	if dc.MultiStatements {
		t.Error("multi statements must stay disabled")
	}

	dsn := cfg.DSN()
	for _, want := range []string{"app:pw@tcp(localhost:3306)/shop", "parseTime=true", "charset=utf8mb4"} {
		if !strings.Contains(dsn, want) {
			t.Errorf("DSN() = %q, missing %q", dsn, want)
		}
	}
}

func TestConfigConcurrency(t *testing.T) {
	if got := (&Config{}).concurrency(); got != defaultConcurrency {
		t.Errorf("concurrency() = %d, want %d", got, defaultConcurrency)
	}
	if got := (&Config{Concurrency: 2}).concurrency(); got != 2 {
		t.Errorf("concurrency() = %d, want 2", got)
	}
}
