package logger

import (
	"bytes"
	"strings"
	"testing"
)

func TestSetup(t *testing.T) {
	t.Cleanup(func() { SetGlobal(nil, false) })

	tests := []struct {
		name      string
		debug     bool
		wantDebug bool
	}{
		{"info level hides debug", false, false},
		{"debug level shows debug", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			Setup(&buf, tt.debug)

			Get().Debug("introspecting", "table", "users")
			Get().Info("connected", "database", "app")

			out := buf.String()
			if got := strings.Contains(out, "introspecting"); got != tt.wantDebug {
				t.Errorf("debug line present = %v, want %v:\n%s", got, tt.wantDebug, out)
			}
			if !strings.Contains(out, "database=app") {
				t.Errorf("info line missing:\n%s", out)
			}
			if IsDebug() != tt.debug {
				t.Errorf("IsDebug() = %v, want %v", IsDebug(), tt.debug)
			}
		})
	}
}

func TestGetFallback(t *testing.T) {
	SetGlobal(nil, false)
	if Get() == nil {
		t.Fatal("Get() should return a fallback logger")
	}
}
