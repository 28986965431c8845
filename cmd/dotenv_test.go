package cmd

import (
	"os"
	"testing"

	"github.com/joho/godotenv"
)

func TestDotenvLoading(t *testing.T) {
	tmpDir := t.TempDir()
	originalDir, _ := os.Getwd()

	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("Failed to change to temp directory: %v", err)
	}
	defer func() {
		os.Chdir(originalDir)
	}()

	envVars := []string{"MYSQL_HOST", "MYSQL_TCP_PORT", "MYSQL_DATABASE", "MYSQL_USER", "MYSQL_PWD"}
	cleanup := func() {
		os.Remove(".env")
		for _, envVar := range envVars {
			os.Unsetenv(envVar)
		}
	}

	t.Run("LoadEnvFile", func(t *testing.T) {
		cleanup()
		defer cleanup()

		if err := os.WriteFile(".env", []byte("MYSQL_PWD=test_password_123\n"), 0644); err != nil {
			t.Fatalf("Failed to create .env file: %v", err)
		}
		if err := godotenv.Load(); err != nil {
			t.Fatalf("Failed to load .env file: %v", err)
		}
		if password := os.Getenv("MYSQL_PWD"); password != "test_password_123" {
			t.Errorf("Expected MYSQL_PWD='test_password_123', got '%s'", password)
		}
	})

	t.Run("MissingEnvFile", func(t *testing.T) {
		cleanup()

		if err := godotenv.Load(); err == nil {
			t.Error("Expected error when loading non-existent .env file, but got nil")
		}
		if password := os.Getenv("MYSQL_PWD"); password != "" {
			t.Errorf("Expected MYSQL_PWD to be empty, got '%s'", password)
		}
	})

	t.Run("EnvVarPriority", func(t *testing.T) {
		cleanup()
		defer cleanup()

		os.Setenv("MYSQL_PWD", "env_password")
		if err := os.WriteFile(".env", []byte("MYSQL_PWD=dotenv_password\n"), 0644); err != nil {
			t.Fatalf("Failed to create .env file: %v", err)
		}
		if err := godotenv.Load(); err != nil {
			t.Fatalf("Failed to load .env file: %v", err)
		}

		// An existing environment variable takes precedence over .env
		if password := os.Getenv("MYSQL_PWD"); password != "env_password" {
			t.Errorf("Expected MYSQL_PWD='env_password', got '%s'", password)
		}
	})

	t.Run("AllConnectionEnvVars", func(t *testing.T) {
		cleanup()
		defer cleanup()

		envContent := `MYSQL_HOST=test.example.com
MYSQL_TCP_PORT=3307
MYSQL_DATABASE=testdb
MYSQL_USER=testuser
MYSQL_PWD=testpass
`
		if err := os.WriteFile(".env", []byte(envContent), 0644); err != nil {
			t.Fatalf("Failed to create .env file: %v", err)
		}
		if err := godotenv.Load(); err != nil {
			t.Fatalf("Failed to load .env file: %v", err)
		}

		expectedValues := map[string]string{
			"MYSQL_HOST":     "test.example.com",
			"MYSQL_TCP_PORT": "3307",
			"MYSQL_DATABASE": "testdb",
			"MYSQL_USER":     "testuser",
			"MYSQL_PWD":      "testpass",
		}
		for envVar, expected := range expectedValues {
			if actual := os.Getenv(envVar); actual != expected {
				t.Errorf("Expected %s='%s', got '%s'", envVar, expected, actual)
			}
		}
	})
}
