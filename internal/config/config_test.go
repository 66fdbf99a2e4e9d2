package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"APP_PORT", "DB_DRIVER", "LATE_FEE_CRON", "DEFAULT_DAILY_RATE", "HEALTH_QUERY_TIMEOUT", "LATE_FEE_SCHEDULER_ENABLED"} {
		t.Setenv(k, "")
	}
	c := Load()
	if c.AppPort != "8080" || c.DBDriver != DriverMySQL {
		t.Fatalf("unexpected defaults: %+v", c)
	}
	if c.LateFeeCron != "5 0 * * *" || !c.LateFeeSchedulerEnabled {
		t.Fatalf("unexpected scheduler defaults: %q %v", c.LateFeeCron, c.LateFeeSchedulerEnabled)
	}
	if c.DefaultDailyRate.String() != "0.1" {
		t.Fatalf("default daily rate = %s", c.DefaultDailyRate)
	}
	if c.HealthQueryTimeout != 3*time.Second {
		t.Fatalf("health timeout = %s", c.HealthQueryTimeout)
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", ":memory:")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("IDEMPOTENCY_TTL_SECONDS", "60")
	t.Setenv("LATE_FEE_SCHEDULER_ENABLED", "false")
	t.Setenv("DEFAULT_DAILY_RATE", "0.25")
	t.Setenv("DEFAULT_FIXED_FEE", "50")
	t.Setenv("DEFAULT_FIXED_FREQUENCY_DAYS", "7")
	t.Setenv("HEALTH_QUERY_TIMEOUT", "750ms")

	c := Load()
	if c.DBDriver != DriverSQLite || c.SQLitePath != ":memory:" {
		t.Fatalf("driver not overridden: %+v", c)
	}
	if c.RedisDB != 2 || c.IdempTTLSecs != 60 || c.LateFeeSchedulerEnabled {
		t.Fatalf("ints/bools not overridden: %+v", c)
	}
	if c.DefaultDailyRate.String() != "0.25" || c.DefaultFixedFee.String() != "50" || c.DefaultFixedFrequencyDays != 7 {
		t.Fatalf("policy not overridden: %+v", c)
	}
	if c.HealthQueryTimeout != 750*time.Millisecond {
		t.Fatalf("timeout = %s", c.HealthQueryTimeout)
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			AppPort: "8080", DBDriver: DriverMySQL,
			MySQLHost: "db", MySQLPort: "3306", MySQLDB: "r", MySQLUser: "u",
			LateFeeCron: "5 0 * * *", LateFeeSchedulerEnabled: true,
			HealthQueryTimeout: time.Second,
		}
	}
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"ok", func(c *Config) {}, ""},
		{"no port", func(c *Config) { c.AppPort = "" }, "APP_PORT"},
		{"no mysql host", func(c *Config) { c.MySQLHost = "" }, "MySQL"},
		{"bad mysql port", func(c *Config) { c.MySQLPort = "notaport" }, "MYSQL_PORT"},
		{"unknown driver", func(c *Config) { c.DBDriver = "oracle" }, "DB_DRIVER"},
		{"sqlite without path", func(c *Config) { c.DBDriver = DriverSQLite }, "SQLITE_PATH"},
		{"bad cron", func(c *Config) { c.LateFeeCron = "every day" }, "LATE_FEE_CRON"},
		{"bad cron ignored when disabled", func(c *Config) { c.LateFeeCron = "x"; c.LateFeeSchedulerEnabled = false }, ""},
		{"zero timeout", func(c *Config) { c.HealthQueryTimeout = 0 }, "HEALTH_QUERY_TIMEOUT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("want error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestMySQLDSN(t *testing.T) {
	c := &Config{MySQLUser: "u", MySQLPass: "p", MySQLHost: "db", MySQLPort: "3306", MySQLDB: "r"}
	want := "u:p@tcp(db:3306)/r?parseTime=true&loc=UTC&charset=utf8mb4,utf8"
	if got := c.MySQLDSN(); got != want {
		t.Fatalf("dsn = %q", got)
	}
}
