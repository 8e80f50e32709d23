package utils

import (
	"testing"
	"time"
)

func TestPostgresPoolConfig_Defaults(t *testing.T) {
	got := PostgresPoolConfig{}.withDefaults()
	if got.MaxOpenConns != 10 || got.MaxIdleConns != 10 {
		t.Fatalf("unexpected pool defaults: %+v", got)
	}
	if got.PingTimeout != 5*time.Second {
		t.Fatalf("unexpected ping timeout: %v", got.PingTimeout)
	}
}

func TestPostgresPoolConfig_RespectsExplicitValues(t *testing.T) {
	in := PostgresPoolConfig{MaxOpenConns: 3, MaxIdleConns: 2, PingTimeout: time.Second}
	got := in.withDefaults()
	if got.MaxOpenConns != 3 || got.MaxIdleConns != 2 || got.PingTimeout != time.Second {
		t.Fatalf("explicit values overridden: %+v", got)
	}
}
