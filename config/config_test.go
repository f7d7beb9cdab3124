package config

import (
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig_IsValid(t *testing.T) {
	conf := DefaultConfig()
	if err := conf.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	if conf.LockTimeout() != 10*time.Second {
		t.Errorf("expected 10s lock timeout, got %s", conf.LockTimeout())
	}
}

func TestDBLock_DerivedFromDBFile(t *testing.T) {
	conf := DefaultConfig()
	conf.DBFile = "/tmp/reg.json"
	if got := conf.DBLock(); got != "/tmp/reg.json.lock" {
		t.Errorf("expected derived lock path, got %s", got)
	}
	conf.LockFile = "/run/reg.lock"
	if got := conf.DBLock(); got != "/run/reg.lock" {
		t.Errorf("explicit lock file should win, got %s", got)
	}
}

func TestIPPool_Prefix(t *testing.T) {
	p := IPPool{Network: "192.168.7.0", Start: 1, End: 10}
	prefix, err := p.Prefix()
	if err != nil {
		t.Fatalf("prefix: %v", err)
	}
	if prefix != "192.168.7" {
		t.Errorf("expected 192.168.7, got %s", prefix)
	}

	p.Network = "not-an-ip"
	if _, err := p.Prefix(); err == nil {
		t.Error("expected error for invalid network")
	}
}

func TestValidate_RejectsBadRanges(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"missing db file", func(c *Config) { c.DBFile = "" }, "db_file"},
		{"inverted ip pool", func(c *Config) { c.IPPool.Start = 50; c.IPPool.End = 10 }, "ip_pool"},
		{"ip pool past /24", func(c *Config) { c.IPPool.End = 255 }, "ip_pool"},
		{"inverted vmid range", func(c *Config) { c.VMIDRange.Start = 500; c.VMIDRange.End = 100 }, "vmid_range"},
		{"negative grace", func(c *Config) { c.GraceDays = -1 }, "grace"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			conf := DefaultConfig()
			tc.mutate(conf)
			err := conf.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("expected error mentioning %q, got %v", tc.want, err)
			}
		})
	}
}
