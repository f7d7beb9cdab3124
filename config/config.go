package config

import (
	"fmt"
	"net"
	"time"

	coretypes "github.com/projecteru2/core/types"
)

// IPPool configures the IPv4 allocation range inside a /24 network.
type IPPool struct {
	// Network is any address in the pool's /24, e.g. "10.0.0.0".
	Network string `json:"network" mapstructure:"network"`
	// Start and End are the inclusive last-octet bounds of the pool.
	Start int `json:"start" mapstructure:"start"`
	End   int `json:"end" mapstructure:"end"`
}

// Prefix returns the dotted /24 prefix of the pool network ("10.0.0").
func (p IPPool) Prefix() (string, error) {
	ip := net.ParseIP(p.Network)
	if v4 := ip.To4(); v4 != nil {
		return fmt.Sprintf("%d.%d.%d", v4[0], v4[1], v4[2]), nil
	}
	return "", fmt.Errorf("ip_pool.network %q is not an IPv4 address", p.Network)
}

// VMIDRange bounds the monotonic VMID counter, inclusive on both ends.
type VMIDRange struct {
	Start int `json:"start" mapstructure:"start"`
	End   int `json:"end" mapstructure:"end"`
}

// Config holds global vmlease configuration.
type Config struct {
	// DBFile is the registry snapshot file.
	// Env: VMLEASE_DB_FILE. Default: /var/lib/vmlease/registry.json.
	DBFile string `json:"db_file" mapstructure:"db_file"`
	// LockFile guards DBFile across processes. Defaults to DBFile + ".lock".
	LockFile string `json:"lock_file" mapstructure:"lock_file"`
	// LockTimeoutSeconds bounds how long an operation waits for the store
	// lock before failing. Default: 10.
	LockTimeoutSeconds int `json:"lock_timeout_seconds" mapstructure:"lock_timeout_seconds"`

	IPPool    IPPool    `json:"ip_pool" mapstructure:"ip_pool"`
	VMIDRange VMIDRange `json:"vmid_range" mapstructure:"vmid_range"`

	// DefaultExpiryDays is the lease length used when the caller does not
	// pass one. Default: 30.
	DefaultExpiryDays int `json:"default_expiry_days" mapstructure:"default_expiry_days"`
	// GraceDays is how long a VM stays suspended after expiry before the
	// garbage collector destroys it. Default: 3.
	GraceDays int `json:"grace_days" mapstructure:"grace_days"`

	// Log configuration, uses eru core's ServerLogConfig.
	Log coretypes.ServerLogConfig `json:"log" mapstructure:"log"`
}

// DefaultConfig returns the built-in defaults, overridden by file, env, and
// flags in that order.
func DefaultConfig() *Config {
	return &Config{
		DBFile:             "/var/lib/vmlease/registry.json",
		LockTimeoutSeconds: 10,
		IPPool:             IPPool{Network: "10.0.0.0", Start: 10, End: 250},
		VMIDRange:          VMIDRange{Start: 100, End: 999},
		DefaultExpiryDays:  30,
		GraceDays:          3,
		Log:                coretypes.ServerLogConfig{Level: "info"},
	}
}

// DBLock returns the lock file path, deriving it from DBFile when unset.
func (c *Config) DBLock() string {
	if c.LockFile != "" {
		return c.LockFile
	}
	return c.DBFile + ".lock"
}

// LockTimeout returns LockTimeoutSeconds as a duration.
func (c *Config) LockTimeout() time.Duration {
	return time.Duration(c.LockTimeoutSeconds) * time.Second
}

// Validate rejects configurations the allocators cannot work with.
func (c *Config) Validate() error {
	if c.DBFile == "" {
		return fmt.Errorf("db_file is required")
	}
	if _, err := c.IPPool.Prefix(); err != nil {
		return err
	}
	if c.IPPool.Start < 1 || c.IPPool.End > 254 || c.IPPool.Start > c.IPPool.End {
		return fmt.Errorf("ip_pool range [%d, %d] is not a valid /24 host range", c.IPPool.Start, c.IPPool.End)
	}
	if c.VMIDRange.Start <= 0 || c.VMIDRange.Start > c.VMIDRange.End {
		return fmt.Errorf("vmid_range [%d, %d] is invalid", c.VMIDRange.Start, c.VMIDRange.End)
	}
	if c.DefaultExpiryDays < 0 || c.GraceDays < 0 {
		return fmt.Errorf("expiry and grace days must be non-negative")
	}
	return nil
}
