package types

import "time"

// VMStatus represents the lifecycle state of a leased VM.
type VMStatus string

const (
	VMStatusActive    VMStatus = "active"    // running, lease not expired (or resumed)
	VMStatusSuspended VMStatus = "suspended" // expired, powered off, lease still resumable
	VMStatusDestroyed VMStatus = "destroyed" // terminal; the record is kept, only the IP is released
)

// Valid reports whether s is one of the known statuses.
func (s VMStatus) Valid() bool {
	switch s {
	case VMStatusActive, VMStatusSuspended, VMStatusDestroyed:
		return true
	}
	return false
}

// Terminal reports whether s permits no further transitions.
func (s VMStatus) Terminal() bool { return s == VMStatusDestroyed }

// VMRecord is the persisted record for one leased VM, keyed by Name.
//
// JSON field names match the legacy on-disk layout so an existing registry
// file keeps loading across upgrades.
type VMRecord struct {
	Name      string   `json:"vm_name"`
	VMID      int      `json:"vmid"`
	IPAddress string   `json:"ip_address"`
	Owner     string   `json:"owner"`
	Purpose   string   `json:"purpose,omitempty"`
	Status    VMStatus `json:"status"`

	// IPv6Address comes from an external broker and is only recorded here,
	// never generated or released by the registry.
	IPv6Address string `json:"ipv6_address,omitempty"`
	// WalletAddress is set when an access-credential NFT is associated.
	WalletAddress string `json:"wallet_address,omitempty"`

	// Requested resources, recorded at registration for the provisioner.
	CPUCores int   `json:"cpu_cores,omitempty"`
	MemoryMB int64 `json:"memory_mb,omitempty"`
	DiskGB   int64 `json:"disk_gb,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	ExpiresAt   time.Time  `json:"expires_at"`
	SuspendedAt *time.Time `json:"suspended_at,omitempty"`
	DestroyedAt *time.Time `json:"destroyed_at,omitempty"`
}
