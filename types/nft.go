package types

import "time"

// NFTTokenStatus is the local lifecycle of an access-credential reservation.
type NFTTokenStatus string

const (
	NFTStatusReserved NFTTokenStatus = "reserved" // id handed out, on-chain mint not yet confirmed
	NFTStatusMinted   NFTTokenStatus = "minted"   // terminal
	NFTStatusFailed   NFTTokenStatus = "failed"   // terminal; the id is burned, never reused
)

// Terminal reports whether s permits no further transitions.
func (s NFTTokenStatus) Terminal() bool {
	return s == NFTStatusMinted || s == NFTStatusFailed
}

// NFTToken tracks one access-credential reservation, keyed by its token id.
// The registry records only the local reservation lifecycle; the on-chain
// transaction itself belongs to an external collaborator.
type NFTToken struct {
	Status NFTTokenStatus `json:"status"`
	VMName string         `json:"vm_name"`

	ReservedAt time.Time `json:"reserved_at"`

	// Exactly one of the following pairs is set once the token is terminal.
	OwnerWallet string     `json:"owner_wallet,omitempty"`
	MintedAt    *time.Time `json:"minted_at,omitempty"`
	FailedAt    *time.Time `json:"failed_at,omitempty"`
}
