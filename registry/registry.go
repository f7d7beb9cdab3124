// Package registry is the single source of truth for leased-VM identity,
// ownership, expiry, and access-credential reservations. All external tools
// (provisioner, garbage collector, resume tool, minting tool) go through the
// Registry interface; nothing else writes the persistent store.
package registry

import (
	"context"
	"time"

	"github.com/blockhost/vmlease/config"
	"github.com/blockhost/vmlease/lock/flock"
	"github.com/blockhost/vmlease/storage"
	storejson "github.com/blockhost/vmlease/storage/json"
	memstore "github.com/blockhost/vmlease/storage/memory"
	"github.com/blockhost/vmlease/types"
)

// RegisterRequest carries everything needed to register a new lease.
type RegisterRequest struct {
	Name       string
	VMID       int
	IPAddress  string
	Owner      string
	ExpiryDays int

	// Optional.
	Purpose       string
	IPv6Address   string // recorded only; allocated by an external broker
	WalletAddress string
	CPUCores      int
	MemoryMB      int64
	DiskGB        int64
}

// Registry is the operation set every external tool depends on. Two backends
// implement it through the same code path: the durable file-backed store and
// the in-memory mock, differing only in storage medium.
type Registry interface {
	// Allocators.
	AllocateVMID(ctx context.Context) (int, error)
	AllocateIP(ctx context.Context) (string, error)
	ReleaseIP(ctx context.Context, ip string) error

	// VM lifecycle.
	RegisterVM(ctx context.Context, req RegisterRequest) (*types.VMRecord, error)
	GetVM(ctx context.Context, name string) (*types.VMRecord, error)
	ListVMs(ctx context.Context, status types.VMStatus) ([]*types.VMRecord, error)
	VMsToSuspend(ctx context.Context, graceDays int) ([]*types.VMRecord, error)
	VMsToDestroy(ctx context.Context, graceDays int) ([]*types.VMRecord, error)
	ExpiredVMs(ctx context.Context, graceDays int) ([]*types.VMRecord, error)
	MarkSuspended(ctx context.Context, name string) error
	MarkActive(ctx context.Context, name string, newExpiry time.Time) error
	MarkDestroyed(ctx context.Context, name string) error
	ExtendExpiry(ctx context.Context, name string, days int) error

	// Access-credential token ledger.
	ReserveNFTTokenID(ctx context.Context, vmName string) (int, error)
	MarkNFTMinted(ctx context.Context, tokenID int, ownerWallet string) error
	MarkNFTFailed(ctx context.Context, tokenID int) error
	GetNFTToken(ctx context.Context, tokenID int) (*types.NFTToken, error)
}

// VMRegistry implements Registry on top of a storage.Store[Index].
type VMRegistry struct {
	store storage.Store[Index]

	ipPool    config.IPPool
	vmidRange config.VMIDRange

	// now is the single clock source for every expiry comparison and
	// timestamp. Always returns UTC.
	now func() time.Time
}

var _ Registry = (*VMRegistry)(nil)

// New builds a registry over an already-initialized store.
func New(store storage.Store[Index], ipPool config.IPPool, vmidRange config.VMIDRange) *VMRegistry {
	return &VMRegistry{
		store:     store,
		ipPool:    ipPool,
		vmidRange: vmidRange,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Open returns the durable registry backed by the configured store file,
// creating and seeding the file on first use.
func Open(ctx context.Context, conf *config.Config) (*VMRegistry, error) {
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	locker := flock.New(conf.DBLock(), conf.LockTimeout())
	store := storejson.New[Index](conf.DBFile, locker)
	if err := store.Initialize(ctx, NewIndex(conf.VMIDRange.Start)); err != nil {
		return nil, err
	}
	return New(store, conf.IPPool, conf.VMIDRange), nil
}

// OpenMock returns an in-memory registry with identical behavior, for tests
// and --mock runs.
func OpenMock(conf *config.Config) (*VMRegistry, error) {
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	store := memstore.New(NewIndex(conf.VMIDRange.Start))
	return New(store, conf.IPPool, conf.VMIDRange), nil
}

// addDays mirrors the day arithmetic the rest of the fleet tooling uses:
// a day is exactly 24 hours, applied to UTC timestamps.
func addDays(t time.Time, days int) time.Time {
	return t.Add(time.Duration(days) * 24 * time.Hour)
}
