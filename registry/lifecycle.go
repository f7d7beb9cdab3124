package registry

import (
	"context"
	"fmt"
	"time"

	"github.com/blockhost/vmlease/types"
	"github.com/blockhost/vmlease/utils"
)

// RegisterVM creates a new active lease record. The name is the immutable
// key: re-registering any existing name is rejected, destroyed ones included,
// because records are never removed. The supplied IP is claimed as a side
// effect, and a pinned VMID at or past the counter bumps the counter so the
// allocator never hands the pinned id out again.
func (r *VMRegistry) RegisterVM(ctx context.Context, req RegisterRequest) (*types.VMRecord, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("register: name is required")
	}
	if req.IPAddress == "" {
		return nil, fmt.Errorf("register %s: ip address is required", req.Name)
	}
	if req.ExpiryDays < 0 {
		return nil, fmt.Errorf("register %s: expiry days must be non-negative, got %d", req.Name, req.ExpiryDays)
	}

	now := r.now()
	rec := &types.VMRecord{
		Name:          req.Name,
		VMID:          req.VMID,
		IPAddress:     req.IPAddress,
		Owner:         req.Owner,
		Purpose:       req.Purpose,
		Status:        types.VMStatusActive,
		IPv6Address:   req.IPv6Address,
		WalletAddress: req.WalletAddress,
		CPUCores:      req.CPUCores,
		MemoryMB:      req.MemoryMB,
		DiskGB:        req.DiskGB,
		CreatedAt:     now,
		ExpiresAt:     addDays(now, req.ExpiryDays),
	}

	err := r.store.Update(ctx, func(idx *Index) error {
		if _, ok := idx.VMs[req.Name]; ok {
			return fmt.Errorf("VM %q: %w", req.Name, ErrAlreadyExists)
		}
		for _, other := range idx.VMs {
			if other == nil || other.Status == types.VMStatusDestroyed {
				continue
			}
			if other.IPAddress == req.IPAddress {
				return fmt.Errorf("IP %s held by VM %q: %w", req.IPAddress, other.Name, ErrAlreadyExists)
			}
			if other.VMID == req.VMID {
				return fmt.Errorf("VMID %d held by VM %q: %w", req.VMID, other.Name, ErrAlreadyExists)
			}
			if req.IPv6Address != "" && other.IPv6Address == req.IPv6Address {
				return fmt.Errorf("IPv6 %s held by VM %q: %w", req.IPv6Address, other.Name, ErrAlreadyExists)
			}
		}

		idx.VMs[req.Name] = rec
		idx.claimIP(req.IPAddress)
		if req.VMID >= idx.NextVMID {
			idx.NextVMID = req.VMID + 1
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	out := *rec
	return &out, nil
}

// GetVM looks up a record by name. Returns (nil, nil) when absent; callers
// that require presence use the mutation ops, which report ErrNotFound.
func (r *VMRegistry) GetVM(ctx context.Context, name string) (*types.VMRecord, error) {
	var result *types.VMRecord
	return result, r.store.With(ctx, func(idx *Index) error {
		if rec, ok := utils.LookupCopy(idx.VMs, name); ok {
			result = &rec
		}
		return nil
	})
}

// ListVMs returns all records, optionally filtered by exact status. An empty
// status means no filter.
func (r *VMRegistry) ListVMs(ctx context.Context, status types.VMStatus) ([]*types.VMRecord, error) {
	return r.collect(ctx, func(rec *types.VMRecord) bool {
		return status == "" || rec.Status == status
	})
}

// VMsToSuspend returns active records past expiry but still inside the grace
// window. Records past the window belong to the destroy side of the two-phase
// flow once suspended.
func (r *VMRegistry) VMsToSuspend(ctx context.Context, graceDays int) ([]*types.VMRecord, error) {
	now := r.now()
	return r.collect(ctx, func(rec *types.VMRecord) bool {
		return rec.Status == types.VMStatusActive &&
			now.After(rec.ExpiresAt) &&
			!now.After(addDays(rec.ExpiresAt, graceDays))
	})
}

// VMsToDestroy returns suspended records whose grace period has fully lapsed.
func (r *VMRegistry) VMsToDestroy(ctx context.Context, graceDays int) ([]*types.VMRecord, error) {
	now := r.now()
	return r.collect(ctx, func(rec *types.VMRecord) bool {
		return rec.Status == types.VMStatusSuspended &&
			now.After(addDays(rec.ExpiresAt, graceDays))
	})
}

// ExpiredVMs is the legacy single-phase query: active records past expiry
// plus grace, used when the suspend and destroy phases are collapsed.
func (r *VMRegistry) ExpiredVMs(ctx context.Context, graceDays int) ([]*types.VMRecord, error) {
	now := r.now()
	return r.collect(ctx, func(rec *types.VMRecord) bool {
		return rec.Status == types.VMStatusActive &&
			now.After(addDays(rec.ExpiresAt, graceDays))
	})
}

// MarkSuspended moves an active record to suspended. The IP stays claimed so
// a resume keeps the same address.
func (r *VMRegistry) MarkSuspended(ctx context.Context, name string) error {
	return r.transition(ctx, name, func(rec *types.VMRecord, idx *Index) error {
		if rec.Status != types.VMStatusActive {
			return fmt.Errorf("suspend VM %q in status %s: %w", name, rec.Status, ErrInvalidTransition)
		}
		now := r.now()
		rec.Status = types.VMStatusSuspended
		rec.SuspendedAt = &now
		return nil
	})
}

// MarkActive resumes a suspended record with a fresh expiry. Resuming a
// record that is not suspended is rejected: already-active means the resume
// raced something else, and destroyed is terminal.
func (r *VMRegistry) MarkActive(ctx context.Context, name string, newExpiry time.Time) error {
	return r.transition(ctx, name, func(rec *types.VMRecord, idx *Index) error {
		if rec.Status != types.VMStatusSuspended {
			return fmt.Errorf("resume VM %q in status %s: %w", name, rec.Status, ErrInvalidTransition)
		}
		rec.Status = types.VMStatusActive
		rec.ExpiresAt = newExpiry.UTC()
		return nil
	})
}

// MarkDestroyed moves a record to the terminal destroyed status and releases
// its IP back to the pool. The record itself is kept forever; the VMID stays
// reserved.
func (r *VMRegistry) MarkDestroyed(ctx context.Context, name string) error {
	return r.transition(ctx, name, func(rec *types.VMRecord, idx *Index) error {
		if rec.Status == types.VMStatusDestroyed {
			return fmt.Errorf("destroy VM %q twice: %w", name, ErrInvalidTransition)
		}
		now := r.now()
		rec.Status = types.VMStatusDestroyed
		rec.DestroyedAt = &now
		idx.releaseIP(rec.IPAddress)
		return nil
	})
}

// ExtendExpiry pushes the current expiry (not now) forward by days.
func (r *VMRegistry) ExtendExpiry(ctx context.Context, name string, days int) error {
	if days < 0 {
		return fmt.Errorf("extend VM %q: days must be non-negative, got %d", name, days)
	}
	return r.transition(ctx, name, func(rec *types.VMRecord, idx *Index) error {
		rec.ExpiresAt = addDays(rec.ExpiresAt, days)
		return nil
	})
}

// transition runs fn against the named record inside one exclusive critical
// section. Absent names report ErrNotFound.
func (r *VMRegistry) transition(ctx context.Context, name string, fn func(*types.VMRecord, *Index) error) error {
	return r.store.Update(ctx, func(idx *Index) error {
		rec := idx.VMs[name]
		if rec == nil {
			return fmt.Errorf("VM %q: %w", name, ErrNotFound)
		}
		return fn(rec, idx)
	})
}

// collect returns detached copies of all records matching keep.
func (r *VMRegistry) collect(ctx context.Context, keep func(*types.VMRecord) bool) ([]*types.VMRecord, error) {
	var result []*types.VMRecord
	return result, r.store.With(ctx, func(idx *Index) error {
		for _, rec := range idx.VMs {
			if rec == nil || !keep(rec) {
				continue
			}
			cp := *rec
			result = append(result, &cp)
		}
		return nil
	})
}
