package registry

import (
	"context"
	"fmt"
)

// AllocateVMID hands out the next VMID and advances the counter, all inside
// one exclusive critical section so two concurrent callers never receive the
// same id. Ids are monotonic and never reused, even after the VM using one is
// destroyed, since external references (DNS, billing, terraform state) may outlive
// the VM.
func (r *VMRegistry) AllocateVMID(ctx context.Context) (int, error) {
	var vmid int
	err := r.store.Update(ctx, func(idx *Index) error {
		if idx.NextVMID > r.vmidRange.End {
			return fmt.Errorf("%w: next id %d past end %d", ErrRangeExhausted, idx.NextVMID, r.vmidRange.End)
		}
		vmid = idx.NextVMID
		idx.NextVMID++
		return nil
	})
	if err != nil {
		return 0, err
	}
	return vmid, nil
}

// AllocateIP returns the first free address in the configured pool, claiming
// it in the same critical section. Exhaustion surfaces as ErrPoolExhausted,
// an expected, recoverable condition, unlike a store failure.
func (r *VMRegistry) AllocateIP(ctx context.Context) (string, error) {
	prefix, err := r.ipPool.Prefix()
	if err != nil {
		return "", err
	}
	var allocated string
	err = r.store.Update(ctx, func(idx *Index) error {
		for i := r.ipPool.Start; i <= r.ipPool.End; i++ {
			ip := fmt.Sprintf("%s.%d", prefix, i)
			if !idx.ipAllocated(ip) {
				idx.claimIP(ip)
				allocated = ip
				return nil
			}
		}
		return fmt.Errorf("%w: %s.[%d-%d] all claimed", ErrPoolExhausted, prefix, r.ipPool.Start, r.ipPool.End)
	})
	if err != nil {
		return "", err
	}
	return allocated, nil
}

// ReleaseIP returns an address to the pool. Releasing an address that was
// never claimed is a no-op. Used by provisioning flows to compensate when VM
// creation fails after allocation.
func (r *VMRegistry) ReleaseIP(ctx context.Context, ip string) error {
	return r.store.Update(ctx, func(idx *Index) error {
		idx.releaseIP(ip)
		return nil
	})
}
