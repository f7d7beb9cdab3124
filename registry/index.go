package registry

import (
	"slices"
	"strconv"

	"github.com/blockhost/vmlease/types"
)

// Index is the full registry snapshot: every operation reads or mutates one
// of these under the store lock.
//
// JSON keys match the legacy single-document layout: vms, next_vmid,
// allocated_ips, next_nft_token_id, nft_tokens.
type Index struct {
	VMs            map[string]*types.VMRecord `json:"vms"`
	NextVMID       int                        `json:"next_vmid"`
	AllocatedIPs   []string                   `json:"allocated_ips"`
	NextNFTTokenID int                        `json:"next_nft_token_id"`
	NFTTokens      map[string]*types.NFTToken `json:"nft_tokens"`
}

// NewIndex returns an empty snapshot with the VMID counter seeded at start.
func NewIndex(vmidStart int) *Index {
	idx := &Index{NextVMID: vmidStart}
	idx.Init()
	return idx
}

// Init implements storage.Initer. Called automatically after loading.
func (idx *Index) Init() {
	if idx.VMs == nil {
		idx.VMs = make(map[string]*types.VMRecord)
	}
	if idx.NFTTokens == nil {
		idx.NFTTokens = make(map[string]*types.NFTToken)
	}
	if idx.AllocatedIPs == nil {
		idx.AllocatedIPs = []string{}
	}
}

// ipAllocated reports whether ip is present in the allocated set.
func (idx *Index) ipAllocated(ip string) bool {
	return slices.Contains(idx.AllocatedIPs, ip)
}

// claimIP adds ip to the allocated set if absent.
func (idx *Index) claimIP(ip string) {
	if !idx.ipAllocated(ip) {
		idx.AllocatedIPs = append(idx.AllocatedIPs, ip)
	}
}

// releaseIP removes ip from the allocated set. Removing an address that is
// not present is a no-op, so release is idempotent.
func (idx *Index) releaseIP(ip string) {
	idx.AllocatedIPs = slices.DeleteFunc(idx.AllocatedIPs, func(s string) bool {
		return s == ip
	})
}

// tokenKey converts a token id to its map key. Token ids are integers but
// JSON object keys are strings, so the map is keyed by the decimal form.
func tokenKey(id int) string { return strconv.Itoa(id) }
