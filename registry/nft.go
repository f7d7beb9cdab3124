package registry

import (
	"context"
	"fmt"

	"github.com/blockhost/vmlease/types"
	"github.com/blockhost/vmlease/utils"
)

// ReserveNFTTokenID allocates the next token id and records a reserved entry
// for vmName. The id is reserved before the external mint attempt so a crash
// mid-mint leaves an inspectable reserved record instead of an orphaned
// on-chain action. The counter only increments; ids are never reused, even
// for failed mints.
func (r *VMRegistry) ReserveNFTTokenID(ctx context.Context, vmName string) (int, error) {
	var tokenID int
	err := r.store.Update(ctx, func(idx *Index) error {
		tokenID = idx.NextNFTTokenID
		idx.NextNFTTokenID++
		idx.NFTTokens[tokenKey(tokenID)] = &types.NFTToken{
			Status:     types.NFTStatusReserved,
			VMName:     vmName,
			ReservedAt: r.now(),
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return tokenID, nil
}

// MarkNFTMinted resolves a reserved token as minted. Terminal tokens reject
// the transition, with one exception: re-minting to the same wallet is a
// no-op so a crashed flow can safely retry.
func (r *VMRegistry) MarkNFTMinted(ctx context.Context, tokenID int, ownerWallet string) error {
	return r.resolveToken(ctx, tokenID, func(tok *types.NFTToken) error {
		if tok.Status == types.NFTStatusMinted && tok.OwnerWallet == ownerWallet {
			return nil // idempotent retry
		}
		if tok.Status.Terminal() {
			return fmt.Errorf("mint token %d in status %s: %w", tokenID, tok.Status, ErrInvalidTransition)
		}
		now := r.now()
		tok.Status = types.NFTStatusMinted
		tok.OwnerWallet = ownerWallet
		tok.MintedAt = &now
		return nil
	})
}

// MarkNFTFailed resolves a reserved token as failed. Failing an
// already-failed token is a no-op; a minted token cannot fail afterwards.
func (r *VMRegistry) MarkNFTFailed(ctx context.Context, tokenID int) error {
	return r.resolveToken(ctx, tokenID, func(tok *types.NFTToken) error {
		if tok.Status == types.NFTStatusFailed {
			return nil
		}
		if tok.Status.Terminal() {
			return fmt.Errorf("fail token %d in status %s: %w", tokenID, tok.Status, ErrInvalidTransition)
		}
		now := r.now()
		tok.Status = types.NFTStatusFailed
		tok.FailedAt = &now
		return nil
	})
}

// GetNFTToken looks up a token by id. Returns (nil, nil) when the id was
// never reserved.
func (r *VMRegistry) GetNFTToken(ctx context.Context, tokenID int) (*types.NFTToken, error) {
	var result *types.NFTToken
	return result, r.store.With(ctx, func(idx *Index) error {
		if tok, ok := utils.LookupCopy(idx.NFTTokens, tokenKey(tokenID)); ok {
			result = &tok
		}
		return nil
	})
}

func (r *VMRegistry) resolveToken(ctx context.Context, tokenID int, fn func(*types.NFTToken) error) error {
	return r.store.Update(ctx, func(idx *Index) error {
		tok := idx.NFTTokens[tokenKey(tokenID)]
		if tok == nil {
			return fmt.Errorf("NFT token %d: %w", tokenID, ErrNotFound)
		}
		return fn(tok)
	})
}
