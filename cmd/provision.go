package cmd

import (
	"errors"
	"fmt"

	units "github.com/docker/go-units"
	"github.com/projecteru2/core/log"
	"github.com/spf13/cobra"

	"github.com/blockhost/vmlease/registry"
	"github.com/blockhost/vmlease/utils"
)

var provisionCmd = func() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "provision [flags] NAME",
		Short: "Allocate identity for a new leased VM and register it",
		Long: `Allocates a VMID and IPv4 address, reserves an access-credential
token, and registers the lease. The infrastructure-as-code apply and the
on-chain mint are performed by external tooling; record their outcome with
"vmlease token minted" or "vmlease token failed".`,
		Args: cobra.ExactArgs(1),
		RunE: runProvision,
	}
	cmd.Flags().String("owner", "", "lease owner")
	cmd.Flags().String("owner-wallet", "", "wallet address to receive the access credential")
	cmd.Flags().String("purpose", "", "free-text purpose")
	cmd.Flags().Int("expiry-days", -1, "lease length in days (default from config)")
	cmd.Flags().Int("cpu", 2, "CPU cores")             //nolint:mnd
	cmd.Flags().String("memory", "1G", "memory size")  //nolint:mnd
	cmd.Flags().String("disk", "10G", "disk size")     //nolint:mnd
	cmd.Flags().String("ipv6", "", "IPv6 address from the external broker, recorded as-is")
	cmd.Flags().Bool("no-web3", false, "disable access-credential reservation")
	_ = cmd.MarkFlagRequired("owner")
	return cmd
}()

func runProvision(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	name := args[0]
	logger := log.WithFunc("cmd.provision")

	owner, _ := cmd.Flags().GetString("owner")
	wallet, _ := cmd.Flags().GetString("owner-wallet")
	purpose, _ := cmd.Flags().GetString("purpose")
	expiryDays, _ := cmd.Flags().GetInt("expiry-days")
	cpu, _ := cmd.Flags().GetInt("cpu")
	memStr, _ := cmd.Flags().GetString("memory")
	diskStr, _ := cmd.Flags().GetString("disk")
	ipv6, _ := cmd.Flags().GetString("ipv6")
	noWeb3, _ := cmd.Flags().GetBool("no-web3")

	if !noWeb3 && wallet == "" {
		return fmt.Errorf("--owner-wallet is required (or use --no-web3 to disable credential auth)")
	}
	if expiryDays < 0 {
		expiryDays = conf.DefaultExpiryDays
	}
	memBytes, err := units.RAMInBytes(memStr)
	if err != nil {
		return fmt.Errorf("invalid --memory %q: %w", memStr, err)
	}
	diskBytes, err := units.RAMInBytes(diskStr)
	if err != nil {
		return fmt.Errorf("invalid --disk %q: %w", diskStr, err)
	}

	reg, err := initRegistry(ctx)
	if err != nil {
		return err
	}

	runID, err := utils.GenerateID()
	if err != nil {
		return err
	}
	logger.Infof(ctx, "[%s] provisioning %s for %s", runID, name, owner)

	if existing, err := reg.GetVM(ctx, name); err != nil {
		return err
	} else if existing != nil {
		return fmt.Errorf("VM %q already registered (status %s)", name, existing.Status)
	}

	vmid, err := reg.AllocateVMID(ctx)
	if err != nil {
		if errors.Is(err, registry.ErrRangeExhausted) {
			return fmt.Errorf("no VMIDs left, expand vmid_range: %w", err)
		}
		return err
	}
	ip, err := reg.AllocateIP(ctx)
	if err != nil {
		if errors.Is(err, registry.ErrPoolExhausted) {
			return fmt.Errorf("no addresses left, expand ip_pool or destroy stale VMs: %w", err)
		}
		return err
	}
	logger.Infof(ctx, "[%s] allocated VMID %d, IP %s", runID, vmid, ip)

	// Reserve the credential id BEFORE registering so a crash between the two
	// leaves a reserved token pointing at the name, never an untracked mint.
	tokenID := -1
	if !noWeb3 {
		if tokenID, err = reg.ReserveNFTTokenID(ctx, name); err != nil {
			return err
		}
		logger.Infof(ctx, "[%s] reserved access-credential token %d", runID, tokenID)
	}

	if _, err := reg.RegisterVM(ctx, registry.RegisterRequest{
		Name:          name,
		VMID:          vmid,
		IPAddress:     ip,
		Owner:         owner,
		ExpiryDays:    expiryDays,
		Purpose:       purpose,
		IPv6Address:   ipv6,
		WalletAddress: wallet,
		CPUCores:      cpu,
		MemoryMB:      memBytes / units.MiB,
		DiskGB:        diskBytes / units.GiB,
	}); err != nil {
		// Compensation: the lease never existed, so return the address and
		// burn the reservation.
		if rerr := reg.ReleaseIP(ctx, ip); rerr != nil {
			logger.Errorf(ctx, rerr, "[%s] release IP %s after failed register", runID, ip)
		}
		if tokenID >= 0 {
			if ferr := reg.MarkNFTFailed(ctx, tokenID); ferr != nil {
				logger.Errorf(ctx, ferr, "[%s] fail token %d after failed register", runID, tokenID)
			}
		}
		return fmt.Errorf("register VM: %w", err)
	}

	logger.Infof(ctx, "[%s] registered %s (VMID %d, IP %s, expires in %d days)", runID, name, vmid, ip, expiryDays)
	logger.Infof(ctx, "[%s] machine credential UUID: %s", runID, utils.MachineUUID(name))
	if tokenID >= 0 {
		fmt.Printf("Token %d reserved. After the on-chain mint, record the outcome:\n", tokenID)
		fmt.Printf("  vmlease token minted %d %s\n", tokenID, wallet)
		fmt.Printf("  vmlease token failed %d\n", tokenID)
	}
	return nil
}
