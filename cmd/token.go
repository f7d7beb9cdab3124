package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/projecteru2/core/log"
	"github.com/spf13/cobra"
)

var tokenCmd = func() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage access-credential token reservations",
	}
	cmd.AddCommand(tokenReserveCmd, tokenMintedCmd, tokenFailedCmd, tokenInspectCmd)
	return cmd
}()

var tokenReserveCmd = &cobra.Command{
	Use:   "reserve VM_NAME",
	Short: "Reserve the next token id for a VM",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		reg, err := initRegistry(ctx)
		if err != nil {
			return err
		}
		id, err := reg.ReserveNFTTokenID(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Println(id)
		return nil
	},
}

var tokenMintedCmd = &cobra.Command{
	Use:   "minted TOKEN_ID OWNER_WALLET",
	Short: "Record a successful on-chain mint",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		id, err := parseTokenID(args[0])
		if err != nil {
			return err
		}
		reg, err := initRegistry(ctx)
		if err != nil {
			return err
		}
		if err := reg.MarkNFTMinted(ctx, id, args[1]); err != nil {
			return fmt.Errorf("mark minted: %w", err)
		}
		log.WithFunc("cmd.token").Infof(ctx, "token %d minted to %s", id, args[1])
		return nil
	},
}

var tokenFailedCmd = &cobra.Command{
	Use:   "failed TOKEN_ID",
	Short: "Record a failed mint; the id stays burned",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		id, err := parseTokenID(args[0])
		if err != nil {
			return err
		}
		reg, err := initRegistry(ctx)
		if err != nil {
			return err
		}
		if err := reg.MarkNFTFailed(ctx, id); err != nil {
			return fmt.Errorf("mark failed: %w", err)
		}
		log.WithFunc("cmd.token").Infof(ctx, "token %d marked failed", id)
		return nil
	},
}

var tokenInspectCmd = &cobra.Command{
	Use:   "inspect TOKEN_ID",
	Short: "Show a token record (JSON)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		id, err := parseTokenID(args[0])
		if err != nil {
			return err
		}
		reg, err := initRegistry(ctx)
		if err != nil {
			return err
		}
		tok, err := reg.GetNFTToken(ctx, id)
		if err != nil {
			return err
		}
		if tok == nil {
			return fmt.Errorf("token %d not found", id)
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(tok)
	},
}

func parseTokenID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id < 0 {
		return 0, fmt.Errorf("invalid token id %q", s)
	}
	return id, nil
}
