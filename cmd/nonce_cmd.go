package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/supabase/siwe/internal/crypto"
)

var nonceCmd = cobra.Command{
	Use:   "nonce",
	Short: "Print a fresh random nonce",
	RunE: func(cmd *cobra.Command, args []string) error {
		nonce, err := crypto.GenerateNonce()
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), nonce)
		return nil
	},
}
