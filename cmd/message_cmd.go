package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/supabase/siwe/internal/api"
	"github.com/supabase/siwe/internal/conf"
	"github.com/supabase/siwe/internal/utilities/siwe"
)

func messageCmd() *cobra.Command {
	params := &api.MessageParams{}

	cmd := &cobra.Command{
		Use:   "message",
		Short: "Print a message for a wallet to sign, using the message configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := conf.LoadGlobal(configFile)
			if err != nil {
				return err
			}

			signer, err := api.NewNonceSigner(&config.Nonce)
			if err != nil {
				return err
			}

			msg, err := api.ComposeMessage(config, params, time.Now(), signer)
			if err != nil {
				return err
			}

			fmt.Fprint(cmd.OutOrStdout(), siwe.GenerateMessage(msg))
			return nil
		},
	}

	cmd.Flags().StringVar(&params.Address, "address", "", "wallet address, left as a placeholder when empty")
	cmd.Flags().StringVar(&params.Statement, "statement", "", "statement shown to the user")
	cmd.Flags().StringVar(&params.Nonce, "nonce", "", "nonce to embed, signed with the configured nonce secret when empty")
	cmd.Flags().StringVar(&params.RequestID, "request-id", "", "request ID to embed")
	cmd.Flags().StringVar(&params.ChainID, "chain-id", "", "chain ID, defaults to the configured chain")
	cmd.Flags().StringVar(&params.NotBefore, "not-before", "", "RFC 3339 time before which the message is not valid")

	return cmd
}
