package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/supabase/siwe/internal/chain"
	"github.com/supabase/siwe/internal/conf"
	"github.com/supabase/siwe/internal/utilities/siwe"
)

func verifyCmd() *cobra.Command {
	var (
		messageFile string
		payload     siwe.Payload
		params      siwe.VerifyParams
	)

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify a signed message against the signing wallet contract",
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(messageFile)
			if err != nil {
				return err
			}
			payload.Message = string(raw)

			config, err := conf.LoadChain(configFile)
			if err != nil {
				return err
			}

			client, err := chain.Dial(cmd.Context(), config)
			if err != nil {
				return err
			}
			defer client.Close()

			verifier, err := siwe.NewVerifier(siwe.EnvironmentBackend, client)
			if err != nil {
				return err
			}

			result, err := verifier.Verify(cmd.Context(), payload, params)
			if err != nil {
				return err
			}

			return printJSON(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().StringVar(&messageFile, "message-file", "", "file holding the exact signed message")
	cmd.Flags().StringVar(&payload.Signature, "signature", "", "hex encoded signature")
	cmd.Flags().StringVar(&payload.Address, "address", "", "wallet contract address")
	cmd.Flags().StringVar(&params.Nonce, "nonce", "", "expected nonce")
	cmd.Flags().StringVar(&params.Statement, "statement", "", "expected statement")
	cmd.Flags().StringVar(&params.RequestID, "request-id", "", "expected request ID")

	_ = cmd.MarkFlagRequired("message-file")
	_ = cmd.MarkFlagRequired("signature")
	_ = cmd.MarkFlagRequired("address")
	_ = cmd.MarkFlagRequired("nonce")

	return cmd
}
