package cmd

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/supabase/siwe/internal/api"
	"github.com/supabase/siwe/internal/chain"
	"github.com/supabase/siwe/internal/utilities"
)

var serveCmd = cobra.Command{
	Use:  "serve",
	Long: "Start API server",
	Run: func(cmd *cobra.Command, args []string) {
		serve(cmd.Context())
	},
}

func serve(ctx context.Context) {
	config := loadGlobalConfig(ctx)

	client, err := chain.Dial(ctx, &config.Chain)
	if err != nil {
		logrus.WithError(err).Fatal("unable to connect to chain RPC endpoint")
	}
	defer client.Close()

	a, err := api.NewAPIWithVersion(config, client, utilities.Version)
	if err != nil {
		logrus.WithError(err).Fatal("unable to create API")
	}

	a.Serve(ctx)
}
