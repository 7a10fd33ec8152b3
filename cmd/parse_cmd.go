package cmd

import (
	"encoding/json"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/supabase/siwe/internal/utilities/siwe"
)

var parseCmd = cobra.Command{
	Use:   "parse [file]",
	Short: "Parse a message and print its fields as JSON",
	Long:  "Parse a message read from file, or from standard input when no file is given, and print its fields as JSON.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := readInput(cmd, args)
		if err != nil {
			return err
		}

		msg, err := siwe.ParseMessage(string(raw))
		if err != nil {
			return err
		}

		return printJSON(cmd.OutOrStdout(), msg)
	},
}

func readInput(cmd *cobra.Command, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}

	return os.ReadFile(args[0])
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
