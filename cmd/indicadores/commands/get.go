package commands

import (
	"errors"
	"fmt"
	"indicadores-backend/internal/store"

	"cloud.google.com/go/civil"
	"github.com/spf13/cobra"
)

var getCmd = &cobra.Command{
	Use:   "get <code> <yyyy-mm-dd>",
	Short: "Prints the stored value of an indicator at a date.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		date, err := civil.ParseDate(args[1])
		if err != nil {
			return fmt.Errorf("invalid date %q: %w", args[1], err)
		}

		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		value, err := a.service.GetValue(cmd.Context(), args[0], date)
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("no value for %s at %s", args[0], date)
		}
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), value.String())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(getCmd)
}
