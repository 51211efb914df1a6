package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the tzdata version that would be compiled",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, version, _, err := resolveSource()
			if err != nil {
				return fmt.Errorf("version: %w", err)
			}
			fmt.Println(version)
			return nil
		},
	}
}
