package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ternarybob/travelpdf/internal/common"
)

func (c *cli) newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(c.stdout, "TravelPDF version %s\n", common.GetFullVersion())
		},
	}
}
