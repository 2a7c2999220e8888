package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/packfeed/packfeed/pkg/nuget"
)

var countCmd = &cobra.Command{
	Use:   "count",
	Short: "print the total number of packages in the feed",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := openFeed()
		if err != nil {
			return err
		}
		n, err := nuget.Packages(svc).Query().Count(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Println(n)
		return nil
	},
}
