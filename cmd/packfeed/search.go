package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/packfeed/packfeed/pkg/feed"
	"github.com/packfeed/packfeed/pkg/nuget"
)

var searchCmd = &cobra.Command{
	Use:   "search <term>",
	Short: "search the feed and list matching packages",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := openFeed()
		if err != nil {
			return err
		}

		q := nuget.Search(svc, args[0])
		limit, err := cmd.Flags().GetInt("limit")
		if err != nil {
			return err
		}
		if limit > 0 {
			q.Limit(limit)
		}

		result, err := q.Execute(cmd.Context())
		if err != nil {
			return err
		}
		return result.Each(cmd.Context(), func(e feed.Entry) error {
			p := nuget.FromEntry(e)
			fmt.Printf("%s %s\t%s\n", p.ID, p.Version, p.Description)
			return nil
		})
	},
}

//nolint:gochecknoinit
func init() {
	searchCmd.Flags().Int("limit", 0, "maximum number of packages to list")
}
