package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/packfeed/packfeed/pkg/feed"
	"github.com/packfeed/packfeed/pkg/nuget"
)

var getCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "list all versions of a package and its latest release",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := openFeed()
		if err != nil {
			return err
		}

		result, err := nuget.ByID(svc, args[0]).Execute(cmd.Context())
		if err != nil {
			return err
		}

		var pkgs []nuget.Package
		err = result.Each(cmd.Context(), func(e feed.Entry) error {
			pkgs = append(pkgs, nuget.FromEntry(e))
			return nil
		})
		if err != nil {
			return err
		}
		if len(pkgs) == 0 {
			return errors.Errorf("package %q not found", args[0])
		}

		for _, p := range pkgs {
			fmt.Printf("%s %s\n", p.ID, p.Version)
		}
		if latest, ok := nuget.Latest(pkgs); ok {
			fmt.Printf("latest: %s %s\n", latest.ID, latest.Version)
		}
		return nil
	},
}
