package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/frahmantamala/backoffice/internal/auth"
	"github.com/frahmantamala/backoffice/internal/transport/rest"
	"github.com/spf13/cobra"
)

var permissionsCmd = &cobra.Command{
	Use:   "permissions",
	Short: "List the permission catalog",
	Long:  `Print every permission grouped by resource and check that each API operation declares a known one.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		for _, g := range auth.CatalogGroups() {
			fmt.Fprintf(w, "%s\n", g.Name)
			for _, p := range g.Permissions {
				fmt.Fprintf(w, "  %s\t%s\n", p.Code, p.Description)
			}
		}
		if err := w.Flush(); err != nil {
			return err
		}

		var declared []auth.Permission
		for _, op := range rest.Operations() {
			if op.Gated() {
				declared = append(declared, op.Permission)
			}
		}
		unused, err := auth.CheckCatalog(declared)
		if err != nil {
			return err
		}
		for _, p := range unused {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s is not required by any operation\n", p)
		}
		return nil
	},
}
