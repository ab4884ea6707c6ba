package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newToolsCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "tools",
		Short: "List the tools the agent can call",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			rt, err := a.openRuntime(ctx, cmd.ErrOrStderr(), false)
			if err != nil {
				return err
			}
			defer rt.Close(context.WithoutCancel(ctx))

			if asJSON {
				data, err := json.MarshalIndent(rt.Registry().Export(), "", "  ")
				if err != nil {
					return errors.Wrapf(err, "failed to encode tools")
				}
				fmt.Fprintln(out, string(data))
				return nil
			}

			for _, s := range rt.Registry().Schemas() {
				fmt.Fprintln(out, s.CapabilityLine())
			}
			for _, role := range rt.Team().Roles() {
				fmt.Fprintf(out, "[%s] %v\n", role.Name, role.Tools)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON schemas")

	return cmd
}
