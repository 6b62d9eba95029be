package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/OlderMutt/Surface-Minder/internal/core/services"
)

var (
	baselineTenant   string
	baselineArtifact string
	baselineKinds    []string
)

var baselineCmd = &cobra.Command{
	Use:   "baseline",
	Short: "Manage per-tenant approved baselines",
}

var baselineSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Replace a tenant's baseline from the latest artifacts (or one named artifact)",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()
		ctx := cmd.Context()

		if baselineArtifact != "" {
			snap, err := store.ObservationsFor(ctx, []string{baselineArtifact})
			if err != nil {
				return err
			}
			if err := store.SetBaseline(ctx, baselineTenant, snap.Observations()); err != nil {
				return err
			}
			fmt.Printf("Baseline for tenant %s set from artifact %s (%d observations)\n",
				baselineTenant, baselineArtifact, len(snap.Observations()))
			return nil
		}

		monitor := services.NewMonitor(store, store)
		artifacts, err := monitor.SetBaselineFromLatest(ctx, baselineTenant, baselineKinds)
		if err != nil {
			return err
		}
		if len(artifacts) == 0 {
			fmt.Printf("No artifacts available: baseline for tenant %s is now empty\n", baselineTenant)
			return nil
		}
		fmt.Printf("Baseline for tenant %s set from:\n", baselineTenant)
		for _, a := range artifacts {
			fmt.Printf("  - %s (%s)\n", a.Name, a.Kind)
		}
		return nil
	},
}

var baselineShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print a tenant's current baseline",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		snap, err := store.BaselineFor(cmd.Context(), baselineTenant)
		if err != nil {
			return err
		}
		observations := snap.Observations()
		if len(observations) == 0 {
			fmt.Printf("Tenant %s has an empty baseline\n", baselineTenant)
			return nil
		}
		for _, o := range observations {
			fmt.Printf("%s  %d/%s  state=%s  svc=%s\n", o.Host, o.Port, o.Proto, o.State, o.Service)
		}
		return nil
	},
}

var baselineTenantsCmd = &cobra.Command{
	Use:   "tenants",
	Short: "List tenants that have a baseline",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		tenants, err := store.Tenants(cmd.Context())
		if err != nil {
			return err
		}
		for _, t := range tenants {
			fmt.Println(t)
		}
		return nil
	},
}

func init() {
	baselineSetCmd.Flags().StringVar(&baselineTenant, "tenant", "", "Tenant name")
	baselineSetCmd.Flags().StringVar(&baselineArtifact, "artifact", "", "Take the baseline from this artifact instead of the latest")
	baselineSetCmd.Flags().StringSliceVar(&baselineKinds, "kinds", defaultKinds(), "Scan kinds to combine")
	baselineSetCmd.MarkFlagRequired("tenant")

	baselineShowCmd.Flags().StringVar(&baselineTenant, "tenant", "", "Tenant name")
	baselineShowCmd.MarkFlagRequired("tenant")

	baselineCmd.AddCommand(baselineSetCmd, baselineShowCmd, baselineTenantsCmd)
	rootCmd.AddCommand(baselineCmd)
}
