package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"hepevd/internal/domain"
	"hepevd/internal/hierarchy"
	"hepevd/internal/render"
	"hepevd/internal/view"
)

var (
	inspectDim      string
	resolveToggles  []string
	resolveTypes    []string
	resolveMarkers  []string
	resolveParticle string
	resolveMC       bool
	resolveJSON     bool
)

var treeCmd = &cobra.Command{
	Use:   "tree FILE",
	Short: "Print the particle hierarchy of an event",
	Long: `Print the particle forest of one dimension the way the viewer's particle
menu shows it: roots ordered by interaction type precedence, then by hit count.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ev, err := readEvent(args[0])
		if err != nil {
			return err
		}
		dim, err := parseDim(inspectDim)
		if err != nil {
			return err
		}

		forest := hierarchy.Build(domain.ParticlesForDim(ev.Particles, dim), cfg.Precedence())
		fmt.Fprintln(cmd.OutOrStdout(), styles.Title.Render(fmt.Sprintf("%s particles (%s)", dim, eventName(ev))))
		fmt.Fprint(cmd.OutOrStdout(), renderTree(forest.Menu()))
		return nil
	},
}

var resolveCmd = &cobra.Command{
	Use:   "resolve FILE",
	Short: "Apply view actions to an event and print the resulting state",
	Long: `Build a view of one dimension, apply the given actions in order (property
toggles, then hit types, markers, MC and particle selection) and print what the
viewer would show.

"none" as a toggle clears the active properties.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ev, err := readEvent(args[0])
		if err != nil {
			return err
		}
		dim, err := parseDim(inspectDim)
		if err != nil {
			return err
		}

		scene := render.NewScene()
		v := view.New(ev.ForDim(dim), scene, view.Options{
			Styles:     cfg.Views.Styles(),
			Precedence: cfg.Precedence(),
		})
		defer v.Close()

		for _, name := range resolveToggles {
			v.OnHitPropertyChange(name)
		}
		for _, t := range resolveTypes {
			v.OnHitTypeChange(t)
		}
		for _, k := range resolveMarkers {
			v.OnMarkerChange(k)
		}
		if resolveMC {
			v.OnMCToggle()
		}
		if resolveParticle != "" {
			v.OnParticleSelect(resolveParticle)
		}

		snap := v.Snapshot()
		if resolveJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(snap)
		}
		fmt.Fprint(cmd.OutOrStdout(), renderSnapshot(snap))
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{treeCmd, resolveCmd} {
		c.Flags().StringVar(&inspectDim, "dim", "3D", "dimension to inspect (2D or 3D)")
	}
	resolveCmd.Flags().StringSliceVar(&resolveToggles, "toggle", nil, "property names to toggle, in order")
	resolveCmd.Flags().StringSliceVar(&resolveTypes, "type", nil, "hit types to toggle")
	resolveCmd.Flags().StringSliceVar(&resolveMarkers, "marker", nil, "marker kinds to toggle")
	resolveCmd.Flags().BoolVar(&resolveMC, "mc", false, "show MC hits")
	resolveCmd.Flags().StringVar(&resolveParticle, "particle", "", "particle id to select")
	resolveCmd.Flags().BoolVar(&resolveJSON, "json", false, "print the view state as JSON")
}

func parseDim(s string) (domain.Dim, error) {
	d := domain.Dim(s)
	if !d.Valid() {
		return "", fmt.Errorf("%w: %q", view.ErrUnknownDimension, s)
	}
	return d, nil
}

func eventName(ev *domain.Event) string {
	if ev.Name == "" {
		return "unnamed event"
	}
	return ev.Name
}
