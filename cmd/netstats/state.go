package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/worldland/netstats/internal/domain"
	"github.com/worldland/netstats/internal/services"
)

var presetsCmd = &cli.Command{
	Name:  "presets",
	Usage: "Manage saved filter presets",
	Subcommands: []*cli.Command{
		presetsList,
		presetsCreate,
		presetsUpdate,
		presetsRemove,
		presetsApply,
	},
}

var presetsList = &cli.Command{
	Name:  "list",
	Usage: "List presets",
	Action: func(cctx *cli.Context) error {
		return withDashboard(cctx, func(ctx context.Context, d *services.Dashboard) error {
			list, err := d.Presets.List()
			if err != nil {
				return err
			}
			newPrinter().PrintPresets(list, "")
			return nil
		})
	},
}

var presetsCreate = &cli.Command{
	Name:      "create",
	Usage:     "Save filters under a new name",
	ArgsUsage: "[name]",
	Flags:     []cli.Flag{filterFlag},
	Action: func(cctx *cli.Context) error {
		if cctx.NArg() != 1 {
			return fmt.Errorf("incorrect number of arguments, got %d", cctx.NArg())
		}
		return withDashboard(cctx, func(ctx context.Context, d *services.Dashboard) error {
			criteria, err := parseFilters(domain.DefaultCriteria(), cctx.StringSlice("filter"))
			if err != nil {
				return err
			}
			p, err := d.Presets.Create(cctx.Args().First(), criteria)
			if err != nil {
				return err
			}
			newPrinter().PrintSuccess("Preset " + p.Name + " saved")
			return nil
		})
	},
}

var presetsUpdate = &cli.Command{
	Name:      "update",
	Usage:     "Change the filters stored in a preset",
	ArgsUsage: "[name]",
	Flags:     []cli.Flag{filterFlag},
	Action: func(cctx *cli.Context) error {
		if cctx.NArg() != 1 {
			return fmt.Errorf("incorrect number of arguments, got %d", cctx.NArg())
		}
		name := cctx.Args().First()
		return withDashboard(cctx, func(ctx context.Context, d *services.Dashboard) error {
			current, err := d.Presets.Get(name)
			if err != nil {
				return err
			}
			criteria, err := parseFilters(current.Criteria, cctx.StringSlice("filter"))
			if err != nil {
				return err
			}
			if _, err := d.Presets.Update(name, criteria); err != nil {
				return err
			}
			newPrinter().PrintSuccess("Preset " + name + " updated")
			return nil
		})
	},
}

var presetsRemove = &cli.Command{
	Name:      "remove",
	Usage:     "Delete a preset",
	ArgsUsage: "[name]",
	Action: func(cctx *cli.Context) error {
		if cctx.NArg() != 1 {
			return fmt.Errorf("incorrect number of arguments, got %d", cctx.NArg())
		}
		return withDashboard(cctx, func(ctx context.Context, d *services.Dashboard) error {
			name := cctx.Args().First()
			if _, _, err := d.Presets.Remove(name); err != nil {
				return err
			}
			newPrinter().PrintSuccess("Preset " + name + " removed")
			return nil
		})
	},
}

var presetsApply = &cli.Command{
	Name:      "apply",
	Usage:     "List providers matching a preset",
	ArgsUsage: "[name]",
	Flags:     []cli.Flag{pageFlag},
	Action: func(cctx *cli.Context) error {
		if cctx.NArg() != 1 {
			return fmt.Errorf("incorrect number of arguments, got %d", cctx.NArg())
		}
		return withDashboard(cctx, func(ctx context.Context, d *services.Dashboard) error {
			criteria, err := d.Presets.Apply(cctx.Args().First())
			if err != nil {
				return err
			}
			if err := d.FetchProviders(ctx); err != nil {
				return err
			}
			d.View.SetCriteria(criteria)
			newPrinter().PrintProviders(d.View.PageOf(cctx.Int("page")))
			return nil
		})
	},
}

var networkCmd = &cli.Command{
	Name:  "network",
	Usage: "Show or change the statistics API network",
	Subcommands: []*cli.Command{
		{
			Name:  "show",
			Usage: "Show the selected network",
			Action: func(cctx *cli.Context) error {
				return withDashboard(cctx, func(ctx context.Context, d *services.Dashboard) error {
					selected, err := d.Prefs.SelectedNetwork()
					if err != nil {
						return err
					}
					p := newPrinter()
					p.PrintHeader("Networks")
					for _, name := range d.Prefs.Networks() {
						mark := " "
						if name == selected {
							mark = "*"
						}
						p.PrintField(mark, name)
					}
					return nil
				})
			},
		},
		{
			Name:      "select",
			Usage:     "Select a network by name",
			ArgsUsage: "[name]",
			Action: func(cctx *cli.Context) error {
				if cctx.NArg() != 1 {
					return fmt.Errorf("incorrect number of arguments, got %d", cctx.NArg())
				}
				return withDashboard(cctx, func(ctx context.Context, d *services.Dashboard) error {
					if err := d.Prefs.SelectNetwork(cctx.Args().First()); err != nil {
						return err
					}
					newPrinter().PrintSuccess("Selected " + cctx.Args().First())
					return nil
				})
			},
		},
	},
}
