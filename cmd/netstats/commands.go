package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/worldland/netstats/internal/auth"
	display "github.com/worldland/netstats/internal/cli"
	"github.com/worldland/netstats/internal/domain"
	"github.com/worldland/netstats/internal/pricing"
	"github.com/worldland/netstats/internal/providers"
	"github.com/worldland/netstats/internal/services"
	"github.com/worldland/netstats/internal/statsapi"
)

func newPrinter() *display.Printer {
	return display.NewPrinter(os.Stdout)
}

var pageFlag = &cli.IntFlag{
	Name:    "page",
	Aliases: []string{"p"},
	Usage:   "1-indexed page to show",
	Value:   1,
}

var filterFlag = &cli.StringSliceFlag{
	Name:    "filter",
	Aliases: []string{"f"},
	Usage:   "filter as key=value, e.g. golem.inf.cpu.threads=8 or showOffline=true (repeatable)",
}

var serveCmd = &cli.Command{
	Name:  "serve",
	Usage: "Poll the statistics API and serve the dashboard over HTTP",
	Action: func(cctx *cli.Context) error {
		cfg, err := setup(cctx)
		if err != nil {
			return err
		}
		d, err := services.NewDashboard(cfg)
		if err != nil {
			return err
		}
		return d.Serve(cctx.Context)
	},
}

var providersCmd = &cli.Command{
	Name:  "providers",
	Usage: "List providers of the selected network, sorted by earnings",
	Flags: []cli.Flag{
		pageFlag,
		filterFlag,
		&cli.StringFlag{
			Name:  "preset",
			Usage: "start from the filters of a saved preset",
		},
	},
	Action: func(cctx *cli.Context) error {
		return withDashboard(cctx, func(ctx context.Context, d *services.Dashboard) error {
			base := domain.DefaultCriteria()
			if name := cctx.String("preset"); name != "" {
				c, err := d.Presets.Apply(name)
				if err != nil {
					return err
				}
				base = c
			}
			criteria, err := parseFilters(base, cctx.StringSlice("filter"))
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

var summaryCmd = &cli.Command{
	Name:  "summary",
	Usage: "Show network totals",
	Action: func(cctx *cli.Context) error {
		return withDashboard(cctx, func(ctx context.Context, d *services.Dashboard) error {
			if err := d.FetchProviders(ctx); err != nil {
				return err
			}
			newPrinter().PrintSummary(d.View.Summary())
			return nil
		})
	},
}

var nodeCmd = &cli.Command{
	Name:      "node",
	Usage:     "Show a node with its pricing",
	ArgsUsage: "[node id]",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "benchmark",
			Usage: "also show a benchmark series (cpu, memory, disk, network, gpu)",
		},
	},
	Action: func(cctx *cli.Context) error {
		if cctx.NArg() != 1 {
			return fmt.Errorf("incorrect number of arguments, got %d", cctx.NArg())
		}
		nodeID := cctx.Args().First()
		return withDashboard(cctx, func(ctx context.Context, d *services.Dashboard) error {
			client, _, err := d.Client()
			if err != nil {
				return err
			}
			records, err := client.Node(ctx, nodeID)
			if errors.Is(err, statsapi.ErrNotFound) {
				return fmt.Errorf("node %s not found", nodeID)
			}
			if err != nil {
				return err
			}

			p := newPrinter()
			for i := range records {
				p.PrintNode(&records[i])
			}

			if uptime, err := client.Uptime(ctx, nodeID); err == nil {
				p.PrintField("First seen", uptime.FirstSeen)
				p.PrintField("Streak", uptime.CurrentStreak)
			}

			if kind := cctx.String("benchmark"); kind != "" {
				if !statsapi.ValidBenchmarkKind(kind) {
					return fmt.Errorf("unknown benchmark kind %q", kind)
				}
				results, err := client.Benchmark(ctx, kind, nodeID)
				if err != nil {
					return err
				}
				p.PrintHeader("Benchmark " + kind)
				for _, r := range results {
					p.PrintField(r.Timestamp, fmt.Sprintf("%.2f %s", r.Score, r.Unit))
				}
			}
			return nil
		})
	},
}

var operatorCmd = &cli.Command{
	Name:      "operator",
	Usage:     "List the nodes run by a wallet",
	ArgsUsage: "[wallet address]",
	Flags:     []cli.Flag{pageFlag},
	Action: func(cctx *cli.Context) error {
		if cctx.NArg() != 1 {
			return fmt.Errorf("incorrect number of arguments, got %d", cctx.NArg())
		}
		wallet := cctx.Args().First()
		return withDashboard(cctx, func(ctx context.Context, d *services.Dashboard) error {
			client, _, err := d.Client()
			if err != nil {
				return err
			}
			nodes, err := client.Operator(ctx, wallet)
			if errors.Is(err, statsapi.ErrNotFound) {
				return fmt.Errorf("operator %s not found", wallet)
			}
			if err != nil {
				return err
			}

			sorted := providers.Sorted(nodes)
			p := newPrinter()
			p.PrintSummary(providers.Summarize(sorted))
			p.PrintProviders(providers.Paginate(sorted, cctx.Int("page"), providers.ParticipationPageSize))
			return nil
		})
	},
}

var pricingCmd = &cli.Command{
	Name:  "pricing",
	Usage: "List online providers by hourly price, cheapest first",
	Flags: []cli.Flag{
		pageFlag,
		&cli.StringFlag{
			Name:  "runtime",
			Usage: "runtime to price (vm, vm-nvidia, wasmtime)",
			Value: domain.RuntimeVM,
		},
	},
	Action: func(cctx *cli.Context) error {
		return withDashboard(cctx, func(ctx context.Context, d *services.Dashboard) error {
			if err := d.FetchProviders(ctx); err != nil {
				return err
			}
			runtime := cctx.String("runtime")
			rows := pricing.NetworkTable(d.View.Providers(), runtime)
			newPrinter().PrintNetworkPricing(runtime, providers.Paginate(rows, cctx.Int("page"), providers.PricingPageSize))
			return nil
		})
	},
}

var loginCmd = &cli.Command{
	Name:  "login",
	Usage: "Sign in with a wallet key",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "key-file",
			Usage:   "file holding the hex private key (defaults to [Auth] KeyFile)",
			EnvVars: []string{"NETSTATS_KEY_FILE"},
		},
	},
	Action: func(cctx *cli.Context) error {
		cfg, err := setup(cctx)
		if err != nil {
			return err
		}
		keyFile := cctx.String("key-file")
		if keyFile == "" {
			keyFile = cfg.Auth.KeyFile
		}

		var wallet auth.WalletProvider
		if keyFile != "" {
			w, err := auth.LoadKeyWallet(keyFile)
			if err != nil {
				return err
			}
			wallet = w
		}

		d, err := services.NewDashboard(cfg)
		if err != nil {
			return err
		}
		defer d.Close()

		sess, err := d.Login(cctx.Context, wallet)
		if err != nil {
			return err
		}
		p := newPrinter()
		p.PrintSuccess("Signed in as " + sess.Address)
		if !sess.ExpiresAt.IsZero() {
			p.PrintField("Expires", sess.ExpiresAt.Local().Format(time.RFC1123))
		}
		return nil
	},
}

var logoutCmd = &cli.Command{
	Name:  "logout",
	Usage: "Forget the stored session",
	Action: func(cctx *cli.Context) error {
		return withDashboard(cctx, func(ctx context.Context, d *services.Dashboard) error {
			if err := d.Logout(); err != nil {
				return err
			}
			newPrinter().PrintSuccess("Signed out")
			return nil
		})
	},
}

var healthcheckCmd = &cli.Command{
	Name:      "healthcheck",
	Usage:     "Run a remote health check of a node",
	ArgsUsage: "[node id]",
	Flags: []cli.Flag{
		&cli.DurationFlag{
			Name:  "wait",
			Usage: "how long to wait for the result (0 returns immediately)",
			Value: 2 * time.Minute,
		},
	},
	Action: func(cctx *cli.Context) error {
		if cctx.NArg() != 1 {
			return fmt.Errorf("incorrect number of arguments, got %d", cctx.NArg())
		}
		return withDashboard(cctx, func(ctx context.Context, d *services.Dashboard) error {
			client, _, err := d.Client()
			if err != nil {
				return err
			}
			task, err := client.StartHealthcheck(ctx, cctx.Args().First())
			if err != nil {
				return err
			}
			if wait := cctx.Duration("wait"); wait > 0 && !task.Done() {
				final, err := client.WaitHealthcheck(ctx, task.TaskID, wait)
				if final != nil {
					task = final
				}
				if err != nil && !errors.Is(err, context.DeadlineExceeded) {
					return err
				}
			}
			newPrinter().PrintHealthcheck(task)
			return nil
		})
	},
}

var feedbackCmd = &cli.Command{
	Name:      "feedback",
	Usage:     "Send feedback to the statistics team",
	ArgsUsage: "[message]",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "contact", Usage: "how to reach you (optional)"},
	},
	Action: func(cctx *cli.Context) error {
		if cctx.NArg() != 1 {
			return fmt.Errorf("incorrect number of arguments, got %d", cctx.NArg())
		}
		return withDashboard(cctx, func(ctx context.Context, d *services.Dashboard) error {
			client, _, err := d.Client()
			if err != nil {
				return err
			}
			id, err := client.SubmitFeedback(ctx, statsapi.Feedback{
				Message: cctx.Args().First(),
				Contact: cctx.String("contact"),
				Page:    "cli",
			})
			if err != nil {
				return err
			}
			if err := d.Prefs.DismissFeedback(); err != nil {
				return err
			}
			newPrinter().PrintSuccess("Feedback sent: " + id)
			return nil
		})
	},
}

var versionCmd = &cli.Command{
	Name:    "version",
	Usage:   "print netstats version",
	Aliases: []string{"V"},
	Action: func(_ *cli.Context) error {
		fmt.Println(version)
		return nil
	},
}
