package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/google/subcommands"

	"cryptofolio/internal/backend"
	"cryptofolio/internal/cli"
	"cryptofolio/internal/config"
	applog "cryptofolio/internal/log"
	"cryptofolio/internal/services"
	"cryptofolio/internal/storage"
	"cryptofolio/internal/timeseries"
)

var commands = []subcommands.Command{
	&initCmd{},
	&resetCmd{},
	&summaryCmd{},
	&restoreCmd{},
}

// env is what every command works against.
type env struct {
	cfg       *config.Config
	logger    *applog.Logger
	repo      *storage.SQLiteRepository
	portfolio *services.PortfolioService
	seeder    *services.Seeder
}

func openEnv() (*env, error) {
	logger := cli.SetupLogger(applog.ComponentCLI)
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	repo, err := cli.OpenSQLite(cfg.SQLiteDBPath)
	if err != nil {
		return nil, err
	}
	portfolio := services.NewPortfolioService(repo, services.PortfolioServiceOptions{Logger: logger})
	return &env{
		cfg:       cfg,
		logger:    logger,
		repo:      repo,
		portfolio: portfolio,
		seeder:    services.NewSeeder(repo, portfolio, logger.Slog()),
	}, nil
}

func (e *env) Close() {
	_ = e.repo.Close()
}

// withEnv opens the environment, runs fn and maps its error to an exit status.
func withEnv(ctx context.Context, fn func(ctx context.Context, e *env) error) subcommands.ExitStatus {
	e, err := openEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer e.Close()

	if err := fn(ctx, e); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

type initCmd struct{}

func (*initCmd) Name() string     { return "init" }
func (*initCmd) Synopsis() string { return "create the database, the default user and its first portfolio" }
func (*initCmd) Usage() string {
	return `portfolioctl init

  Runs the migrations and makes sure the default user owns a portfolio.
  Safe to run more than once.
`
}
func (*initCmd) SetFlags(*flag.FlagSet) {}

func (*initCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withEnv(ctx, func(ctx context.Context, e *env) error {
		user, p, err := e.seeder.Init(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("schema v%d, user %d (%s), portfolio %d (%s)\n",
			e.repo.SchemaVersion(), user.ID, user.Username, p.ID, p.Name)
		return nil
	})
}

type resetCmd struct {
	seed      string
	portfolio int64
}

func (*resetCmd) Name() string     { return "reset" }
func (*resetCmd) Synopsis() string { return "replace a portfolio's history with a seed file" }
func (*resetCmd) Usage() string {
	return `portfolioctl reset -seed <file.json> [-portfolio <id>]

  The seed file holds the Total, Net Spent and Profit series as
  [{"title": "...", "values": [{"date": "YYYY-MM-DD", "value": 1.5}]}].
  Values sharing a date are averaged into one history row.
`
}

func (c *resetCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.seed, "seed", "", "Path of the JSON seed file.")
	f.Int64Var(&c.portfolio, "portfolio", 0, "Portfolio id. Defaults to the default user's first portfolio.")
}

func (c *resetCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.seed == "" {
		fmt.Fprintln(os.Stderr, "reset: -seed is required")
		return subcommands.ExitUsageError
	}
	return withEnv(ctx, func(ctx context.Context, e *env) error {
		id, err := resolvePortfolio(ctx, e, c.portfolio)
		if err != nil {
			return err
		}
		f, err := os.Open(c.seed)
		if err != nil {
			return err
		}
		defer f.Close()

		n, err := e.seeder.Reset(ctx, id, f)
		if err != nil {
			return err
		}
		fmt.Printf("portfolio %d: %d history rows written\n", id, n)
		return nil
	})
}

type summaryCmd struct {
	portfolio int64
	interval  string
}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "print the summary cards of a portfolio" }
func (*summaryCmd) Usage() string {
	return `portfolioctl summary [-portfolio <id>] [-interval <days>]

  An interval of 0 keeps the whole history.
`
}

func (c *summaryCmd) SetFlags(f *flag.FlagSet) {
	f.Int64Var(&c.portfolio, "portfolio", 0, "Portfolio id. Defaults to the default user's first portfolio.")
	f.StringVar(&c.interval, "interval", "", "Window in days. Defaults to DEFAULT_INTERVAL_DAYS.")
}

func (c *summaryCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withEnv(ctx, func(ctx context.Context, e *env) error {
		interval := e.cfg.DefaultIntervalDays
		if c.interval != "" {
			v, err := timeseries.ParseInterval(c.interval)
			if err != nil {
				return err
			}
			interval = v
		}
		id, err := resolvePortfolio(ctx, e, c.portfolio)
		if err != nil {
			return err
		}
		cards, err := e.portfolio.PortfolioSummary(ctx, id, interval)
		if err != nil {
			return err
		}
		return printCards(os.Stdout, cards)
	})
}

type restoreCmd struct {
	portfolio int64
}

func (*restoreCmd) Name() string     { return "restore" }
func (*restoreCmd) Synopsis() string { return "rebuild a portfolio's history from the mirror" }
func (*restoreCmd) Usage() string {
	return `portfolioctl restore [-portfolio <id>]

  Reads the rows mirrored for the portfolio (MIRROR_BACKEND) and replaces
  the local history with them. Restored rows are marked synced.
`
}

func (c *restoreCmd) SetFlags(f *flag.FlagSet) {
	f.Int64Var(&c.portfolio, "portfolio", 0, "Portfolio id. Defaults to the default user's first portfolio.")
}

func (c *restoreCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withEnv(ctx, func(ctx context.Context, e *env) error {
		id, err := resolvePortfolio(ctx, e, c.portfolio)
		if err != nil {
			return err
		}
		mirrorCfg, err := backend.FromAppConfig(e.cfg)
		if err != nil {
			return err
		}
		mirror, err := backend.NewFactory(e.logger.Slog()).CreateMirror(ctx, mirrorCfg)
		if err != nil {
			return err
		}
		if mirror.Cleanup != nil {
			defer mirror.Cleanup()
		}

		rows, err := mirror.Mirror.ReadHistory(ctx, id)
		if err != nil {
			return fmt.Errorf("read mirror: %w", err)
		}
		n, err := e.seeder.Restore(ctx, id, rows)
		if err != nil {
			return err
		}
		fmt.Printf("portfolio %d: %d history rows restored from %s mirror\n", id, n, mirror.Kind)
		return nil
	})
}

// resolvePortfolio returns id, or the default portfolio when id is 0.
func resolvePortfolio(ctx context.Context, e *env, id int64) (int64, error) {
	if id != 0 {
		if _, err := e.repo.GetPortfolio(ctx, id); err != nil {
			return 0, fmt.Errorf("portfolio %d: %w", id, err)
		}
		return id, nil
	}
	_, p, err := e.seeder.Init(ctx)
	if err != nil {
		return 0, err
	}
	return p.ID, nil
}

func printCards(w io.Writer, cards []timeseries.SummaryCard) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TITLE\tVALUE\tCHANGE\tUSD CHANGE\tTREND\tPOINTS\tWINDOW")
	for _, c := range cards {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\t%s\n",
			c.Title, c.Value, c.FormattedPercent, c.FormattedUSD, c.Trend, len(c.Values), c.IntervalString)
	}
	return tw.Flush()
}
