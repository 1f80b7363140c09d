package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"fintrack/internal/auth"
	"fintrack/internal/config"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/projection"
	"fintrack/internal/services"
	"fintrack/internal/storage"
)

// app carries the persistent flags shared by every sub-command.
type app struct {
	out        io.Writer
	configPath string
	logLevel   string
	userID     int64

	cfg    *config.Config
	logger *log.Logger
}

// NewRootCommand builds the fintrackctl command tree writing to out.
func NewRootCommand(out io.Writer) *cobra.Command {
	a := &app{out: out}

	root := &cobra.Command{
		Use:           "fintrackctl",
		Short:         "Operate a fintrack deployment from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
	}
	root.SetOut(out)
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "TOML config file (overrides "+config.ConfigFileEnv+")")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "debug, info, warn or error")
	root.PersistentFlags().Int64VarP(&a.userID, "user", "u", 0, "user ID to act on")

	root.AddCommand(
		a.projectCmd(),
		a.importCmd(),
		a.exportCmd(),
		a.tokenCmd(),
		a.rolloverCmd(),
		a.migrateCmd(),
	)
	return root
}

// Execute runs fintrackctl and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := NewRootCommand(os.Stdout).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}

func (a *app) init() error {
	LoadEnvFile()
	if a.configPath != "" {
		if err := os.Setenv(config.ConfigFileEnv, a.configPath); err != nil {
			return err
		}
	}
	cfg, err := LoadAndValidateConfig()
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	a.cfg = cfg
	a.logger = SetupLogger("cli", cfg.LogLevel)
	return nil
}

func (a *app) requireUser() error {
	if a.userID <= 0 {
		return errors.New("--user is required")
	}
	return nil
}

// withFinance opens the configured backend for the duration of fn.
func (a *app) withFinance(ctx context.Context, fn func(svc *services.FinanceService) error) error {
	res, err := OpenBackend(ctx, a.cfg, a.logger)
	if err != nil {
		return err
	}
	defer CloseBackend(res, a.logger)
	return fn(services.NewFinanceService(res.Backend, nil))
}

func parseDateFlag(cmd *cobra.Command, name string) (core.Date, error) {
	v, _ := cmd.Flags().GetString(name)
	if v == "" {
		return core.Date{}, nil
	}
	d, err := core.ParseDate(v)
	if err != nil {
		return core.Date{}, fmt.Errorf("--%s: %w", name, err)
	}
	return d, nil
}

func rangeFlags(cmd *cobra.Command) (projection.Range, error) {
	start, err := parseDateFlag(cmd, "start")
	if err != nil {
		return projection.Range{}, err
	}
	end, err := parseDateFlag(cmd, "end")
	if err != nil {
		return projection.Range{}, err
	}
	return projection.Range{Start: start, End: end}, nil
}

func addRangeFlags(cmd *cobra.Command) {
	cmd.Flags().String("start", "", "first day (YYYY-MM-DD), default first of the anchor month")
	cmd.Flags().String("end", "", "last day (YYYY-MM-DD), default anchor plus two years")
}

func (a *app) projectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Print a user's projected daily balances",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireUser(); err != nil {
				return err
			}
			r, err := rangeFlags(cmd)
			if err != nil {
				return err
			}
			monthly, _ := cmd.Flags().GetBool("monthly")

			return a.withFinance(cmd.Context(), func(svc *services.FinanceService) error {
				days, err := svc.Calendar(cmd.Context(), a.userID, r)
				if err != nil {
					return err
				}
				tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', tabwriter.AlignRight)
				defer tw.Flush()
				if monthly {
					fmt.Fprintln(tw, "MONTH\tINCOME\tBILLS\tEXPENSES\tNET\tEND BALANCE\t")
					for _, m := range projection.SummarizeMonths(days) {
						fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t\n", m.Label,
							core.FormatAmount(m.Income), core.FormatAmount(m.Bills), core.FormatAmount(m.Expenses),
							core.FormatAmount(m.Net), core.FormatAmount(m.EndBalance))
					}
					return nil
				}
				fmt.Fprintln(tw, "DATE\tINCOME\tBILLS\tEXPENSES\tBALANCE\t")
				for _, d := range days {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t\n", d.Date,
						core.FormatAmount(d.Income()), core.FormatAmount(d.BillTotal()),
						core.FormatAmount(d.ExpenseTotal()), core.FormatAmount(d.RunningBalance))
				}
				return nil
			})
		},
	}
	addRangeFlags(cmd)
	cmd.Flags().Bool("monthly", false, "print the monthly summary instead of daily rows")
	return cmd
}

func (a *app) importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Import recurring bills from a CSV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireUser(); err != nil {
				return err
			}
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open %s: %w", args[0], err)
			}
			defer f.Close()

			return a.withFinance(cmd.Context(), func(svc *services.FinanceService) error {
				bills, err := svc.ImportBills(cmd.Context(), a.userID, f)
				if err != nil {
					return err
				}
				fmt.Fprintf(a.out, "Imported %d bills\n", len(bills))
				return nil
			})
		},
	}
}

func (a *app) exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the balance report CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireUser(); err != nil {
				return err
			}
			r, err := rangeFlags(cmd)
			if err != nil {
				return err
			}
			outPath, _ := cmd.Flags().GetString("out")

			return a.withFinance(cmd.Context(), func(svc *services.FinanceService) error {
				export, err := svc.ExportCSV(cmd.Context(), a.userID, r)
				if err != nil {
					return err
				}
				if outPath == "-" {
					_, err := a.out.Write(export.Body)
					return err
				}
				if outPath == "" {
					outPath = export.Filename
				}
				if err := os.WriteFile(outPath, export.Body, 0o644); err != nil {
					return fmt.Errorf("write %s: %w", outPath, err)
				}
				fmt.Fprintf(a.out, "Wrote %s\n", outPath)
				return nil
			})
		},
	}
	addRangeFlags(cmd)
	cmd.Flags().StringP("out", "o", "", "output path, - for stdout (default balance-report-<start>-to-<end>.csv)")
	return cmd
}

func (a *app) tokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an API bearer token for a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireUser(); err != nil {
				return err
			}
			ttl, _ := cmd.Flags().GetDuration("ttl")
			if ttl <= 0 {
				ttl = a.cfg.TokenTTL
			}
			issuer, err := auth.NewIssuer(a.cfg.JWTSecret, ttl)
			if err != nil {
				return err
			}
			tok, err := issuer.Mint(a.userID)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, tok)
			return nil
		},
	}
	cmd.Flags().Duration("ttl", 0, "token lifetime (default TOKEN_TTL)")
	return cmd
}

func (a *app) rolloverCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rollover",
		Short: "Advance every stale account anchor to today",
		RunE: func(cmd *cobra.Command, args []string) error {
			today, err := parseDateFlag(cmd, "date")
			if err != nil {
				return err
			}
			if today.IsZero() {
				today = core.Today()
			}

			res, err := OpenBackend(cmd.Context(), a.cfg, a.logger)
			if err != nil {
				return err
			}
			defer CloseBackend(res, a.logger)

			p := services.NewRolloverProcessor(res.Backend, services.RolloverOptions{
				Notifier:    Notifier(a.cfg),
				Threshold:   a.cfg.LowBalanceThreshold,
				HorizonDays: a.cfg.AlertHorizonDays,
			})
			result, err := p.ProcessAll(cmd.Context(), today)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "rolled=%d current=%d conflicts=%d failed=%d alerts=%d\n",
				result.Rolled, result.Current, result.Conflicts, result.Failed, result.Alerts)
			if result.Failed > 0 {
				return fmt.Errorf("%d accounts failed to roll over", result.Failed)
			}
			return nil
		},
	}
	cmd.Flags().String("date", "", "treat this day (YYYY-MM-DD) as today")
	return cmd
}

func (a *app) migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the SQLite schema",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := a.init(); err != nil {
				return err
			}
			if a.cfg.DataBackend != "sqlite" {
				return fmt.Errorf("migrations need DATA_BACKEND=sqlite, got %q", a.cfg.DataBackend)
			}
			return nil
		},
	}

	up := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := storage.RunMigrations(a.cfg.SQLiteDBPath); err != nil {
				return err
			}
			return a.printVersion()
		},
	}

	down := &cobra.Command{
		Use:   "down [STEPS]",
		Short: "Revert applied migrations (default 1)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			steps := 1
			if len(args) == 1 {
				n, err := strconv.Atoi(args[0])
				if err != nil || n < 1 {
					return fmt.Errorf("invalid step count %q", args[0])
				}
				steps = n
			}
			if err := storage.RollbackMigrations(a.cfg.SQLiteDBPath, steps); err != nil {
				return err
			}
			return a.printVersion()
		},
	}

	version := &cobra.Command{
		Use:   "version",
		Short: "Print the schema version",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.printVersion()
		},
	}

	cmd.AddCommand(up, down, version)
	return cmd
}

func (a *app) printVersion() error {
	v, dirty, err := storage.MigrationVersion(a.cfg.SQLiteDBPath)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "version=%d dirty=%t\n", v, dirty)
	return nil
}
