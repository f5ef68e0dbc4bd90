// Package cli implements pvctl, the offline valuation tool. It values order
// CSVs against a directory of <TICKER>.csv price files without a database.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/config"
	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/flatfile"
	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/logging"
	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/model"
	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/valuation"
	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/version"
	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/yahoo"
)

// NewRootCmd creates the root command
func NewRootCmd(cfg *config.Config) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "pvctl",
		Short:         "Offline portfolio valuation",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			if debug, _ := cmd.Flags().GetBool("debug"); debug {
				cfg.Log.Level = "debug"
			}
			logging.Setup(cfg.Log)
		},
	}

	rootCmd.PersistentFlags().StringVar(&cfg.FlatFile.StockDataDir, "data-dir", cfg.FlatFile.StockDataDir, "Directory of <TICKER>.csv price files")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")

	rootCmd.AddCommand(newValueCmd(cfg))
	rootCmd.AddCommand(newBenchmarkCmd(cfg))
	rootCmd.AddCommand(newFetchCmd(cfg))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func newValueCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "value ORDERS.csv",
		Short: "Value an orders file",
		Long: `Replay an orders CSV (Date,Type,Ticker,Shares,Price_Per_Share) against the
price files and print the daily value series and final allocation as JSON.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			end, err := dateFlag(cmd, "end")
			if err != nil {
				return err
			}
			if end.IsZero() {
				end = model.Day(time.Now().UTC())
			}
			return runValue(cmd.Context(), cmd.OutOrStdout(), cfg, args[0], end)
		},
	}
	cmd.Flags().String("end", "", "Valuation end date YYYY-MM-DD (today if not provided)")
	return cmd
}

func newBenchmarkCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "benchmark",
		Short: "Project monthly contributions into an allocation",
		Example: `  pvctl benchmark --start 2024-01-02 --monthly 500 --alloc SPY=60,VTI=40`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			start, err := dateFlag(cmd, "start")
			if err != nil {
				return err
			}
			end, err := dateFlag(cmd, "end")
			if err != nil {
				return err
			}
			if end.IsZero() {
				end = model.Day(time.Now().UTC())
			}
			monthly, _ := cmd.Flags().GetFloat64("monthly")
			raw, _ := cmd.Flags().GetString("alloc")
			alloc, err := ParseAllocation(raw)
			if err != nil {
				return err
			}
			return runBenchmark(cmd.Context(), cmd.OutOrStdout(), cfg, start, end, monthly, alloc)
		},
	}
	cmd.Flags().String("start", "", "First contribution date YYYY-MM-DD")
	cmd.Flags().String("end", "", "Projection end date YYYY-MM-DD (today if not provided)")
	cmd.Flags().Float64("monthly", 0, "Contribution per month in dollars")
	cmd.Flags().String("alloc", "SPY=100", "Comma separated INSTRUMENT=PERCENT pairs")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("monthly")
	return cmd
}

func newFetchCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch SYMBOL",
		Short: "Download daily closes from Yahoo Finance into the data directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := dateFlag(cmd, "start")
			if err != nil {
				return err
			}
			end, err := dateFlag(cmd, "end")
			if err != nil {
				return err
			}
			if end.IsZero() {
				end = model.Day(time.Now().UTC())
			}
			client := yahoo.NewFinanceClient(cfg.Yahoo.BaseURL, cfg.Yahoo.Timeout)
			return runFetch(cmd.Context(), cmd.OutOrStdout(), client, flatfile.NewPriceDir(cfg.FlatFile.StockDataDir), strings.ToUpper(args[0]), start, end)
		},
	}
	cmd.Flags().String("start", "", "First date YYYY-MM-DD")
	cmd.Flags().String("end", "", "Last date YYYY-MM-DD (today if not provided)")
	_ = cmd.MarkFlagRequired("start")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "pvctl %s\n", version.Version)
		},
	}
}

type valueOutput struct {
	Series     model.ValueSeries `json:"series"`
	Allocation model.Allocation  `json:"allocation"`
}

func runValue(ctx context.Context, w io.Writer, cfg *config.Config, ordersPath string, end time.Time) error {
	raw, err := flatfile.ReadOrdersFile(ordersPath)
	if err != nil {
		return err
	}
	ledger, err := valuation.NormalizeOrders(raw, valuation.NormalizeOptions{})
	if err != nil {
		return err
	}
	series, alloc, err := valuation.ComputeValueSeries(ctx, ledger.Orders, flatfile.NewPriceDir(cfg.FlatFile.StockDataDir), end,
		valuation.Options{LoadConcurrency: cfg.Valuation.LoadConcurrency})
	if err != nil {
		return err
	}
	return writeJSON(w, valueOutput{Series: series, Allocation: alloc})
}

func runBenchmark(ctx context.Context, w io.Writer, cfg *config.Config, start, end time.Time, monthly float64, alloc map[string]float64) error {
	normalized, err := valuation.NormalizeAllocation(alloc)
	if err != nil {
		return err
	}
	series, err := valuation.ProjectBenchmark(ctx, start, end, monthly, normalized, flatfile.NewPriceDir(cfg.FlatFile.StockDataDir),
		valuation.Options{LoadConcurrency: cfg.Valuation.LoadConcurrency})
	if err != nil {
		return err
	}
	return writeJSON(w, valuation.DropEmpty(series))
}

func runFetch(ctx context.Context, w io.Writer, client yahoo.Client, dir *flatfile.PriceDir, symbol string, start, end time.Time) error {
	if end.Before(start) {
		return fmt.Errorf("end %s is before start %s", model.DateKey(end), model.DateKey(start))
	}
	resp, err := client.QuerySymbolByDateRange(ctx, symbol, start, end)
	if err != nil {
		return err
	}
	chart, err := client.ParseChart(resp)
	if err != nil {
		return fmt.Errorf("failed to parse chart for %s: %w", symbol, err)
	}
	points := chart.PricePoints()
	if err := dir.SavePrices(symbol, points); err != nil {
		return err
	}
	fmt.Fprintf(w, "%s: wrote %d closes to %s\n", symbol, len(points), dir.Dir())
	return nil
}

// ParseAllocation reads "SPY=60,VTI=40" into a percentage map.
func ParseAllocation(s string) (map[string]float64, error) {
	out := map[string]float64{}
	for _, pair := range strings.Split(s, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		name, pct, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("invalid allocation entry %q: want INSTRUMENT=PERCENT", pair)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(pct), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid percentage in %q: %w", pair, err)
		}
		out[strings.ToUpper(strings.TrimSpace(name))] += v
	}
	return out, nil
}

func dateFlag(cmd *cobra.Command, name string) (time.Time, error) {
	s, _ := cmd.Flags().GetString(name)
	if s == "" {
		return time.Time{}, nil
	}
	d, err := model.ParseDate(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --%s, use YYYY-MM-DD: %w", name, err)
	}
	return d, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Execute runs pvctl and returns the process exit code.
func Execute(cfg *config.Config, args []string) int {
	root := NewRootCmd(cfg)
	root.SetArgs(args)
	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}
