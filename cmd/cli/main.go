package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"

	"github.com/StephenStolk/analyseX-sub001/adapters/excel"
	"github.com/StephenStolk/analyseX-sub001/app"
	"github.com/StephenStolk/analyseX-sub001/domain/stats"
	"github.com/StephenStolk/analyseX-sub001/internal/config"
	"github.com/StephenStolk/analyseX-sub001/internal/container"
	"github.com/StephenStolk/analyseX-sub001/internal/dataset"
	"github.com/StephenStolk/analyseX-sub001/internal/report"

	"github.com/spf13/cobra"
)

var configPath string

func main() {
	rootCmd := &cobra.Command{
		Use:           "analysex",
		Short:         "Statistical analysis and forecasting for CSV and Excel files",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML config file")

	rootCmd.AddCommand(
		newAnalyzeCmd(),
		newForecastCmd(),
		newDescribeCmd(),
		newReportsCmd(),
		newServeCmd(),
		newMigrateCmd(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// withContainer loads the config and builds the dependencies for one command
func withContainer(ctx context.Context, fn func(*container.Container) error) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	c, err := container.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer c.Close()
	return fn(c)
}

func loadDataset(c *container.Container, path string) (*dataset.Dataset, string, error) {
	reader, err := excel.NewDataReader(path)
	if err != nil {
		return nil, "", err
	}
	data, err := reader.ReadData()
	if err != nil {
		return nil, "", err
	}
	return data.Dataset(c.Config.Engine.DatasetOptions()), data.Name, nil
}

func newAnalyzeCmd() *cobra.Command {
	var opts app.AnalyzeOptions
	var htmlOut string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "analyze [file]",
		Short: "Run the full analysis and print a Markdown report",
		Long: `Profile a CSV, TSV or XLSX file and compute descriptive statistics, correlations,
regressions, trends, anomalies, a forecast comparison and a data quality score.

The narrative uses the configured model when an API key is set (OPENAI_API_KEY or
ANALYSEX_AI_API_KEY) and the built-in template otherwise.

Example: analysex analyze sales.csv --time-col month --value-col revenue --horizon 6 --narrate`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(cmd.Context(), func(c *container.Container) error {
				return runAnalyze(cmd.Context(), c, args[0], opts, htmlOut, asJSON, cmd.OutOrStdout())
			})
		},
	}

	cmd.Flags().StringVar(&opts.Name, "name", "", "Report name (default: file name)")
	cmd.Flags().StringVar(&opts.TimeColumn, "time-col", "", "Time column for the forecast")
	cmd.Flags().StringVar(&opts.ValueColumn, "value-col", "", "Column to forecast (default: first numeric column)")
	cmd.Flags().StringSliceVar(&opts.Columns, "columns", nil, "Columns for the correlation matrix")
	cmd.Flags().IntVar(&opts.Horizon, "horizon", 0, "Forecast horizon (default: engine.forecast_horizon)")
	cmd.Flags().BoolVar(&opts.Narrate, "narrate", false, "Write a narrative summary")
	cmd.Flags().BoolVar(&opts.Save, "save", false, "Store the report in the database")
	cmd.Flags().StringVar(&htmlOut, "html", "", "Also write the report as HTML to this path")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the bundle as JSON instead of Markdown")
	return cmd
}

func runAnalyze(ctx context.Context, c *container.Container, path string, opts app.AnalyzeOptions, htmlOut string, asJSON bool, out io.Writer) error {
	ds, name, err := loadDataset(c, path)
	if err != nil {
		return err
	}
	if opts.Name == "" {
		opts.Name = name
	}

	result, err := c.Service.Analyze(ctx, ds, opts)
	if err != nil {
		return err
	}

	if htmlOut != "" {
		if err := os.WriteFile(htmlOut, report.RenderHTML(result.Bundle, result.Narrative), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", htmlOut, err)
		}
	}
	if asJSON {
		return printJSON(out, result)
	}

	fmt.Fprint(out, report.Markdown(result.Bundle, result.Narrative))
	if !result.ReportID.IsEmpty() {
		fmt.Fprintf(out, "\nSaved as report %s\n", result.ReportID)
	}
	return nil
}

func newForecastCmd() *cobra.Command {
	var timeCol, valueCol, method string
	var horizon int

	cmd := &cobra.Command{
		Use:   "forecast [file]",
		Short: "Forecast one column with one or all methods",
		Long: `Forecast a numeric column. Without --method every method runs and the one with
the lowest MAPE is marked best.

Methods: linear, movingAverage, exponentialSmoothing, holtWinters

Example: analysex forecast sales.csv --time-col month --value-col revenue --horizon 12`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(cmd.Context(), func(c *container.Container) error {
				ds, _, err := loadDataset(c, args[0])
				if err != nil {
					return err
				}
				cmp, err := c.Service.Forecast(cmd.Context(), ds, timeCol, valueCol, horizon, stats.ForecastMethod(method))
				if err != nil {
					return err
				}
				return printForecast(cmd.OutOrStdout(), cmp)
			})
		},
	}

	cmd.Flags().StringVar(&timeCol, "time-col", "", "Time column (default: row order)")
	cmd.Flags().StringVar(&valueCol, "value-col", "", "Column to forecast")
	cmd.Flags().StringVar(&method, "method", "", "Single method to run")
	cmd.Flags().IntVar(&horizon, "horizon", 0, "Periods to forecast (default: engine.forecast_horizon)")
	_ = cmd.MarkFlagRequired("value-col")
	return cmd
}

func printForecast(out io.Writer, cmp *stats.ForecastComparison) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "METHOD\tMAE\tRMSE\tMAPE\tNEXT\t")
	for _, res := range cmp.Results {
		marker := ""
		if res.Method == cmp.Best {
			marker = " *"
		}
		next := "-"
		if len(res.Predictions) > 0 {
			next = fmt.Sprintf("%.2f", res.Predictions[0])
		}
		fmt.Fprintf(w, "%s%s\t%.2f\t%.2f\t%.2f%%\t%s\t\n", res.Method, marker, res.MAE, res.RMSE, res.MAPE, next)
	}
	for method, reason := range cmp.Skipped {
		fmt.Fprintf(w, "%s\tskipped: %s\t\t\t\t\n", method, reason)
	}
	return w.Flush()
}

func newDescribeCmd() *cobra.Command {
	var columns []string

	cmd := &cobra.Command{
		Use:   "describe [file]",
		Short: "Print the schema and descriptive statistics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(cmd.Context(), func(c *container.Container) error {
				ds, _, err := loadDataset(c, args[0])
				if err != nil {
					return err
				}
				if len(columns) == 0 {
					return printJSON(cmd.OutOrStdout(), app.Summarize(ds))
				}
				out := make(map[string]stats.DescriptiveStats, len(columns))
				for _, col := range columns {
					if out[col], err = c.Service.Descriptive(ds, col); err != nil {
						return err
					}
				}
				return printJSON(cmd.OutOrStdout(), out)
			})
		},
	}
	cmd.Flags().StringSliceVar(&columns, "columns", nil, "Only these numeric columns")
	return cmd
}

func newReportsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reports",
		Short: "List and show stored reports",
	}

	var limit, offset int
	list := &cobra.Command{
		Use:   "list",
		Short: "List stored reports, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(cmd.Context(), func(c *container.Container) error {
				reports, err := c.Service.Reports(cmd.Context(), limit, offset)
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tNAME\tROWS\tCOLUMNS\tCOMPLETENESS\tCREATED\t")
				for _, r := range reports {
					fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%.1f%%\t%s\t\n", r.ID, r.Name, r.RowCount, r.ColumnCount,
						r.Completeness, r.CreatedAt.Format("2006-01-02 15:04"))
				}
				return w.Flush()
			})
		},
	}
	list.Flags().IntVar(&limit, "limit", 20, "Maximum reports to list")
	list.Flags().IntVar(&offset, "offset", 0, "Reports to skip")

	var htmlOut string
	show := &cobra.Command{
		Use:   "show [id]",
		Short: "Print a stored report as Markdown",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(cmd.Context(), func(c *container.Container) error {
				bundle, narrative, err := c.Service.Report(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if htmlOut != "" {
					return os.WriteFile(htmlOut, report.RenderHTML(bundle, narrative), 0o644)
				}
				fmt.Fprint(cmd.OutOrStdout(), report.Markdown(bundle, narrative))
				return nil
			})
		},
	}
	show.Flags().StringVar(&htmlOut, "html", "", "Write HTML to this path instead")

	cmd.AddCommand(list, show)
	return cmd
}

func newServeCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(cmd.Context(), func(c *container.Container) error {
				if port > 0 {
					c.Config.Server.Port = port
				}
				if _, err := c.Migrate(cmd.Context()); err != nil {
					return err
				}
				return c.Serve(cmd.Context())
			})
		},
	}
	cmd.Flags().IntVar(&port, "port", 0, "Listen port (default: server.port)")
	return cmd
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(cmd.Context(), func(c *container.Container) error {
				if c.DB == nil {
					return fmt.Errorf("database.url is not configured")
				}
				applied, err := c.Migrate(cmd.Context())
				if err != nil {
					return err
				}
				if len(applied) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Schema is up to date")
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Applied: %s\n", strings.Join(applied, ", "))
				return nil
			})
		},
	}
}

func printJSON(out io.Writer, v interface{}) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
