package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"

	"geoprospect/adapters/db"
	"geoprospect/adapters/report"
	"geoprospect/domain/geochem"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

func newColumnsCmd() *cobra.Command {
	var sheet string
	var all bool

	cmd := &cobra.Command{
		Use:   "columns FILE",
		Short: "List the columns of a table and whether they can be analysed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig(cmd)
			s, err := openSession(cmd.Context(), cfg, args[0], sheet, false)
			if err != nil {
				return err
			}
			defer s.close()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: %d rows\n", s.dataset.OriginalFilename, s.dataset.RecordCount)

			table := tablewriter.NewWriter(out)
			table.Header("Column", "Numeric", "Parsed (%)", "Missing", "Sample")
			for _, c := range s.dataset.Columns {
				if !all && !c.Numeric {
					continue
				}
				sample := ""
				if len(c.SampleValues) > 0 {
					sample = c.SampleValues[0]
				}
				if err := table.Append([]string{
					c.Name,
					strconv.FormatBool(c.Numeric),
					strconv.FormatFloat(100*c.NumericRatio, 'f', 1, 64),
					strconv.Itoa(c.MissingCount),
					sample,
				}); err != nil {
					return err
				}
			}
			return table.Render()
		},
	}

	cmd.Flags().StringVar(&sheet, "sheet", "", "XLSX: sheet name (default first sheet)")
	cmd.Flags().BoolVar(&all, "all", false, "include non-numeric columns")
	return cmd
}

func newAnalyzeCmd() *cobra.Command {
	var column, sheet, format, output string
	var kMin, kMax int
	var seed int64
	var save bool

	cmd := &cobra.Command{
		Use:   "analyze FILE",
		Short: "Cluster the log-probability curve of one element",
		Long: `Analyze ranks the values of one column, clusters the cumulative
log-probability curve with K-means (K chosen by the elbow method) and prints
the report.

Example: geoprospect-cli analyze soil.csv --column Cu_ppm --k-max 6 --format yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig(cmd)
			flags := cmd.Flags()
			if flags.Changed("k-min") {
				cfg.Analysis.KMin = kMin
			}
			if flags.Changed("k-max") {
				cfg.Analysis.KMax = kMax
			}
			if flags.Changed("seed") {
				cfg.Analysis.Seed = seed
			}
			if cfg.Analysis.KMin > 0 && cfg.Analysis.KMax > 0 && cfg.Analysis.KMax < cfg.Analysis.KMin {
				return fmt.Errorf("--k-max (%d) must not be lower than --k-min (%d)", cfg.Analysis.KMax, cfg.Analysis.KMin)
			}

			s, err := openSession(cmd.Context(), cfg, args[0], sheet, save)
			if err != nil {
				return err
			}
			defer s.close()

			a, err := s.service.Analyze(cmd.Context(), s.dataset.ID, column)
			if err != nil {
				return err
			}

			if output != "" {
				return writeWorkbook(cmd, output, a)
			}

			w, err := report.NewWriter(format, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			_, err = w.Write(report.NewDocument(a, s.dataset.OriginalFilename))
			return err
		},
	}

	cmd.Flags().StringVarP(&column, "column", "c", "", "element column to analyse")
	cmd.Flags().StringVar(&sheet, "sheet", "", "XLSX: sheet name (default first sheet)")
	cmd.Flags().StringVarP(&format, "format", "f", report.FormatMarkdown, "output format: markdown|json|yaml")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write an .xlsx workbook instead of printing the report")
	cmd.Flags().IntVar(&kMin, "k-min", 1, "smallest K tried by the elbow method")
	cmd.Flags().IntVar(&kMax, "k-max", 8, "largest K tried by the elbow method")
	cmd.Flags().Int64Var(&seed, "seed", 42, "K-means random seed")
	cmd.Flags().BoolVar(&save, "save", false, "record the run in the history database")
	_ = cmd.MarkFlagRequired("column")
	return cmd
}

func newFreqCmd() *cobra.Command {
	var column, sheet string

	cmd := &cobra.Command{
		Use:   "freq FILE",
		Short: "Print the Sturges frequency table of one element",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig(cmd)
			s, err := openSession(cmd.Context(), cfg, args[0], sheet, false)
			if err != nil {
				return err
			}
			defer s.close()

			classes, err := s.service.Frequency(cmd.Context(), s.dataset.ID, column)
			if err != nil {
				return err
			}
			return renderFrequency(cmd.OutOrStdout(), classes)
		},
	}

	cmd.Flags().StringVarP(&column, "column", "c", "", "element column")
	cmd.Flags().StringVar(&sheet, "sheet", "", "XLSX: sheet name (default first sheet)")
	_ = cmd.MarkFlagRequired("column")
	return cmd
}

func newHistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent analyses recorded in the history database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig(cmd)
			repo, closeDB, err := openRepository(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer closeDB()

			records, err := repo.ListRecent(cmd.Context(), limit)
			if err != nil {
				return err
			}

			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.Header("ID", "When", "File", "Column", "Samples", "Clusters", "Thresholds")
			for _, r := range records {
				thresholds, err := r.ThresholdValues()
				if err != nil {
					return err
				}
				if err := table.Append([]string{
					r.ID.String(),
					r.CreatedAt.Local().Format("2006-01-02 15:04"),
					r.Filename,
					r.Column,
					strconv.Itoa(r.SampleCount),
					strconv.Itoa(r.Clusters),
					fmt.Sprint(thresholds),
				}); err != nil {
					return err
				}
			}
			return table.Render()
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of analyses to list")
	return cmd
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending history database migrations and show their status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig(cmd)
			if cfg.Database.URL == "" && cfg.Database.SQLitePath == "" {
				return fmt.Errorf("no history database configured")
			}
			historyDB, err := db.Open(cmd.Context(), cfg.Database)
			if err != nil {
				return err
			}
			defer historyDB.Close()

			migrator := db.NewMigrator(historyDB)
			status, err := migrator.Status(cmd.Context())
			if err != nil {
				return err
			}
			files, err := migrator.Files()
			if err != nil {
				return err
			}
			sort.Slice(files, func(i, j int) bool { return files[i].Version < files[j].Version })

			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.Header("Version", "Name", "Applied")
			for _, f := range files {
				if err := table.Append([]string{f.Version, f.Name, strconv.FormatBool(status[f.Version])}); err != nil {
					return err
				}
			}
			return table.Render()
		},
	}
}

func renderFrequency(out io.Writer, classes []geochem.FrequencyClass) error {
	table := tablewriter.NewWriter(out)
	header := make([]any, len(geochem.FrequencyColumns))
	for i, h := range geochem.FrequencyColumns {
		header[i] = h
	}
	table.Header(header...)
	for _, f := range classes {
		if err := table.Append(report.FrequencyRow(f)); err != nil {
			return err
		}
	}
	return table.Render()
}

func writeWorkbook(cmd *cobra.Command, path string, a *geochem.Analysis) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := report.WriteWorkbook(a, f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (K = %d)\n", path, a.Clusters())
	return nil
}
