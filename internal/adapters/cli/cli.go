// Package cli implements the trainops command line on top of the service.
package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/okian/trainops/internal/adapters/repository"
	service "github.com/okian/trainops/internal/app"
	"github.com/okian/trainops/internal/config"
	"github.com/okian/trainops/internal/domain/model"
	"github.com/okian/trainops/internal/domain/report"
	"github.com/okian/trainops/internal/domain/risk"
	"github.com/okian/trainops/internal/domain/types"
	"github.com/okian/trainops/pkg/logger"
	"github.com/okian/trainops/pkg/metrics"
)

const defaultTop = 5

// Runtime carries the process wide dependencies commands are built from.
type Runtime struct {
	Config  *config.Config
	Logger  logger.Logger
	Metrics *metrics.Manager
}

type rootOptions struct {
	dataPath    string
	metricsFile string
}

// Execute runs the command line with args. When a metrics file is configured
// the registry is exported after the command, whether it succeeded or not.
func Execute(ctx context.Context, rt Runtime, args []string, stdout, stderr io.Writer) error {
	rt = rt.withDefaults(ctx)
	opts := &rootOptions{dataPath: rt.Config.DataPath, metricsFile: rt.Config.MetricsFile}

	root := newRootCmd(rt, opts)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)

	if opts.metricsFile != "" {
		if werr := rt.Metrics.WriteTextfile(opts.metricsFile); werr != nil {
			rt.Logger.Warn(ctx, "metrics export failed", logger.String("path", opts.metricsFile), logger.Error(werr))
		}
	}
	return err
}

func (rt Runtime) withDefaults(ctx context.Context) Runtime {
	if rt.Config == nil {
		rt.Config = config.New(ctx)
	}
	if rt.Logger == nil {
		rt.Logger = logger.Nop()
	}
	if rt.Metrics == nil {
		rt.Metrics = metrics.Default()
	}
	return rt
}

func newRootCmd(rt Runtime, opts *rootOptions) *cobra.Command {
	root := &cobra.Command{
		Use:           "trainops",
		Short:         "Training cohort analytics: KPIs, risk, recommendations and reports",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.dataPath, "data", opts.dataPath, "dataset path (.json, .yaml); empty uses the bundled seed")
	root.PersistentFlags().StringVar(&opts.metricsFile, "metrics-file", opts.metricsFile, "write Prometheus metrics to this textfile after the run")

	load := func(cmd *cobra.Command) (*service.Service, error) {
		return startService(cmd.Context(), rt, opts.dataPath)
	}

	root.AddCommand(newKPICmd(load))
	root.AddCommand(newWeeklyCmd(load))
	root.AddCommand(newRiskCmd(load))
	root.AddCommand(newRecommendCmd(load))
	root.AddCommand(newAARCmd(load))
	root.AddCommand(newBatchCmd(load))
	return root
}

type loader func(cmd *cobra.Command) (*service.Service, error)

func startService(ctx context.Context, rt Runtime, dataPath string) (*service.Service, error) {
	store := repository.NewFileStore(
		repository.WithPath(dataPath),
		repository.WithLogger(rt.Logger.Named("repository")),
		repository.WithMetrics(rt.Metrics),
	)
	svc := service.New(
		service.WithStore(store),
		service.WithWorkerCount(rt.Config.WorkerCount),
		service.WithRiskWeights(rt.Config.RiskWeights()),
		service.WithPMRoleSynonyms(rt.Config.PMRoleSynonyms),
		service.WithLogger(rt.Logger.Named("service")),
		service.WithMetrics(rt.Metrics),
	)
	if err := svc.Start(ctx); err != nil {
		return nil, err
	}
	return svc, nil
}

func newKPICmd(load loader) *cobra.Command {
	var req types.KPIRequest
	cmd := &cobra.Command{
		Use:   "kpi",
		Short: "Compute KPIs for a company, a cohort, or everything",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := load(cmd)
			if err != nil {
				return err
			}
			res, err := svc.KPIs(cmd.Context(), req)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), res)
		},
	}
	cmd.Flags().StringVar(&req.CompanyID, "company", "", "company id")
	cmd.Flags().StringVar(&req.CohortID, "cohort", "", "cohort id")
	return cmd
}

func newWeeklyCmd(load loader) *cobra.Command {
	var req types.WeeklyRequest
	cmd := &cobra.Command{
		Use:   "weekly --company <id> --cohort <id>",
		Short: "Write the weekly status report of a cohort",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := load(cmd)
			if err != nil {
				return err
			}
			out, err := svc.WeeklyReport(cmd.Context(), req)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().StringVar(&req.CompanyID, "company", "", "company id")
	cmd.Flags().StringVar(&req.CohortID, "cohort", "", "cohort id")
	_ = cmd.MarkFlagRequired("company")
	_ = cmd.MarkFlagRequired("cohort")
	return cmd
}

func newRiskCmd(load loader) *cobra.Command {
	var req types.RiskRequest
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "risk --cohort <id>",
		Short: "Rank the learners of a cohort by disengagement risk",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := load(cmd)
			if err != nil {
				return err
			}
			entries, err := svc.Risk(cmd.Context(), req)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), entries)
			}
			for _, e := range entries {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), riskLine(e))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&req.CohortID, "cohort", "", "cohort id")
	cmd.Flags().IntVar(&req.Top, "top", defaultTop, "number of learners to show; 0 shows all")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	_ = cmd.MarkFlagRequired("cohort")
	return cmd
}

func newRecommendCmd(load loader) *cobra.Command {
	var req types.RecommendRequest
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "recommend --role <role> --level <level> --weeks <n>",
		Short: "Recommend curriculum modules for a learner profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := load(cmd)
			if err != nil {
				return err
			}
			res, err := svc.Recommend(cmd.Context(), req)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), res)
			}
			w := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(w, "추천 요약: role=%s level=%s weeks=%d total_hours=%s\n",
				res.Role, res.Level, res.Weeks, hours(res.TotalHours))
			for _, m := range res.Modules {
				_, _ = fmt.Fprintln(w, moduleLine(m))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&req.Role, "role", "", "learner role, e.g. pm or engineer")
	cmd.Flags().StringVar(&req.Level, "level", "", "module level, e.g. 입문")
	cmd.Flags().IntVar(&req.Weeks, "weeks", 0, "program length in weeks (>= 0)")
	cmd.Flags().StringSliceVar(&req.Tags, "tags", nil, "interest tags")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	_ = cmd.MarkFlagRequired("role")
	_ = cmd.MarkFlagRequired("level")
	_ = cmd.MarkFlagRequired("weeks")
	return cmd
}

func newAARCmd(load loader) *cobra.Command {
	var req types.AARRequest
	cmd := &cobra.Command{
		Use:   "aar --cohort <id>",
		Short: "Write the after-action report of a cohort",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := load(cmd)
			if err != nil {
				return err
			}
			out, err := svc.AAR(cmd.Context(), req)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().StringVar(&req.CohortID, "cohort", "", "cohort id")
	_ = cmd.MarkFlagRequired("cohort")
	return cmd
}

func newBatchCmd(load loader) *cobra.Command {
	var req types.BatchRequest
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Summarize every cohort concurrently",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := load(cmd)
			if err != nil {
				return err
			}
			res, err := svc.Batch(cmd.Context(), req)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), res)
		},
	}
	cmd.Flags().StringVar(&req.CompanyID, "company", "", "only cohorts of this company")
	return cmd
}

func writeJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

func riskLine(e risk.Entry) string {
	return fmt.Sprintf("%s %s attendance=%s avg_score=%s avg_satisfaction=%s",
		e.LearnerID, report.Decimal(e.Risk),
		report.Decimal(e.Detail.Attendance), report.Decimal(e.Detail.Score), report.Decimal(e.Detail.Satisfaction))
}

func moduleLine(m model.Module) string {
	return fmt.Sprintf("- %s | %s (%sh) | tags=%s", m.ID, m.Topic, hours(m.Hours()), strings.Join(m.Tags, ","))
}

func hours(h float64) string {
	return strconv.FormatFloat(h, 'f', -1, 64)
}
