package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cognicore/semplan/internal/maintenance"
	"github.com/cognicore/semplan/internal/report"
	"github.com/cognicore/semplan/internal/server"
	"github.com/cognicore/semplan/internal/source"
	"github.com/cognicore/semplan/pkg/semplan"
	"github.com/cognicore/semplan/pkg/semplan/store/sqlite"
)

func runPlan(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if planFormat != "json" && planFormat != "csv" {
		return fmt.Errorf("unknown format %q (want json or csv)", planFormat)
	}

	a, cleanup, err := buildApp(ctx, configPath, dbPath)
	if err != nil {
		return err
	}
	defer cleanup()

	plan, err := a.plan(ctx, planSeeds, planTimeout, !planDryRun)
	if err != nil {
		return err
	}

	if planOut == "" {
		if err := writePlan(cmd.OutOrStdout(), plan, planFormat); err != nil {
			return fmt.Errorf("write plan: %w", err)
		}
	} else {
		if err := writePlanFile(planOut, plan, planFormat); err != nil {
			return err
		}
		logger.Info("plan written", zap.String("path", planOut), zap.String("format", planFormat))
	}
	return report.WriteSummary(cmd.ErrOrStderr(), plan)
}

var createFile = func(name string) (io.WriteCloser, error) {
	return os.Create(name)
}

// writePlanFile writes the plan to path. A failed Close is reported since
// it can hide a short write.
func writePlanFile(path string, plan *semplan.Plan, format string) (err error) {
	f, err := createFile(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()
	if err := writePlan(f, plan, format); err != nil {
		return fmt.Errorf("write plan: %w", err)
	}
	return nil
}

// plan gathers candidates from every configured source and runs the
// planner. The research timeout falls back to the configured one.
func (a *app) plan(ctx context.Context, extraSeeds []string, timeout time.Duration, persist bool) (*semplan.Plan, error) {
	if timeout <= 0 {
		timeout = a.cfg.Research.Timeout
	}
	sources := buildSources(a.cfg, a.comp, a.store, extraSeeds, logger)
	logger.Info("researching keywords", zap.Int("sources", len(sources)), zap.Duration("timeout", timeout))

	candidates, _ := source.NewGatherer(sources, source.GathererConfig{
		Concurrency: a.cfg.Research.Concurrency,
		Timeout:     timeout,
		Observer:    a.metrics,
		Logger:      logger,
	}).Gather(ctx)

	req, err := a.cfg.Request(candidates)
	if err != nil {
		return nil, err
	}
	planner := a.planner
	if !persist {
		planner = semplan.New(a.comp.Options(nil))
	}
	plan, err := planner.Plan(ctx, req)
	a.metrics.ObservePlan(plan, err)
	if err != nil {
		return nil, fmt.Errorf("plan %d candidates: %w", len(candidates), err)
	}
	logger.Info("plan ready",
		zap.String("id", plan.ID),
		zap.Int("keywords", len(plan.Keywords)),
		zap.Int("invalid_bids", plan.Bids.Invalid),
		zap.Bool("stored", persist))
	return plan, nil
}

func writePlan(w io.Writer, plan *semplan.Plan, format string) error {
	if format == "csv" {
		return report.WriteKeywordsCSV(w, plan)
	}
	return report.WriteJSON(w, plan)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, cleanup, err := buildApp(ctx, configPath, dbPath)
	if err != nil {
		return err
	}
	defer cleanup()

	return server.New(a.planner, a.cfg, a.metrics, logger).ListenAndServe(ctx, serveAddr)
}

func runHistory(cmd *cobra.Command, args []string) error {
	planner, cleanup, err := openStore(cmd.Context(), dbPath)
	if err != nil {
		return err
	}
	defer cleanup()

	plans, err := planner.List(cmd.Context(), historyLimit)
	if err != nil {
		return err
	}
	if len(plans) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No plans stored yet.")
		return nil
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCREATED\tNAME\tKEYWORDS\tBUDGET")
	for _, p := range plans {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%.2f\n", p.ID, p.CreatedAt.Local().Format("2006-01-02 15:04"), p.Name, p.Keywords, p.Budget)
	}
	return tw.Flush()
}

func runShow(cmd *cobra.Command, args []string) error {
	planner, cleanup, err := openStore(cmd.Context(), dbPath)
	if err != nil {
		return err
	}
	defer cleanup()

	plan, err := planner.Get(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	return report.WriteSummary(cmd.OutOrStdout(), plan)
}

func runPrune(cmd *cobra.Command, args []string) error {
	st, err := sqlite.OpenSQLite(cmd.Context(), dbPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	p := &maintenance.Pruner{Store: st}
	res, err := p.Prune(cmd.Context(), maintenance.Retention{Plans: prunePlans, Suggestions: pruneSuggestions})
	logger.Info("pruned store",
		zap.Int("plans", res.Plans),
		zap.Int("suggestions", res.Suggestions))
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d plans and %d cached suggestion lists.\n", res.Plans, res.Suggestions)
	return nil
}
