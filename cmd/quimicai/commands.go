package main

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/quimicai/surfacelab/internal/automation"
	"github.com/quimicai/surfacelab/internal/config"
	"github.com/quimicai/surfacelab/internal/domain"
	"github.com/quimicai/surfacelab/internal/empirical"
	"github.com/quimicai/surfacelab/internal/export"
	"github.com/quimicai/surfacelab/internal/inbox"
	"github.com/quimicai/surfacelab/internal/optim"
	"github.com/quimicai/surfacelab/internal/render"
	"github.com/quimicai/surfacelab/internal/savings"
	"github.com/quimicai/surfacelab/internal/server"
	"github.com/quimicai/surfacelab/internal/storage"
	"github.com/quimicai/surfacelab/internal/surface"
)

func listDomains(cmd *cobra.Command, args []string) error {
	s, err := setup(cmd, args)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(args) == 1 {
		return describeDomain(out, s.domain)
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TAG\tTITLE\tPARAMETERS\tMETRICS\tTIME SAVED")
	for _, d := range s.registry.List() {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\n",
			d.Tag, d.Title, len(d.Parameters), len(d.Metrics), savings.TimeSaved(d.Tag))
	}
	return w.Flush()
}

func describeDomain(out io.Writer, d *domain.Domain) error {
	fmt.Fprintln(out, render.Title.Render(d.Title))
	if d.Description != "" {
		fmt.Fprintln(out, d.Description)
	}
	fmt.Fprintln(out)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PARAMETER\tLABEL\tLOW\tHIGH")
	for _, p := range d.Parameters {
		fmt.Fprintf(w, "%s\t%s\t%g\t%g\n", p.Name, d.DisplayName(p.Name), p.Low, p.High)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "METRIC\tGOAL")
	for _, m := range d.Metrics {
		goal := "maximize"
		if m.Cost {
			goal = "minimize"
		}
		fmt.Fprintf(w, "%s\t%s\n", m.Name, goal)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	rows := 0
	for _, col := range d.Samples.Metrics {
		rows = max(rows, len(col))
	}
	fmt.Fprintf(out, "\nhistorical samples: %d rows\n", rows)
	if rows > 0 {
		fmt.Fprintf(out, "  variables: %s\n", strings.Join(d.Samples.VariableNames(), ", "))
		fmt.Fprintf(out, "  metrics: %s\n", strings.Join(d.Samples.MetricNames(), ", "))
	}
	if names := config.ListPresets(d.Tag); len(names) > 0 {
		fmt.Fprintf(out, "presets: %s\n", strings.Join(names, ", "))
	}
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	tags := make([]string, 0, len(config.Presets))
	if len(args) == 1 {
		d, err := domain.NewRegistry().Get(args[0])
		if err != nil {
			return err
		}
		tags = append(tags, d.Tag)
	} else {
		for tag := range config.Presets {
			tags = append(tags, tag)
		}
		sort.Strings(tags)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DOMAIN\tPRESET\tMETRIC\tVARIABLES")
	for _, tag := range tags {
		for _, name := range config.ListPresets(tag) {
			p := config.GetPreset(tag, name)
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", tag, name, p.Metric, strings.Join(p.Variables, ", "))
		}
	}
	return w.Flush()
}

func plotDomain(cmd *cobra.Command, args []string) error {
	if empiricalMode {
		return smoothDomain(cmd, args)
	}
	s, err := setup(cmd, args)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	res, err := evaluate(s)
	if err != nil {
		if surface.IsGuidance(err) {
			fmt.Fprintln(out, render.Warning.Render(surface.Guidance(err)))
			return nil
		}
		return err
	}

	fmt.Fprintln(out, render.Title.Render(fmt.Sprintf("%s · %s", s.domain.Title, s.cfg.Metric)))
	switch res.Dims() {
	case 1:
		caption := s.domain.DisplayName(res.Selection[0])
		fmt.Fprintln(out, render.CurvePlot(res.Curve.X, res.Curve.Y, caption, width, height))
	case 2:
		fmt.Fprintf(out, "%s (x) vs %s (y)\n",
			s.domain.DisplayName(res.Selection[0]), s.domain.DisplayName(res.Selection[1]))
		fmt.Fprintln(out, render.SurfaceHeatmap(res.Surface.Z, width, height))
		lo, hi := res.Bounds()
		fmt.Fprintln(out, render.HeatLegend(lo, hi, width))
	}
	return nil
}

func smoothDomain(cmd *cobra.Command, args []string) error {
	s, err := setup(cmd, args)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	sm, guidance, err := smooth(s)
	if err != nil {
		return err
	}
	if guidance != "" {
		fmt.Fprintln(out, render.Warning.Render(guidance))
		return nil
	}

	fmt.Fprintln(out, render.Title.Render(fmt.Sprintf("%s · %s (histórico)", s.domain.Title, s.cfg.Metric)))
	switch {
	case sm.Curve != nil:
		if sm.Curve.Empty() {
			fmt.Fprintln(out, render.Subtle.Render("sin datos históricos"))
			return nil
		}
		caption := fmt.Sprintf("%s · grado %d · %d muestras",
			s.domain.DisplayName(sm.Curve.Variable), sm.Curve.Poly.Degree(), len(sm.Curve.Points))
		fmt.Fprintln(out, render.CurvePlot(sm.Curve.X, sm.Curve.Y, caption, width, height))
	case sm.Surface != nil:
		if sm.Surface.NoData {
			fmt.Fprintln(out, render.Subtle.Render(sm.Surface.Reason))
			return nil
		}
		fmt.Fprintf(out, "%s (x) vs %s (y) · %d/%d celdas\n",
			s.domain.DisplayName(sm.Surface.VarX), s.domain.DisplayName(sm.Surface.VarY),
			sm.Surface.DefinedCount(), len(sm.Surface.X)*len(sm.Surface.Y))
		fmt.Fprintln(out, render.SurfaceHeatmap(sm.Surface.Z, width, height))
	}
	printHistoricalSavings(out, s.domain)
	return nil
}

// printHistoricalSavings shows the spread of the domain's recorded costs.
func printHistoricalSavings(out io.Writer, d *domain.Domain) {
	est := savings.FromSamples(d)
	fmt.Fprintf(out, "%s %s\n", render.MetricLabel.Render("Ahorro histórico"), render.MetricValue.Render(est.Money()))
	fmt.Fprintf(out, "%s %s\n", render.MetricLabel.Render("Tiempo ahorrado"), render.MetricValue.Render(est.TimeSaved))
}

func optimizeDomain(cmd *cobra.Command, args []string) error {
	s, err := setup(cmd, args)
	if err != nil {
		return err
	}
	opt, err := newOptimizer(s.cfg)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Fprintln(cmd.ErrOrStderr(), render.Subtle.Render("Optimizando..."))
	rep, err := opt.Optimize(ctx, jobFor(s))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		return export.WriteJSON(out, rep)
	}
	if rep.Guidance != "" {
		fmt.Fprintln(out, render.Warning.Render(rep.Guidance))
		return nil
	}
	fmt.Fprintln(out, render.Success.Render(rep.Message))
	fmt.Fprintf(out, "%s %s\n", render.MetricLabel.Render("Dinero ahorrado"), render.MetricValue.Render(rep.Savings.Money()))
	fmt.Fprintf(out, "%s %s\n", render.MetricLabel.Render(""), render.Subtle.Render(rep.Savings.Delta()))
	fmt.Fprintf(out, "%s %s\n", render.MetricLabel.Render("Tiempo ahorrado"), render.MetricValue.Render(rep.Savings.TimeSaved))
	if rep.Best != nil {
		names := make([]string, 0, len(rep.Best.Params))
		for name := range rep.Best.Params {
			names = append(names, name)
		}
		sort.Strings(names)
		parts := make([]string, len(names))
		for i, name := range names {
			parts[i] = fmt.Sprintf("%s=%.3g", s.domain.DisplayName(name), rep.Best.Params[name])
		}
		fmt.Fprintf(out, "%s %s → %.4g\n", render.MetricLabel.Render("Mejor punto"), strings.Join(parts, ", "), rep.Best.Value)
	}
	return nil
}

func exportDomain(cmd *cobra.Command, args []string) error {
	s, err := setup(cmd, args)
	if err != nil {
		return err
	}

	doc := export.Document{
		Domain:    s.domain.Tag,
		Metric:    s.cfg.Metric,
		Variables: s.cfg.Variables,
		Ranges:    s.cfg.SurfaceRanges(),
	}
	if empiricalMode {
		sm, guidance, err := smooth(s)
		if err != nil {
			return err
		}
		if guidance != "" {
			return errors.New(guidance)
		}
		doc.Smoothed = sm
	} else {
		res, err := evaluate(s)
		if err != nil {
			if surface.IsGuidance(err) {
				return errors.New(surface.Guidance(err))
			}
			return err
		}
		doc.Result = res
	}

	write, err := exporter(s, doc)
	if err != nil {
		return err
	}
	if err := export.ToFile(outPath, write); err != nil {
		return err
	}
	if outPath != "" && outPath != "-" {
		fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", outPath)
	}
	return nil
}

// exporter picks the writer for the requested format.
func exporter(s *session, doc export.Document) (func(io.Writer) error, error) {
	header := make([]string, 0, 3)
	for _, v := range doc.Variables {
		header = append(header, s.domain.DisplayName(v))
	}
	header = append(header, doc.Metric)

	switch format {
	case "csv":
		if doc.Smoothed != nil {
			return func(w io.Writer) error { return export.WriteSmoothedCSV(w, doc.Smoothed) }, nil
		}
		return func(w io.Writer) error { return export.WriteCSV(w, doc.Result, header) }, nil
	case "json":
		return func(w io.Writer) error { return export.WriteJSON(w, doc) }, nil
	case "svg":
		svg, err := svgFor(s, doc)
		if err != nil {
			return nil, err
		}
		return func(w io.Writer) error {
			_, err := io.WriteString(w, svg)
			return err
		}, nil
	case "png":
		spec, err := chartFor(s, doc)
		if err != nil {
			return nil, err
		}
		return func(w io.Writer) error { return render.CurvePNG(w, spec) }, nil
	}
	return nil, fmt.Errorf("unknown format %q (csv, json, svg, png)", format)
}

func svgFor(s *session, doc export.Document) (string, error) {
	const stroke = "#4ECDC4"
	switch {
	case doc.Result != nil && doc.Result.Dims() == 1:
		return render.CurveSVG(doc.Result.Curve.X, doc.Result.Curve.Y, nil, imageWidth, imageHeight, stroke), nil
	case doc.Result != nil && doc.Result.Dims() == 2:
		return render.SurfaceSVG(doc.Result.Surface.Z, cellSize(len(doc.Result.Surface.Z))), nil
	case doc.Smoothed != nil && doc.Smoothed.Curve != nil:
		c := doc.Smoothed.Curve
		if c.Empty() {
			return "", render.ErrNothingToPlot
		}
		return render.CurveSVG(c.X, c.Y, c.Points, imageWidth, imageHeight, stroke), nil
	case doc.Smoothed != nil && doc.Smoothed.Surface != nil:
		sf := doc.Smoothed.Surface
		if sf.NoData {
			return "", fmt.Errorf("%w: %s", render.ErrNothingToPlot, sf.Reason)
		}
		return render.SurfaceSVG(sf.Z, cellSize(len(sf.Z))), nil
	}
	return "", render.ErrNothingToPlot
}

// cellSize fits an n×n grid into the requested image width.
func cellSize(n int) int {
	if n == 0 {
		return 1
	}
	return max(1, imageWidth/n)
}

func chartFor(s *session, doc export.Document) (render.ChartSpec, error) {
	spec := render.ChartSpec{
		Title:  fmt.Sprintf("%s · %s", s.domain.Title, doc.Metric),
		YLabel: doc.Metric,
		Width:  imageWidth,
		Height: imageHeight,
	}
	switch {
	case doc.Result != nil && doc.Result.Dims() == 1:
		spec.XLabel = s.domain.DisplayName(doc.Result.Selection[0])
		spec.X, spec.Y = doc.Result.Curve.X, doc.Result.Curve.Y
	case doc.Smoothed != nil && doc.Smoothed.Curve != nil:
		c := doc.Smoothed.Curve
		spec.XLabel = s.domain.DisplayName(c.Variable)
		spec.X, spec.Y, spec.Samples = c.X, c.Y, c.Points
	default:
		return spec, errors.New("png export supports single-variable plots; use svg for surfaces")
	}
	return spec, nil
}

func serve(cmd *cobra.Command, args []string) error {
	s, err := setup(cmd, nil)
	if err != nil {
		return err
	}
	opt, err := newOptimizer(s.cfg)
	if err != nil {
		return err
	}

	store, err := inbox.NewStore(s.cfg.Server.InboxPath)
	if err != nil {
		return fmt.Errorf("open inbox: %w", err)
	}
	defer store.Close()

	ctx, cancel := signalContext()
	defer cancel()

	srv := server.New(s.registry, server.Options{
		Optimizer:    opt,
		Inbox:        store,
		ContactRate:  s.cfg.Server.ContactRate,
		ContactBurst: s.cfg.Server.ContactBurst,
	})
	fmt.Fprintf(cmd.ErrOrStderr(), "listening on %s\n", s.cfg.Server.Addr)
	return srv.ListenAndServe(ctx, s.cfg.Server.Addr)
}

func listInbox(cmd *cobra.Command, args []string) error {
	s, err := setup(cmd, nil)
	if err != nil {
		return err
	}
	store, err := inbox.NewStore(s.cfg.Server.InboxPath)
	if err != nil {
		return fmt.Errorf("open inbox: %w", err)
	}
	defer store.Close()

	ctx, cancel := signalContext()
	defer cancel()

	msgs, err := store.List(ctx, limit)
	if err != nil {
		return err
	}
	total, err := store.Count(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RECEIVED\tNAME\tEMAIL\tMESSAGE")
	for _, m := range msgs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			m.CreatedAt.Local().Format("2006-01-02 15:04"), m.Name, m.Email, truncate(m.Message, 48))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d of %d messages\n", len(msgs), total)
	return nil
}

func writeConfig(cmd *cobra.Command, args []string) error {
	path := "quimicai.yaml"
	if len(args) == 1 {
		path = args[0]
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}

	cfg := config.DefaultConfig()
	if preset != "" {
		tag, name, ok := strings.Cut(preset, "/")
		if !ok {
			return fmt.Errorf("preset must be tag/name, got %q", preset)
		}
		d, err := domain.NewRegistry().Get(tag)
		if err != nil {
			return err
		}
		p := config.GetPreset(d.Tag, name)
		if p == nil {
			return fmt.Errorf("unknown preset %q for %s", name, d.Tag)
		}
		cfg.Domain, cfg.Metric, cfg.Variables, cfg.Ranges = p.Domain, p.Metric, p.Variables, p.Ranges
	}
	if err := config.Save(path, cfg); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
	return nil
}

func evaluate(s *session) (*surface.Result, error) {
	m, err := s.domain.Metric(s.cfg.Metric)
	if err != nil {
		return nil, err
	}
	return surface.Evaluate(m.Fn, s.domain.Parameters, s.cfg.Variables, s.cfg.SurfaceRanges(), s.cfg.Points)
}

// smooth fits the historical samples. An invalid selection comes back as
// guidance rather than an error.
func smooth(s *session) (*empirical.Smoothed, string, error) {
	switch n := len(s.cfg.Variables); {
	case n == 0:
		return nil, surface.EmptySelectionGuidance, nil
	case n > 2:
		return nil, surface.SelectionGuidance, nil
	}
	sm, err := empirical.Smooth(s.domain.Samples, s.cfg.Variables, s.cfg.Metric)
	return sm, "", err
}

func jobFor(s *session) optim.Job {
	return optim.Job{
		Domain:    s.domain,
		Metric:    s.cfg.Metric,
		Selection: surface.Selection(s.cfg.Variables),
		Ranges:    s.cfg.SurfaceRanges(),
		Points:    s.cfg.Points,
		Weight:    s.cfg.Weight,
	}
}

func truncate(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len([]rune(s)) <= n {
		return s
	}
	return string([]rune(s)[:n-1]) + "…"
}

func runScenario(cmd *cobra.Command, args []string) error {
	s, err := setup(cmd, nil)
	if err != nil {
		return err
	}
	scenario, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	opt, err := newOptimizer(s.cfg)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	runner := &automation.Runner{
		Registry:  s.registry,
		Optimizer: opt,
		Archive:   storage.New(s.cfg.RunsDir),
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "running %s (%d steps)\n", scenario.Name, len(scenario.Steps))
	results, err := runner.Run(ctx, scenario)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tDOMAIN\tMETRIC\tMIN\tMAX\tSAVED\tRUN")
	for _, r := range results {
		if r.Guidance != "" {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.Step, r.Domain, r.Metric, r.Guidance)
			continue
		}
		lo, hi := r.Result.Bounds()
		saved := "-"
		if r.Report != nil {
			saved = r.Report.Savings.Money()
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%.4g\t%.4g\t%s\t%s\n", r.Step, r.Domain, r.Metric, lo, hi, saved, orDash(r.RunID))
	}
	return w.Flush()
}

func listRuns(cmd *cobra.Command, args []string) error {
	s, err := setup(cmd, nil)
	if err != nil {
		return err
	}
	archive := storage.New(s.cfg.RunsDir)
	out := cmd.OutOrStdout()

	if len(args) == 1 {
		meta, err := archive.Load(args[0])
		if err != nil {
			return err
		}
		header, rows, err := archive.LoadData(meta.ID)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, render.Title.Render(fmt.Sprintf("%s · %s", meta.Domain, meta.Metric)))
		fmt.Fprintf(out, "%s %s\n", render.MetricLabel.Render("Variables"), strings.Join(meta.Variables, ", "))
		fmt.Fprintf(out, "%s %.4g … %.4g\n", render.MetricLabel.Render("Rango de la métrica"), meta.Min, meta.Max)
		fmt.Fprintf(out, "%s %d (%s)\n", render.MetricLabel.Render("Filas"), len(rows), strings.Join(header, ", "))
		if len(meta.Variables) == 1 && len(rows) > 0 {
			xs := make([]float64, len(rows))
			ys := make([]float64, len(rows))
			for i, row := range rows {
				xs[i], ys[i] = row[0], row[len(row)-1]
			}
			fmt.Fprintln(out, render.CurvePlot(xs, ys, meta.Variables[0], width, height))
		}
		return nil
	}

	runs, err := archive.List()
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSCENARIO\tDOMAIN\tMETRIC\tVARIABLES\tSAVED AT\tPREVIEW")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n", r.ID, orDash(r.Scenario), r.Domain, r.Metric,
			strings.Join(r.Variables, ","), r.Timestamp.Local().Format("2006-01-02 15:04"), runPreview(archive, r.ID))
	}
	return w.Flush()
}

// runPreview draws the saved metric column as a sparkline. Undefined cells
// are skipped.
func runPreview(archive *storage.Store, id string) string {
	_, rows, err := archive.LoadData(id)
	if err != nil || len(rows) == 0 {
		return "-"
	}
	values := make([]float64, 0, len(rows))
	for _, row := range rows {
		if v := row[len(row)-1]; !math.IsNaN(v) {
			values = append(values, v)
		}
	}
	if len(values) == 0 {
		return "-"
	}
	return render.Sparkline(values, previewWidth)
}

const previewWidth = 16

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
