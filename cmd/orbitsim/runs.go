package main

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/orbitsim/internal/analysis"
	"github.com/san-kum/orbitsim/internal/config"
	"github.com/san-kum/orbitsim/internal/export"
	"github.com/san-kum/orbitsim/internal/physics"
	"github.com/san-kum/orbitsim/internal/storage"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/spatial/r2"
)

func listRuns(cmd *cobra.Command, args []string) error {
	runs, err := storage.New(dataDir).List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSYSTEM\tSTEPS\tINTEGRATOR\tORDERING\tENERGY DRIFT\tSTATUS")
	for _, r := range runs {
		status := "ok"
		if r.Error != "" {
			status = "failed"
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\t%.3e\t%s\n",
			r.ID, r.System, r.Steps, r.Integrator, r.Ordering, r.Metrics["energy_drift"], status)
	}
	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	meta, err := storage.New(dataDir).Load(args[0])
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

// loadRun reads both halves of a saved run.
func loadRun(runID string) (*storage.RunMetadata, []storage.Sample, error) {
	store := storage.New(dataDir)
	meta, err := store.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	samples, err := store.LoadSamples(runID)
	if err != nil {
		return nil, nil, err
	}
	return meta, samples, nil
}

func anchorOf(meta *storage.RunMetadata) string {
	for _, b := range meta.Bodies {
		if b.Anchor {
			return b.Name
		}
	}
	return ""
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, samples, err := loadRun(args[0])
	if err != nil {
		return err
	}
	if len(samples) == 0 {
		return fmt.Errorf("run %s has no samples", args[0])
	}

	anchor := anchorOf(meta)
	byBody, names := storage.ByBody(samples)
	fmt.Printf("run: %s  system: %s  steps: %d\n", meta.ID, meta.System, meta.Steps)
	for _, name := range names {
		if name == anchor {
			continue
		}
		series := make([]float64, len(byBody[name]))
		for i, s := range byBody[name] {
			series[i] = s.DistanceToAnchor / physics.AU
		}
		if len(series) < 2 {
			continue
		}
		fmt.Println()
		fmt.Println(asciigraph.Plot(series,
			asciigraph.Height(8),
			asciigraph.Width(60),
			asciigraph.Caption(name+": distance to "+anchor+" (AU)"),
		))
	}
	return nil
}

func orbitsRun(cmd *cobra.Command, args []string) error {
	meta, samples, err := loadRun(args[0])
	if err != nil {
		return err
	}
	anchor := anchorOf(meta)
	if anchor == "" {
		return fmt.Errorf("run %s has no anchor body", args[0])
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "BODY\tPERI (AU)\tAPH (AU)\tECC\tCLOSURE\tPERIOD (d)\tSPECTRAL (d)")
	for _, s := range analysis.Summarize(samples, anchor) {
		period := fmt.Sprintf("%.1f", s.Period/physics.Day)
		if !s.Complete {
			period = "~" + period
		}
		spectral := "-"
		if s.SpectralPeriod > 0 && !math.IsInf(s.SpectralPeriod, 0) {
			spectral = fmt.Sprintf("%.1f", s.SpectralPeriod/physics.Day)
		}
		fmt.Fprintf(w, "%s\t%.4f\t%.4f\t%.4f\t%.2e\t%s\t%s\n",
			s.Body, s.Perihelion/physics.AU, s.Aphelion/physics.AU, s.Eccentricity,
			s.ClosureError, period, spectral)
	}
	return w.Flush()
}

func exportJSON(cmd *cobra.Command, args []string) error {
	meta, samples, err := loadRun(args[0])
	if err != nil {
		return err
	}
	if err := storage.ExportJSONFile(outPath, *meta, samples); err != nil {
		return err
	}
	if outPath != "" {
		fmt.Fprintf(os.Stderr, "exported %s to %s\n", args[0], outPath)
	}
	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	_, samples, err := loadRun(args[0])
	if err != nil {
		return err
	}
	if err := storage.ExportCSVFile(outPath, samples); err != nil {
		return err
	}
	if outPath != "" {
		fmt.Fprintf(os.Stderr, "exported %s to %s\n", args[0], outPath)
	}
	return nil
}

func exportSVG(cmd *cobra.Command, args []string) error {
	meta, samples, err := loadRun(args[0])
	if err != nil {
		return err
	}

	byBody, names := storage.ByBody(samples)
	colors := make(map[string]string, len(meta.Bodies))
	for _, b := range meta.Bodies {
		colors[b.Name] = b.Color
	}
	tracks := make([]export.Track, 0, len(names))
	for i, name := range names {
		col, err := config.ParseColor(colors[name])
		if err != nil {
			col = config.AutoColor(i, len(names))
		}
		points := make([]r2.Vec, len(byBody[name]))
		for j, s := range byBody[name] {
			points[j] = r2.Vec{X: s.X, Y: s.Y}
		}
		tracks = append(tracks, export.Track{Name: name, Color: col, Points: points})
	}

	svg := export.TracksToSVG(tracks, svgWidth, svgHeight)
	if outPath == "" {
		_, err = fmt.Print(svg)
		return err
	}
	if err := os.WriteFile(outPath, []byte(svg), 0o644); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "exported %s to %s\n", args[0], outPath)
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tBODIES")
	for _, name := range config.ListPresets() {
		cfg := config.GetPreset(name)
		bodies := make([]string, len(cfg.Bodies))
		for i, b := range cfg.Bodies {
			bodies[i] = b.Name
		}
		fmt.Fprintf(w, "%s\t%v\n", name, bodies)
	}
	return w.Flush()
}

func initConfig(cmd *cobra.Command, args []string) error {
	name := "inner"
	if len(args) > 0 {
		name = args[0]
	}
	cfg := config.GetPreset(name)
	if cfg == nil {
		return fmt.Errorf("unknown preset: %s", name)
	}
	if outPath != "" {
		if err := config.Save(outPath, cfg); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "wrote %s\n", outPath)
		return nil
	}
	data, err := config.Marshal(cfg)
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(data)
	return err
}
