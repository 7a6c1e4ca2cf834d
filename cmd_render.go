// Copyright 2025 Matthew Gall <me@matthewgall.dev>
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"io"
	"time"

	"github.com/spf13/cobra"
)

var (
	renderOutput       string
	renderMarkdown     bool
	renderPNG          bool
	renderSaveSnapshot bool
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Fetch both datasets and write the dashboard",
	Long: `Fetches bills and meter readings once, then writes dashboard.html into the
output directory. Optional Markdown and PNG exports are written alongside it.`,
	RunE: runRender,
}

func init() {
	renderCmd.Flags().StringVar(&renderOutput, "output", "", "Output directory (overrides config)")
	renderCmd.Flags().BoolVar(&renderMarkdown, "markdown", false, "Also write summary.md")
	renderCmd.Flags().BoolVar(&renderPNG, "png", false, "Also write PNG exports and embed them in the dashboard")
	renderCmd.Flags().BoolVar(&renderSaveSnapshot, "save-snapshot", false, "Also write the raw responses to snapshot.json")
	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	go CheckForUpdates(app.logger)

	if renderOutput != "" {
		app.config.OutputDir = renderOutput
	}
	storage, err := NewStorage(app.config.OutputDir, app.logger)
	if err != nil {
		return err
	}

	app.logger.Info("Fetching datasets")
	if err := MountViews(cmd.Context(), app.Views()); err != nil {
		// Failed views render as empty canvases
		app.logger.Warn("Some datasets could not be loaded", "error", err)
	}

	readings, _ := app.readings.Dataset().(*ReadingsDataset)
	billing, _ := app.billing.Dataset().(*BillingDataset)

	dashboard := Dashboard{
		Readings:    app.readings.Dataset(),
		Billing:     app.billing.Dataset(),
		GeneratedAt: time.Now(),
		PlotWidth:   float64(app.config.Chart.Width),
		PlotHeight:  float64(app.config.Chart.Height),
	}

	if renderPNG {
		generator := NewChartGenerator()
		writePNG := func(name string, png []byte, err error) []byte {
			if err != nil {
				app.logger.Warn("Skipping PNG export", "file", name, "error", err)
				return nil
			}
			if _, err := storage.WriteBytes(name, png); err != nil {
				app.logger.Warn("Failed to write PNG export", "file", name, "error", err)
			}
			return png
		}
		profile, err := generator.GenerateHourlyProfileChart(readings)
		dashboard.ProfilePNG = writePNG("hourly_profile.png", profile, err)
		variance, err := generator.GenerateVarianceChart(billing)
		dashboard.VariancePNG = writePNG("variances.png", variance, err)
	}

	var drawn map[string]int
	path, err := storage.WriteArtifact("dashboard.html", func(w io.Writer) error {
		var err error
		drawn, err = NewHTMLReporter(app.logger).GenerateDashboard(w, dashboard)
		return err
	})
	if err != nil {
		return err
	}
	app.logger.Info("Dashboard written", "path", path,
		"heatmap_cells", drawn[DatasetReadings], "variance_segments", drawn[DatasetBilling])

	if renderMarkdown {
		path, err := storage.WriteArtifact("summary.md", func(w io.Writer) error {
			return NewReporter(app.logger).GenerateReport(w, billing, readings, dashboard.GeneratedAt)
		})
		if err != nil {
			return err
		}
		app.logger.Info("Summary written", "path", path)
	}

	if renderSaveSnapshot {
		path, err := storage.SaveSnapshot("snapshot.json", app.collector.Snapshot())
		if err != nil {
			return err
		}
		app.logger.Info("Snapshot written", "path", path)
	}

	files, err := storage.ListArtifacts()
	if err == nil {
		app.logger.UserMessage("Wrote %d files to %s", len(files), app.config.OutputDir)
	}

	return nil
}
