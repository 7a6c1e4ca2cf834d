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
	"fmt"
	"io"
	"time"
)

// Dashboard is everything the HTML page shows
type Dashboard struct {
	Readings    Dataset
	Billing     Dataset
	ProfilePNG  []byte // optional
	VariancePNG []byte // optional
	GeneratedAt time.Time
	Live        bool // served by `meterviz serve`, adds the refresh control
	PlotWidth   float64
	PlotHeight  float64
}

// HTMLReporter composes the dashboard page
type HTMLReporter struct {
	logger *Logger
}

// NewHTMLReporter creates a new HTML report generator
func NewHTMLReporter(logger *Logger) *HTMLReporter {
	return &HTMLReporter{
		logger: logger,
	}
}

// GenerateDashboard writes the page and returns the number of drawn elements per chart
func (r *HTMLReporter) GenerateDashboard(w io.Writer, d Dashboard) (map[string]int, error) {
	r.logger.Debug("Generating dashboard", "live", d.Live)

	drawn := make(map[string]int, 2)
	ew := &errWriter{w: w}

	r.writeHTMLHeader(ew, d)

	sections := []struct {
		name    string
		title   string
		ds      Dataset
		margins Margins
		png     []byte
		alt     string
	}{
		{DatasetReadings, "Meter Readings", d.Readings, ReadingsMargins, d.ProfilePNG, "Average demand by hour"},
		{DatasetBilling, "Billing Variances", d.Billing, BillingMargins, d.VariancePNG, "Billing variances"},
	}

	for _, s := range sections {
		ew.printf("        <section class=\"card\">\n")
		ew.printf("            <h2>%s</h2>\n", s.title)
		ew.printf("            <div class=\"chart-wrap\">\n")
		if ew.err != nil {
			return drawn, ew.err
		}

		outerW := d.PlotWidth + s.margins.Left + s.margins.Right
		outerH := d.PlotHeight + s.margins.Top + s.margins.Bottom
		n, err := RenderChart(w, s.name, s.ds, outerW, outerH)
		if err != nil {
			return drawn, fmt.Errorf("failed to render %s chart: %w", s.name, err)
		}
		drawn[s.name] = n

		ew.printf("                <div class=\"tooltip\" id=\"tooltip-%s\" hidden></div>\n", s.name)
		ew.printf("            </div>\n")
		if s.ds == nil {
			ew.printf("            <p class=\"empty\">No data available.</p>\n")
		}
		if len(s.png) > 0 {
			ew.printf("            <img class=\"export\" alt=\"%s\" src=\"data:image/png;base64,%s\">\n", s.alt, EncodeBase64(s.png))
		}
		ew.printf("        </section>\n")
	}

	r.writeHTMLScript(ew, d)
	r.writeHTMLFooter(ew)

	return drawn, ew.err
}

func (r *HTMLReporter) writeHTMLHeader(w *errWriter, d Dashboard) {
	w.printf(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>meterviz</title>
    <style>
        :root {
            --primary-color: #ae017e;
            --bg-color: #fafafa;
            --card-bg: #ffffff;
            --text-color: #222;
            --text-muted: #666;
            --border-color: #e0e0e0;
        }

        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Oxygen, Ubuntu, Cantarell, sans-serif;
            background: var(--bg-color);
            color: var(--text-color);
            margin: 0;
            padding: 20px;
        }

        .container {
            max-width: 1100px;
            margin: 0 auto;
        }

        .card {
            background: var(--card-bg);
            border-radius: 12px;
            padding: 24px;
            margin-bottom: 24px;
            border: 1px solid var(--border-color);
        }

        .chart-wrap {
            position: relative;
        }

        .chart text {
            font-size: 11px;
            fill: var(--text-color);
        }

        .tooltip {
            position: absolute;
            pointer-events: none;
            background: rgba(0, 0, 0, 0.8);
            color: #fff;
            padding: 6px 8px;
            border-radius: 4px;
            font-size: 12px;
            white-space: pre-line;
        }

        .empty, footer {
            color: var(--text-muted);
        }

        img.export {
            max-width: 100%%;
            margin-top: 16px;
        }
    </style>
</head>
<body>
    <div class="container">
        <header>
            <h1>meterviz</h1>
            <p>Generated %s`, d.GeneratedAt.Format("2006-01-02 15:04:05"))
	if d.Live {
		w.printf(` <button id="refresh" type="button">Refresh</button>`)
	}
	w.printf("</p>\n        </header>\n")
}

// writeHTMLScript wires one tooltip element per chart to the rectangles' data-tooltip text
func (r *HTMLReporter) writeHTMLScript(w *errWriter, d Dashboard) {
	w.printf(`    <script>
    document.querySelectorAll("svg.chart").forEach(function (svg) {
        var tip = document.getElementById("tooltip-" + svg.dataset.chart);
        var current = null;
        svg.addEventListener("mousemove", function (ev) {
            var el = ev.target.closest("rect[data-tooltip]");
            if (!el) { tip.hidden = true; current = null; return; }
            if (el !== current) { tip.textContent = el.dataset.tooltip; current = el; }
            var box = svg.getBoundingClientRect();
            tip.style.left = (ev.clientX - box.left + %g) + "px";
            tip.style.top = (ev.clientY - box.top + %g) + "px";
            tip.hidden = false;
        });
        svg.addEventListener("mouseleave", function () { tip.hidden = true; current = null; });
    });
`, TooltipOffsetX, TooltipOffsetY)
	if d.Live {
		w.printf(`    document.getElementById("refresh").addEventListener("click", function () {
        fetch("/api/refresh", {method: "POST"}).then(function () { location.reload(); });
    });
`)
	}
	w.printf("    </script>\n")
}

func (r *HTMLReporter) writeHTMLFooter(w *errWriter) {
	w.printf(`
        <footer>
            <p>Generated by <a href="https://github.com/matthewgall/meterviz" style="color: var(--primary-color); text-decoration: none;">meterviz</a> %s</p>
            <p style="font-size: 0.9em;">This is an unofficial third-party application and is not affiliated with or endorsed by Snapmeter.</p>
        </footer>
    </div>
</body>
</html>
`, GetVersion())
}
