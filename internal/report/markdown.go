// Package report renders stored vet reports as markdown and HTML documents.
package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"transitvet/domain/vet"
)

// trialColumns maps the flat metric prefixes the storage envelope uses back
// to table columns, in display order.
var trialColumns = []struct {
	header string
	prefix string
	format string
}{
	{"period (d)", "period_days_", "%.6g"},
	{"amplitude", "amp_", "%.4g"},
	{"amp unc", "amp_unc_", "%.4g"},
	{"phase (rad)", "phase_", "%.4f"},
	{"phase unc", "phase_unc_", "%.4f"},
	{"SNR", "snr_", "%.2f"},
	{"p-value", "p_value_", "%.3g"},
}

// Markdown renders a stored report envelope. Sweet reports get their trial
// rows reconstructed into a table; reports from other vetters fall back to a
// flat metrics listing.
func Markdown(rep *vet.Report) string {
	var doc strings.Builder

	doc.WriteString(fmt.Sprintf("# Vet Report %s\n\n", rep.ID))
	if rep.Target != "" {
		doc.WriteString(fmt.Sprintf("**Target:** %s  \n", rep.Target))
	}
	doc.WriteString(fmt.Sprintf("**Vetter:** %s  \n", rep.Vetter))
	if !rep.CreatedAt.IsZero() {
		doc.WriteString(fmt.Sprintf("**Created:** %s  \n", rep.CreatedAt))
	}
	if rep.SeriesHash != "" {
		doc.WriteString(fmt.Sprintf("**Series:** `%s`  \n", rep.SeriesHash))
	}
	if threshold, ok := rep.Metrics["threshold_sigma"]; ok {
		// NaN rows never cross the threshold, matching SweetReport.Suspicious.
		verdict := "OK"
		for _, trial := range vet.Trials() {
			if snr, ok := rep.Metrics["snr_"+string(trial)]; ok && snr > threshold {
				verdict = "SUSPICIOUS"
			}
		}
		doc.WriteString(fmt.Sprintf("**Verdict:** %s (threshold %.2f sigma)  \n", verdict, threshold))
	}
	doc.WriteString("\n")

	rest := writeTrialTable(&doc, rep.Metrics)
	writeMetricsList(&doc, rest)
	writeMessages(&doc, rep.Messages)

	return doc.String()
}

// SweetMarkdown renders a full sweet result without the round trip through
// the storage envelope.
func SweetMarkdown(r *vet.SweetReport) string {
	var doc strings.Builder

	title := "SWEET"
	if r.Target != "" {
		title += " " + r.Target.String()
	}
	doc.WriteString("# " + title + "\n\n")

	verdict := "OK"
	if r.Suspicious() {
		verdict = "SUSPICIOUS"
	}
	doc.WriteString(fmt.Sprintf("**Verdict:** %s (threshold %.2f sigma)  \n", verdict, r.ThresholdSigma))
	doc.WriteString(fmt.Sprintf("**Scatter:** %.6g  \n", r.Scatter))
	doc.WriteString(fmt.Sprintf("**Cadences:** %d used, %d masked in transit  \n", r.CadencesUsed, r.CadencesMasked))
	if r.SeriesHash != "" {
		doc.WriteString(fmt.Sprintf("**Series:** `%s`  \n", r.SeriesHash))
	}
	if !r.ComputedAt.IsZero() {
		doc.WriteString(fmt.Sprintf("**Computed:** %s  \n", r.ComputedAt))
	}
	doc.WriteString("\n## Trial periods\n\n")
	doc.WriteString("| trial | period (d) | amplitude | amp unc | phase (rad) | phase unc | SNR | p-value |\n")
	doc.WriteString("|---|---|---|---|---|---|---|---|\n")
	for _, row := range r.Rows {
		doc.WriteString(fmt.Sprintf("| %s | %.6g | %.4g | %.4g | %.4f | %.4f | %.2f | %.3g |\n",
			row.Trial, row.PeriodDays, row.Amplitude, row.AmplitudeUnc, row.Phase, row.PhaseUnc, row.SNR, row.PValue))
	}
	doc.WriteString("\n")

	writeMessages(&doc, r.Messages)
	return doc.String()
}

// HTML converts a markdown document to an HTML fragment. gomarkdown parsers
// hold state across Parse calls, so each call builds a fresh one.
func HTML(md string) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	doc := p.Parse([]byte(md))
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	return markdown.Render(doc, renderer)
}

// writeTrialTable reconstructs per-trial sine fit rows from the flat metric
// keys and renders them as a table. It returns the metrics it did not consume.
func writeTrialTable(doc *strings.Builder, metrics map[string]float64) map[string]float64 {
	rest := make(map[string]float64, len(metrics))
	for k, v := range metrics {
		rest[k] = v
	}

	var rows []vet.Trial
	for _, trial := range vet.Trials() {
		if _, ok := metrics["snr_"+string(trial)]; ok {
			rows = append(rows, trial)
		}
	}
	if len(rows) == 0 {
		return rest
	}

	doc.WriteString("## Trial periods\n\n")
	doc.WriteString("| trial |")
	for _, col := range trialColumns {
		doc.WriteString(" " + col.header + " |")
	}
	doc.WriteString("\n|---|")
	for range trialColumns {
		doc.WriteString("---|")
	}
	doc.WriteString("\n")

	for _, trial := range rows {
		doc.WriteString("| " + string(trial) + " |")
		for _, col := range trialColumns {
			key := col.prefix + string(trial)
			doc.WriteString(fmt.Sprintf(" "+col.format+" |", rest[key]))
			delete(rest, key)
		}
		doc.WriteString("\n")
	}
	doc.WriteString("\n")
	return rest
}

func writeMetricsList(doc *strings.Builder, metrics map[string]float64) {
	if len(metrics) == 0 {
		return
	}
	keys := make([]string, 0, len(metrics))
	for k := range metrics {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	doc.WriteString("## Metrics\n\n")
	for _, k := range keys {
		doc.WriteString(fmt.Sprintf("- **%s**: %.6g\n", k, metrics[k]))
	}
	doc.WriteString("\n")
}

func writeMessages(doc *strings.Builder, messages []string) {
	if len(messages) == 0 {
		return
	}
	doc.WriteString("## Messages\n\n")
	for _, msg := range messages {
		doc.WriteString("- " + msg + "\n")
	}
	doc.WriteString("\n")
}
