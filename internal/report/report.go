// Package report renders a CalibrationReport for terminals, Markdown
// documents, and HTML pages. Reported fields always appear in the fixed
// order: estimate, standard error, p-value, delta-hat.
package report

import (
	"fmt"
	"strings"

	"calinfer/domain/model"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// Text renders a plain-text summary
func Text(r *model.CalibrationReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Calibrated inference (%s)\n", r.Mode)
	fmt.Fprintf(&b, "run:        %s\n", r.RunID)
	fmt.Fprintf(&b, "target:     %s\n", r.Target)
	fmt.Fprintf(&b, "estimate:   %.6g\n", r.Result.Estimate)
	fmt.Fprintf(&b, "std error:  %.6g\n", r.Result.StdError)
	fmt.Fprintf(&b, "p-value:    %.4g\n", r.Result.PValue)
	fmt.Fprintf(&b, "delta-hat:  %.4g\n", r.Result.DeltaHat)
	fmt.Fprintf(&b, "%.0f%% CI:     [%.6g, %.6g]  (t, %d dof)\n",
		r.Level*100, r.Lower, r.Upper, r.DOF)

	if len(r.Candidates) > 0 {
		fmt.Fprintf(&b, "\ncandidate fits:\n")
		for _, c := range r.Candidates {
			fmt.Fprintf(&b, "  %-40s  point=%.6g  se=%.4g\n", c.Spec, c.Point, c.SamplingSE)
		}
	}
	if len(r.AuxiliaryRatios) > 0 {
		fmt.Fprintf(&b, "\nauxiliary moment ratios:\n")
		for _, a := range r.AuxiliaryRatios {
			fmt.Fprintf(&b, "  %-20s  %.4g\n", a.Name, a.Ratio)
		}
	}
	return b.String()
}

// Markdown renders a Markdown summary with a result table
func Markdown(r *model.CalibrationReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Calibrated inference report\n\n")
	fmt.Fprintf(&b, "- **Run**: `%s`\n", r.RunID)
	fmt.Fprintf(&b, "- **Mode**: %s\n", r.Mode)
	fmt.Fprintf(&b, "- **Target**: `%s`\n", r.Target)
	fmt.Fprintf(&b, "- **Created**: %s\n\n", r.CreatedAt)

	fmt.Fprintf(&b, "| estimate | std error | p-value | delta-hat |\n")
	fmt.Fprintf(&b, "|---|---|---|---|\n")
	fmt.Fprintf(&b, "| %.6g | %.6g | %.4g | %.4g |\n\n",
		r.Result.Estimate, r.Result.StdError, r.Result.PValue, r.Result.DeltaHat)

	fmt.Fprintf(&b, "%.0f%% confidence interval: [%.6g, %.6g] using a t reference with %d degrees of freedom.\n",
		r.Level*100, r.Lower, r.Upper, r.DOF)

	if len(r.Candidates) > 0 {
		fmt.Fprintf(&b, "\n## Candidate fits\n\n")
		fmt.Fprintf(&b, "| model | point | sampling se |\n|---|---|---|\n")
		for _, c := range r.Candidates {
			fmt.Fprintf(&b, "| `%s` | %.6g | %.4g |\n", c.Spec, c.Point, c.SamplingSE)
		}
	}
	if len(r.AuxiliaryRatios) > 0 {
		fmt.Fprintf(&b, "\n## Auxiliary moment ratios\n\n")
		fmt.Fprintf(&b, "| covariate | ratio |\n|---|---|\n")
		for _, a := range r.AuxiliaryRatios {
			fmt.Fprintf(&b, "| `%s` | %.4g |\n", a.Name, a.Ratio)
		}
	}
	return b.String()
}

// HTML renders the Markdown summary to an HTML fragment
func HTML(r *model.CalibrationReport) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.Tables)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	return markdown.ToHTML([]byte(Markdown(r)), p, renderer)
}
