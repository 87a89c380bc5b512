package report

import (
	"fmt"
	"strings"
)

// RenderMarkdown renders the summary, followed by the AI report when aiText is not empty.
func RenderMarkdown(summary Summary, aiText string) string {
	var b strings.Builder
	b.WriteString("# Neuronest Cognitive Report\n\n")
	fmt.Fprintf(&b, "## Summary (recent %d)\n\n", SummaryWindow)
	fmt.Fprintf(&b, "- Correct: %d\n", summary.Correct)
	fmt.Fprintf(&b, "- Wrong: %d\n", summary.Wrong)
	fmt.Fprintf(&b, "- Accuracy: %d%% (%s)\n", summary.AccuracyPercent, summary.Level)
	fmt.Fprintf(&b, "- Avg time: %ds\n", summary.AvgSeconds)
	fmt.Fprintf(&b, "- RT P50: %dms\n", summary.RTP50Ms)
	fmt.Fprintf(&b, "- Sessions: %d\n", summary.Sessions)

	if text := strings.TrimSpace(aiText); text != "" {
		b.WriteString("\n## AI Report\n\n")
		b.WriteString(text)
		b.WriteString("\n")
	}
	return b.String()
}
