package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/taigrr/colorhash"

	"github.com/zstow/zstow/bucket"
)

var (
	summaryTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("252"))

	summaryHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("245"))

	summaryDimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("242"))
)

// bucketStyle assigns each bucket label a stable color derived from its
// hash, so the same bucket looks the same across runs and reports.
func bucketStyle(label string) lipgloss.Style {
	c := colorhash.HashString(label)%214 + 17 // skip the 16 base colors
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fmt.Sprintf("%d", c)))
}

// Summary renders the per-bucket folder counts and total sizes as a small
// terminal table, ordered by bucket size ascending.
func (r *RunReport) Summary() string {
	type row struct {
		folders int
		bytes   int64
	}
	perBucket := make(map[string]*row)
	for _, rec := range r.Records {
		b := perBucket[rec.Bucket]
		if b == nil {
			b = &row{}
			perBucket[rec.Bucket] = b
		}
		b.folders++
		if rec.SizeBytes > 0 {
			b.bytes += rec.SizeBytes
		}
	}

	var sb strings.Builder
	sb.WriteString(summaryTitleStyle.Render("Bucket Summary") + "\n")
	sb.WriteString(summaryHeaderStyle.Render(fmt.Sprintf("%-14s %8s %12s", "Bucket", "Folders", "Total")) + "\n")
	sb.WriteString(summaryDimStyle.Render(strings.Repeat("-", 38)) + "\n")

	for _, label := range bucket.Order {
		b := perBucket[label]
		if b == nil {
			continue
		}
		total := humanize.IBytes(uint64(b.bytes))
		sb.WriteString(fmt.Sprintf("%s %8d %12s\n",
			bucketStyle(label).Render(fmt.Sprintf("%-14s", label)), b.folders, total))
	}

	return sb.String()
}
