package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"fastpull/internal/config"
)

const (
	summaryWidth = 50
	labelWidth   = 44
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	ruleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))
	sectionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#9E9E9E"))
	valueStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575"))
	missingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#757575"))

	outcomeStyles = map[string]lipgloss.Style{
		"succeeded":   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#04B575")),
		"timed_out":   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFA726")),
		"interrupted": lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFA726")),
		"failed":      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#EF5350")),
	}

	titler = cases.Title(language.English)
)

// Label turns a phase name into a summary label
func Label(name string) string {
	if name == config.PhaseFirstLog {
		return "Container to First Log"
	}

	return titler.String(strings.ReplaceAll(name, "_", " "))
}

// Summary renders the timing summary printed at the end of a run
func Summary(r *Report) string {
	rule := ruleStyle.Render(strings.Repeat("=", summaryWidth))

	var b strings.Builder

	b.WriteString("\n" + rule + "\n")
	b.WriteString(titleStyle.Render(strings.ToUpper(r.Application)+" TIMING SUMMARY") + "\n")
	b.WriteString(rule + "\n")

	writeRow(&b, "Container Startup Time", r.ContainerStartupDuration)

	for _, e := range r.Phases {
		writeRow(&b, Label(e.Name), e.Elapsed)
	}

	total := r.TotalTime
	writeRow(&b, "Total Test Time", &total)

	if steps := Breakdown(r); len(steps) > 0 {
		b.WriteString("\n" + sectionStyle.Render("BREAKDOWN:") + "\n")

		for _, s := range steps {
			seconds := s.Seconds
			writeRow(&b, Label(s.From)+" to "+Label(s.To), &seconds)
		}
	}

	style, ok := outcomeStyles[r.Outcome]
	if !ok {
		style = missingStyle
	}

	b.WriteString("\n" + fmt.Sprintf("%-*s %s", labelWidth, "Outcome:", style.Render(r.Outcome)) + "\n")
	b.WriteString(rule + "\n")

	return b.String()
}

func writeRow(b *strings.Builder, label string, value *float64) {
	label += ":"

	if value == nil {
		fmt.Fprintf(b, "%-*s %s\n", labelWidth, label, missingStyle.Render("N/A"))
		return
	}

	fmt.Fprintf(b, "%-*s %s\n", labelWidth, label, valueStyle.Render(fmt.Sprintf("%.3fs", *value)))
}
