package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/camwatch/history-engine/internal/models"
)

var (
	green  = lipgloss.Color("#5FD787")
	yellow = lipgloss.Color("#FFD787")
	red    = lipgloss.Color("#FF8787")
	blue   = lipgloss.Color("#5FAFFF")
	gray   = lipgloss.Color("#888888")

	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(blue)
	sectionStyle = lipgloss.NewStyle().Bold(true).MarginTop(1)
	labelStyle   = lipgloss.NewStyle().Foreground(gray).Width(18)
	valueStyle   = lipgloss.NewStyle().Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(gray)

	categoryStyles = map[models.EventCategory]lipgloss.Style{
		models.CategoryCritical: lipgloss.NewStyle().Foreground(red).Bold(true),
		models.CategoryWarning:  lipgloss.NewStyle().Foreground(yellow),
		models.CategoryRecovery: lipgloss.NewStyle().Foreground(green),
		models.CategoryInfo:     lipgloss.NewStyle().Foreground(blue),
	}
)

const timeLayout = "2006-01-02 15:04"

func renderReport(w io.Writer, res models.AnalysisResult, limit int, loc *time.Location) {
	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("History for %s", res.Folder)) + "\n")
	b.WriteString(mutedStyle.Render(fmt.Sprintf("Loaded files: %s | Time range: %.1f hours",
		strings.Join(res.LoadedFiles, ", "), res.Uptime.TotalHours)) + "\n")

	b.WriteString(sectionStyle.Render("Summary") + "\n")
	s := res.Summary
	b.WriteString(row("Total records", fmt.Sprintf("%d", s.TotalRecords)))
	b.WriteString(row("Temperature", statLine(s.Temperature, "°C")))
	b.WriteString(row("RAM usage", statLine(s.RAM, "%")))
	b.WriteString(row("Disk usage", statLine(s.Disk, "%")))
	b.WriteString(row("CPU usage", statLine(s.CPU, "%")))

	b.WriteString(sectionStyle.Render("Uptime") + "\n")
	b.WriteString(row("System", percent(res.Uptime.SystemUptime)))
	for _, service := range models.Services {
		b.WriteString(row(service.Label(), percent(res.Uptime.Service(service))))
	}

	b.WriteString(sectionStyle.Render("Events") + "\n")
	counts := make([]string, 0, len(models.EventCategories))
	for _, c := range models.EventCategories {
		counts = append(counts, categoryStyles[c].Render(fmt.Sprintf("%s %d", c, res.EventCounts[c])))
	}
	b.WriteString(strings.Join(counts, "  ") + "\n")
	for i, ev := range res.Events {
		if limit > 0 && i == limit {
			b.WriteString(mutedStyle.Render(fmt.Sprintf("... %d more", len(res.Events)-limit)) + "\n")
			break
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
			mutedStyle.Render(ev.Timestamp.In(loc).Format(timeLayout)+"  "),
			categoryStyles[ev.Category].Width(10).Render(string(ev.Category)),
			fmt.Sprintf("%s %s ", ev.Icon, ev.Message),
			mutedStyle.Render(ev.Value),
		) + "\n")
	}

	b.WriteString(sectionStyle.Render("Transitions") + "\n")
	for _, service := range models.Services {
		for _, tr := range res.Transitions[service] {
			style := categoryStyles[models.CategoryRecovery]
			if tr.Status == models.LinkOffline {
				style = categoryStyles[models.CategoryCritical]
			}
			b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
				labelStyle.Width(10).Render(service.Label()),
				style.Width(9).Render(string(tr.Status)),
				fmt.Sprintf("%s → %s ", tr.Start.In(loc).Format(timeLayout), tr.End.In(loc).Format(timeLayout)),
				mutedStyle.Render(fmt.Sprintf("(%d min)", tr.DurationMinutes)),
			) + "\n")
		}
	}

	fmt.Fprint(w, b.String())
}

func row(label, value string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(label), valueStyle.Render(value)) + "\n"
}

func statLine(s models.Stat, unit string) string {
	return fmt.Sprintf("avg %.1f%s  min %.1f%s  max %.1f%s", s.Avg, unit, s.Min, unit, s.Max, unit)
}

func percent(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}
