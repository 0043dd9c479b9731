package main

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"hepevd/internal/domain"
	"hepevd/internal/hierarchy"
	"hepevd/internal/view"
)

var (
	colourAccent = lipgloss.Color("#440154")
	colourBright = lipgloss.Color("#35B779")
	colourMuted  = lipgloss.Color("#808080")
	colourError  = lipgloss.Color("#E74C3C")
)

var styles = struct {
	Title  lipgloss.Style
	Label  lipgloss.Style
	ID     lipgloss.Style
	Muted  lipgloss.Style
	OK     lipgloss.Style
	Error  lipgloss.Style
	Active lipgloss.Style
	Box    lipgloss.Style
}{
	Title:  lipgloss.NewStyle().Bold(true).Foreground(colourBright),
	Label:  lipgloss.NewStyle().Bold(true),
	ID:     lipgloss.NewStyle().Foreground(colourMuted),
	Muted:  lipgloss.NewStyle().Foreground(colourMuted),
	OK:     lipgloss.NewStyle().Foreground(colourBright),
	Error:  lipgloss.NewStyle().Foreground(colourError),
	Active: lipgloss.NewStyle().Bold(true).Foreground(colourBright),
	Box: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colourAccent).
		Padding(0, 1),
}

// renderTree draws menu items as an indented tree with box-drawing branches
func renderTree(items []hierarchy.MenuItem) string {
	if len(items) == 0 {
		return styles.Muted.Render("no particles") + "\n"
	}
	var b strings.Builder
	var walk func(items []hierarchy.MenuItem, prefix string)
	walk = func(items []hierarchy.MenuItem, prefix string) {
		for i, it := range items {
			branch, next := "├── ", "│   "
			if i == len(items)-1 {
				branch, next = "└── ", "    "
			}
			fmt.Fprintf(&b, "%s%s%s %s\n", prefix, branch, styles.Label.Render(it.Label), styles.ID.Render(it.ID))
			walk(it.Children, prefix+next)
		}
	}
	walk(items, "")
	return b.String()
}

// renderRecords lays out stored events as aligned columns
func renderRecords(records []domain.EventRecord) string {
	rows := [][]string{{"ID", "NAME", "SOURCE", "HITS", "PARTICLES", "UPDATED"}}
	for _, r := range records {
		rows = append(rows, []string{
			r.ID,
			r.Name,
			r.Source,
			fmt.Sprint(r.Summary.Hits),
			fmt.Sprint(r.Summary.Particles),
			r.UpdatedAt.Local().Format("2006-01-02 15:04:05"),
		})
	}

	widths := make([]int, len(rows[0]))
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}

	var b strings.Builder
	for n, row := range rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			cell = cell + strings.Repeat(" ", widths[i]-lipgloss.Width(cell))
			if n == 0 {
				cell = styles.Label.Render(cell)
			}
			cells[i] = cell
		}
		b.WriteString(strings.TrimRight(strings.Join(cells, "  "), " "))
		b.WriteString("\n")
	}
	return b.String()
}

// marked renders names, highlighting the active ones
func marked(names, active []string) string {
	if len(names) == 0 {
		return styles.Muted.Render("-")
	}
	out := make([]string, len(names))
	for i, n := range names {
		if slices.Contains(active, n) {
			out[i] = styles.Active.Render("[" + n + "]")
		} else {
			out[i] = n
		}
	}
	return strings.Join(out, " ")
}

// renderSnapshot summarizes a view state inside a box
func renderSnapshot(s view.Snapshot) string {
	lines := []string{
		styles.Title.Render(s.Dimension + " view"),
		fmt.Sprintf("%s %s", styles.Label.Render("properties:"), marked(s.Properties, s.Active)),
		fmt.Sprintf("%s %s", styles.Label.Render("hit types: "), marked(s.HitTypes, s.ActiveTypes)),
		fmt.Sprintf("%s %s", styles.Label.Render("markers:   "), marked(s.MarkerKinds, s.ActiveKinds)),
		fmt.Sprintf("%s %v", styles.Label.Render("mc hits:   "), s.MCVisible),
		fmt.Sprintf("%s %d", styles.Label.Render("visible:   "), s.VisibleHits),
	}
	if s.SelectedParticle != "" {
		lines = append(lines, fmt.Sprintf("%s %s", styles.Label.Render("particle:  "), s.SelectedParticle))
	}

	layers := make([]string, 0, len(s.Caches))
	for layer := range s.Caches {
		layers = append(layers, layer)
	}
	slices.Sort(layers)
	for _, layer := range layers {
		st := s.Caches[layer]
		lines = append(lines, styles.Muted.Render(fmt.Sprintf("%-9s %d groups, %d built, %d reused", layer, st.Entries, st.Builds, st.Reuses)))
	}
	return styles.Box.Render(strings.Join(lines, "\n")) + "\n"
}
