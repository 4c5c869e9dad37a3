package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/winstack/internal/ipc"
	"github.com/1broseidon/winstack/internal/windows"
)

var (
	headerStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("250"))
	focusedStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	minimizedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

func formatWindow(w windows.Window) string {
	return fmt.Sprintf("%s %dx%d+%d+%d %s z=%d",
		w.ID, w.Size.Width, w.Size.Height, w.Position.X, w.Position.Y, w.State, w.ZIndex)
}

// renderWindowTable lists windows front-most first, the way a stack is read.
// styled adds colour for terminals.
func renderWindowTable(list *ipc.ListData, styled bool) string {
	if len(list.Windows) == 0 {
		return "No windows\n"
	}

	idWidth := len("ID")
	for _, w := range list.Windows {
		idWidth = max(idWidth, len(w.ID))
	}
	row := func(mark, id, geom, state, z string) string {
		return fmt.Sprintf("%-1s %-*s  %-20s  %-9s  %s", mark, idWidth, id, geom, state, z)
	}

	var b strings.Builder
	header := row("", "ID", "GEOMETRY", "STATE", "Z")
	if styled {
		header = headerStyle.Render(header)
	}
	b.WriteString(header + "\n")

	for i := len(list.Windows) - 1; i >= 0; i-- {
		w := list.Windows[i]
		mark := ""
		if w.ID == list.Focused {
			mark = "*"
		}
		line := row(mark, w.ID,
			fmt.Sprintf("%dx%d+%d+%d", w.Size.Width, w.Size.Height, w.Position.X, w.Position.Y),
			w.State.String(), fmt.Sprint(w.ZIndex))
		if styled {
			switch {
			case mark != "":
				line = focusedStyle.Render(line)
			case w.IsMinimized():
				line = minimizedStyle.Render(line)
			}
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}
