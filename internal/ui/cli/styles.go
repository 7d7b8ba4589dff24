package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	versionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
)

// printStyled renders msg line by line so lipgloss does not pad short lines
// to the width of the longest one.
func printStyled(w io.Writer, style lipgloss.Style, msg string) {
	for _, line := range strings.Split(msg, "\n") {
		fmt.Fprintln(w, style.Render(line))
	}
}
