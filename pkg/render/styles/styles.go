// Package styles decorates lineage labels for terminal output.
//
// Color never lives in the renderer: these helpers build label lines
// and are plugged into a render pass through ascii.WithLabels, so
// styling cannot disturb column or edge character positions.
package styles

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/ebiiii/lineal/pkg/dag"
)

var (
	colorYellow = lipgloss.Color("3") // node identifiers
	colorGreen  = lipgloss.Color("2") // submodule prefixes
	colorBlue   = lipgloss.Color("4") // workflow annotations
)

var (
	// StyleID renders shortened node identifiers.
	StyleID = lipgloss.NewStyle().Foreground(colorYellow)

	// StyleSubmodule renders submodule prefixes ahead of an identifier.
	StyleSubmodule = lipgloss.NewStyle().Foreground(colorGreen)

	// StyleWorkflow renders "part of" workflow annotations.
	StyleWorkflow = lipgloss.NewStyle().Foreground(colorBlue)
)

// shortIDLen is how many identifier characters are displayed.
const shortIDLen = 8

// ShortID returns the first eight characters of an identifier.
func ShortID(id string) string {
	if len(id) > shortIDLen {
		return id[:shortIDLen]
	}
	return id
}

// Labels builds styled display lines for a node: the shortened ID
// followed by the node's first label on one line, any submodule prefix
// from metadata ahead of the ID, and an indented "part of" line when
// the node belongs to a workflow.
//
// Plug it into a render pass with ascii.WithLabels(styles.Labels).
func Labels(n *dag.Node) []string {
	head := StyleID.Render(ShortID(n.ID))
	if sub, ok := n.Meta["submodule"].(string); ok && sub != "" {
		head = StyleSubmodule.Render(sub) + "@" + head
	}
	if len(n.Labels) > 0 {
		head += " " + n.Labels[0]
	}

	lines := []string{head}
	lines = append(lines, n.Labels[min(1, len(n.Labels)):]...)
	if n.Workflow != "" {
		lines = append(lines, fmt.Sprintf("         (part of %s)", StyleWorkflow.Render(n.Workflow)))
	}
	return lines
}

// PlainLabels builds the same display lines as Labels without any
// styling, for output that is piped or written to files.
func PlainLabels(n *dag.Node) []string {
	head := ShortID(n.ID)
	if sub, ok := n.Meta["submodule"].(string); ok && sub != "" {
		head = sub + "@" + head
	}
	if len(n.Labels) > 0 {
		head += " " + n.Labels[0]
	}

	lines := []string{head}
	lines = append(lines, n.Labels[min(1, len(n.Labels)):]...)
	if n.Workflow != "" {
		lines = append(lines, fmt.Sprintf("         (part of %s)", n.Workflow))
	}
	return lines
}
