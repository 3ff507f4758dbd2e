package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

// viewCommand creates the view command, an interactive pager for large
// diagrams.
func (c *CLI) viewCommand() *cobra.Command {
	var srcFlags sourceFlags
	opts := c.renderOptions()

	cmd := &cobra.Command{
		Use:   "view <graph>",
		Short: "Browse a lineage diagram in an interactive pager",
		Long: `Browse a lineage diagram in an interactive pager.

Useful for graphs too tall for one screen. Keys: ↑/↓ or j/k scroll one
row, PgUp/PgDn scroll a page, g/G jump to top/bottom, q quits.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, closer, err := c.newRunner(cmd.Context(), srcFlags)
			if err != nil {
				return err
			}
			if closer != nil {
				defer closer()
			}

			opts.Color = true
			result, err := runner.Execute(cmd.Context(), args[0], opts)
			if err != nil {
				return err
			}

			model := newPagerModel(args[0], result.Rows)
			_, err = tea.NewProgram(model, tea.WithAltScreen()).Run()
			return err
		},
	}

	srcFlags.register(cmd, c.Config)
	cmd.Flags().BoolVar(&opts.Separators, "separators", opts.Separators, "blank row after completed lineages")

	return cmd
}

// pagerModel is the bubbletea model for scrolling through diagram rows.
type pagerModel struct {
	title  string
	rows   []string
	offset int
	height int
}

func newPagerModel(title string, rows []string) pagerModel {
	return pagerModel{
		title:  title,
		rows:   rows,
		height: 20,
	}
}

func (m pagerModel) Init() tea.Cmd {
	return nil
}

func (m pagerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			m.offset = m.clampOffset(m.offset - 1)
		case "down", "j":
			m.offset = m.clampOffset(m.offset + 1)
		case "pgup", "b":
			m.offset = m.clampOffset(m.offset - m.height)
		case "pgdown", "f", " ":
			m.offset = m.clampOffset(m.offset + m.height)
		case "g", "home":
			m.offset = 0
		case "G", "end":
			m.offset = m.clampOffset(len(m.rows))
		}
	case tea.WindowSizeMsg:
		m.height = msg.Height - 3
		if m.height < 5 {
			m.height = 5
		}
		m.offset = m.clampOffset(m.offset)
	}
	return m, nil
}

func (m pagerModel) clampOffset(offset int) int {
	max := len(m.rows) - m.height
	if max < 0 {
		max = 0
	}
	if offset > max {
		offset = max
	}
	if offset < 0 {
		offset = 0
	}
	return offset
}

func (m pagerModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.title))
	b.WriteString("  ")
	b.WriteString(StyleDim.Render("↑/↓ scroll  g/G top/bottom  q quit"))
	b.WriteString("\n\n")

	end := m.offset + m.height
	if end > len(m.rows) {
		end = len(m.rows)
	}
	for i := m.offset; i < end; i++ {
		b.WriteString(m.rows[i])
		b.WriteString("\n")
	}

	if len(m.rows) > m.height {
		b.WriteString(StyleDim.Render(fmt.Sprintf("\n%d-%d of %d", m.offset+1, end, len(m.rows))))
	}
	return b.String()
}
