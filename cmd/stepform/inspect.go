package main

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/aretw0/stepform/pkg/domain"
	"github.com/aretw0/stepform/pkg/form"
	"github.com/aretw0/stepform/pkg/loader"
	"github.com/aretw0/stepform/pkg/registry"
	"github.com/aretw0/stepform/pkg/wizard"
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#5A56E0", Dark: "#7571F9"})
	stepStyle    = lipgloss.NewStyle().Bold(true).MarginTop(1)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#9B9B9B", Dark: "#5C5C5C"})
	actionStyle  = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#02BA84", Dark: "#02BF87"})
	indent       = lipgloss.NewStyle().PaddingLeft(2)
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <wizard-file>",
	Short: "Show the steps, fields and actions of a wizard",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		def, err := loader.LoadFile(args[0])
		if err != nil {
			return err
		}
		style, _ := cmd.Flags().GetString("style")
		md, err := newMarkdownRenderer(style)
		if err != nil {
			return err
		}
		out, err := renderWizard(cmd.Context(), def, md)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), out)
		return nil
	},
}

func init() {
	inspectCmd.Flags().String("style", "auto", "Markdown style for step descriptions (auto, dark, light, notty)")
	rootCmd.AddCommand(inspectCmd)
}

// markdownRenderer turns a step description into terminal text.
type markdownRenderer func(string) (string, error)

func newMarkdownRenderer(style string) (markdownRenderer, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(76),
	)
	if err != nil {
		return nil, fmt.Errorf("markdown style %q: %w", style, err)
	}
	return func(markdown string) (string, error) {
		out, err := r.Render(markdown)
		if err != nil {
			return "", err
		}
		return strings.Trim(out, "\n"), nil
	}, nil
}

// renderWizard lists every step with its fields and the actions a client
// sees on it. Step descriptions are markdown.
func renderWizard(ctx context.Context, def *wizard.Definition, md markdownRenderer) (string, error) {
	view := form.FromRegistry[*wizard.Form](registry.Default)

	blocks := []string{
		headingStyle.Render(fmt.Sprintf("%s (%d steps)", def.Key, def.Len())),
		mutedStyle.Render(fmt.Sprintf("step parameter: ?%s=N", def.ParamName())),
	}

	for i, step := range def.Steps {
		index := i + 1
		query := url.Values{def.ParamName(): {strconv.Itoa(index)}}
		req := domain.NewRequest(http.MethodGet, "/"+def.Key, query, nil)
		w, err := wizard.New(ctx, def, req)
		if err != nil {
			return "", err
		}

		lines := []string{stepStyle.Render(fmt.Sprintf("%d. %s", index, step.Title))}
		if step.Description != "" {
			desc, err := md(step.Description)
			if err != nil {
				return "", fmt.Errorf("step %d description: %w", index, err)
			}
			lines = append(lines, desc)
		}
		for _, f := range step.Fields {
			typ := "string"
			if f.Type != nil {
				typ = f.Type.Name()
			}
			line := f.Name + ": " + typ
			if f.Required {
				line += " (required)"
			}
			if f.Default != nil {
				line += fmt.Sprintf(" default=%v", f.Default)
			}
			lines = append(lines, indent.Render(line))
		}

		var actions []string
		for _, a := range view.Actions(wizard.NewForm(w, nil), req) {
			actions = append(actions, actionStyle.Render(fmt.Sprintf("[%s]", a.Title)))
		}
		lines = append(lines, indent.Render("actions: "+strings.Join(actions, " ")))

		blocks = append(blocks, lipgloss.JoinVertical(lipgloss.Left, lines...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, blocks...), nil
}
