package main

import (
	"fmt"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
)

func printMarkdown(cmd *cobra.Command, flags *rootFlags, md string) error {
	out := md
	if flags.render {
		out = renderMarkdown(md, flags.width)
	}
	_, err := fmt.Fprintln(cmd.OutOrStdout(), out)
	return err
}

// renderMarkdown styles md for a terminal. Raw text is returned when the
// renderer cannot be built.
func renderMarkdown(md string, width int) string {
	if width <= 0 {
		width = 80
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return md
	}
	rendered, err := renderer.Render(md)
	if err != nil {
		return md
	}
	return rendered
}
