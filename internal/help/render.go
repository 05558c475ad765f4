// Package help rendering functions.
// This file handles the actual rendering of help content with proper styling.

package help

import (
	"fmt"
	"io"
	"strings"
)

const entryIndent = "  "

// Render writes the help page to the given writer. Sections appear in
// canonical order: description, usage, then each parameter group.
func Render(w io.Writer, page Page, styles Styles) error {
	var b strings.Builder

	if page.Description != "" {
		b.WriteString(page.Description)
		b.WriteString("\n\n")
	}

	b.WriteString(page.Usage)
	b.WriteString("\n")

	for _, group := range page.Groups {
		b.WriteString("\n")
		b.WriteString(styles.Header.Render(group.Title + ":"))
		b.WriteString("\n")

		renderEntries(&b, group.Entries, styles)
	}

	_, err := io.WriteString(w, b.String())
	if err != nil {
		return fmt.Errorf("writing help output: %w", err)
	}

	return nil
}

// renderEntries lays entries out in two columns, names left, help right,
// aligned on the widest name cell.
func renderEntries(b *strings.Builder, entries []Entry, styles Styles) {
	width := 0

	cells := make([]string, len(entries))
	for i, entry := range entries {
		cells[i] = nameCell(entry)

		if len(cells[i]) > width {
			width = len(cells[i])
		}
	}

	for i, entry := range entries {
		b.WriteString(entryIndent)
		b.WriteString(styledNameCell(entry, styles))
		b.WriteString(strings.Repeat(" ", width-len(cells[i])))

		if text := entryText(entry, styles); text != "" {
			b.WriteString(entryIndent)
			b.WriteString(text)
		}

		b.WriteString("\n")
	}
}

// nameCell is the unstyled left column, measured for alignment before
// styling adds invisible escape codes.
func nameCell(entry Entry) string {
	if entry.Placeholder == "" {
		return entry.Names
	}

	return entry.Names + " " + entry.Placeholder
}

func styledNameCell(entry Entry, styles Styles) string {
	names := styles.Option.Render(entry.Names)

	if entry.Placeholder == "" {
		return names
	}

	return names + " " + styles.Placeholder.Render(entry.Placeholder)
}

func entryText(entry Entry, styles Styles) string {
	parts := make([]string, 0, 2)

	if entry.Help != "" {
		parts = append(parts, strings.TrimSpace(entry.Help))
	}

	if len(entry.Annotations) > 0 {
		annotation := "[" + strings.Join(entry.Annotations, "] [") + "]"
		parts = append(parts, styles.Annotation.Render(annotation))
	}

	return strings.Join(parts, " ")
}
