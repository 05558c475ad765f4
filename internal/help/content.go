// Package help renders usage pages for argument collections.
// This file assembles the content model from a collection.
package help

import (
	"fmt"
	"reflect"
	"slices"
	"strings"
	"time"

	"github.com/toejough/argot/internal/core"
)

// Entry is one parameter line on a help page.
type Entry struct {
	Names       string
	Placeholder string
	Help        string
	Annotations []string
}

// Group is a titled run of entries.
type Group struct {
	Title   string
	Entries []Entry
}

// Page is the assembled help content for a binding target.
type Page struct {
	Command     string
	Description string
	Usage       string
	Groups      []Group
}

// BuildPage assembles the help content for a collection. Only leaf
// arguments surface; structured parents are represented by their fields.
func BuildPage(command, description string, collection *core.ArgumentCollection) Page {
	page := Page{
		Command:     command,
		Description: description,
		Usage:       usageLine(command, collection),
	}

	shown := collection.Shown().Filter(displayable)

	for _, title := range shown.Groups() {
		group := Group{Title: title}

		for _, argument := range shown.InGroup(title).Arguments() {
			group.Entries = append(group.Entries, buildEntry(argument))
		}

		if len(group.Entries) > 0 {
			page.Groups = append(page.Groups, group)
		}
	}

	return page
}

// displayable keeps leaves; structured parents are covered by their
// children.
func displayable(argument *core.Argument) bool {
	return len(argument.Children()) == 0
}

// usageLine renders the one-line synopsis: options placeholder first, then
// positional slots in order.
func usageLine(command string, collection *core.ArgumentCollection) string {
	parts := []string{"Usage:", command}

	type slot struct {
		index    int
		argument *core.Argument
	}

	var slots []slot

	hasOptions := false

	for _, argument := range collection.Shown().Arguments() {
		if index, ok := argument.Index(); ok {
			slots = append(slots, slot{index, argument})

			continue
		}

		if len(argument.Children()) == 0 && len(argument.Names()) > 0 {
			hasOptions = true
		}
	}

	if hasOptions {
		parts = append(parts, "[options]")
	}

	slices.SortFunc(slots, func(a, b slot) int { return a.index - b.index })

	for _, s := range slots {
		parts = append(parts, positionalUsage(s.argument))
	}

	return strings.Join(parts, " ")
}

func positionalUsage(argument *core.Argument) string {
	name := "<" + strings.ToLower(argument.Name()) + ">"

	if argument.Field().Kind == core.VarPositional {
		return "[" + name + "]..."
	}

	if !argument.Required() {
		return "[" + name + "]"
	}

	return name
}

func buildEntry(argument *core.Argument) Entry {
	return Entry{
		Names:       entryNames(argument),
		Placeholder: placeholderFor(argument),
		Help:        argument.Help(),
		Annotations: annotationsFor(argument),
	}
}

// entryNames lists spellings shorts-first, or the display name for
// positional-only parameters.
func entryNames(argument *core.Argument) string {
	names := argument.Names()
	if len(names) == 0 {
		return "<" + strings.ToLower(argument.Name()) + ">"
	}

	sorted := slices.Clone(names)
	slices.SortStableFunc(sorted, func(a, b string) int {
		return len(dashPrefix(a)) - len(dashPrefix(b))
	})

	return strings.Join(sorted, ", ")
}

func dashPrefix(name string) string {
	return name[:len(name)-len(strings.TrimLeft(name, "-"))]
}

// placeholderFor names the value shape a parameter expects, in the
// <angle-bracket> convention. Flags and counters take no value.
//
//nolint:cyclop // one case per value shape
func placeholderFor(argument *core.Argument) string {
	parameter := argument.Parameter()

	if parameter.Count {
		return ""
	}

	if choices := choiceNames(parameter); choices != "" {
		return "<" + choices + ">"
	}

	t := argument.Hint()
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	if t == nil {
		return "<value>"
	}

	suffix := ""

	if t.Kind() == reflect.Slice && t.Elem().Kind() != reflect.Uint8 {
		t = t.Elem()
		suffix = "..."
	}

	switch t {
	case reflect.TypeOf(time.Duration(0)):
		return "<duration>" + suffix
	case reflect.TypeOf(core.Path("")):
		return "<path>" + suffix
	}

	switch t.Kind() {
	case reflect.Bool:
		return ""
	case reflect.String:
		return "<text>" + suffix
	case reflect.Map:
		return "<key=value>..."
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "<int>" + suffix
	case reflect.Float32, reflect.Float64:
		return "<float>" + suffix
	default:
		return "<value>" + suffix
	}
}

func choiceNames(parameter core.Parameter) string {
	if parameter.ShowChoices != nil && !*parameter.ShowChoices {
		return ""
	}

	var names []string

	for name := range parameter.ChoiceNames {
		names = append(names, name)
	}

	for _, choice := range parameter.Choices {
		names = append(names, fmt.Sprint(choice))
	}

	if len(names) == 0 {
		return ""
	}

	slices.Sort(names)

	return strings.Join(slices.Compact(names), "|")
}

// annotationsFor collects the bracketed suffixes: required, env vars, and
// the default value.
func annotationsFor(argument *core.Argument) []string {
	var out []string

	if argument.Required() {
		out = append(out, "required")
	}

	parameter := argument.Parameter()

	if len(parameter.EnvVar) > 0 && boolOr(parameter.ShowEnvVar, true) {
		out = append(out, "env: "+strings.Join(parameter.EnvVar, ", "))
	}

	if text := defaultText(argument); text != "" && boolOr(parameter.ShowDefault, true) {
		out = append(out, "default: "+text)
	}

	return out
}

func defaultText(argument *core.Argument) string {
	field := argument.Field()

	if field.DefaultText != nil {
		return *field.DefaultText
	}

	if field.HasDefault && field.Default.IsValid() {
		return fmt.Sprintf("%v", field.Default.Interface())
	}

	return ""
}

func boolOr(value *bool, fallback bool) bool {
	if value == nil {
		return fallback
	}

	return *value
}
