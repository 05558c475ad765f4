package core

import (
	"fmt"
	"reflect"
	"slices"
	"strings"
)

// Exported constants.
const (
	// GroupArguments is the default help group for positional parameters.
	GroupArguments = "Arguments"

	// GroupParameters is the default help group for keyword parameters.
	GroupParameters = "Parameters"
)

// kindReassignment gives a child's effective kind from its parent's kind
// and its own native kind. Absent combinations are unreachable and the
// child is dropped from the tree.
//
//nolint:gochecknoglobals // fixed semantic table
var kindReassignment = map[[2]Kind]Kind{
	{PositionalOrKeyword, PositionalOrKeyword}: PositionalOrKeyword,
	{PositionalOrKeyword, PositionalOnly}:      PositionalOnly,
	{PositionalOrKeyword, KeywordOnly}:         KeywordOnly,
	{PositionalOrKeyword, VarPositional}:       VarPositional,
	{PositionalOrKeyword, VarKeyword}:          VarKeyword,

	{PositionalOnly, PositionalOrKeyword}: PositionalOnly,
	{PositionalOnly, PositionalOnly}:      PositionalOnly,
	{PositionalOnly, VarPositional}:       VarPositional,

	{KeywordOnly, PositionalOrKeyword}: KeywordOnly,
	{KeywordOnly, KeywordOnly}:         KeywordOnly,
	{KeywordOnly, VarKeyword}:          VarKeyword,

	{VarPositional, PositionalOrKeyword}: PositionalOnly,
	{VarPositional, PositionalOnly}:      PositionalOnly,
	{VarPositional, VarPositional}:       VarPositional,

	{VarKeyword, PositionalOrKeyword}: KeywordOnly,
	{VarKeyword, KeywordOnly}:         KeywordOnly,
	{VarKeyword, VarKeyword}:          VarKeyword,
}

// ArgumentCollection is a flattened pre-order walk of the whole argument
// tree, including all structural descendants.
type ArgumentCollection struct {
	arguments []*Argument
}

// buildState threads positional slot assignment depth-first through the
// tree. Once a keyword-only field is seen, later fields on that walk get
// no slot.
type buildState struct {
	nextIndex int
	stopped   bool
}

// NewCollectionForType builds the argument tree for a struct or function
// type. The seed value, when valid, supplies per-field defaults from its
// non-zero fields.
func NewCollectionForType(t reflect.Type, seed reflect.Value, defaults Parameter) (*ArgumentCollection, error) {
	fields, err := fieldsOf(t)
	if err != nil {
		return nil, err
	}

	fields = applySeedDefaults(fields, seed)

	col := &ArgumentCollection{}
	state := &buildState{}

	for _, field := range fields {
		if err := col.appendField(field, nil, nil, defaults, state); err != nil {
			return nil, err
		}
	}

	return col, nil
}

// appendField creates the Argument for one field and, for structured
// hints, its descendants, appending all of them in pre-order. A nil
// parent means the field is a root.
func (c *ArgumentCollection) appendField(
	field FieldInfo,
	parent *Argument,
	parentNameGroups [][]string,
	inherited Parameter,
	state *buildState,
) error {
	cparam := CombineParameters(inherited, field.Parameter)

	required := field.Required()
	if cparam.Required != nil {
		required = *cparam.Required
	}

	var keys []string

	if parent != nil {
		required = required && parent.required
		keys = append(slices.Clone(parent.keys), structuralKey(field, cparam))
	}

	nameGroups, display := deriveNameGroups(field, cparam, parentNameGroups)

	argument := &Argument{
		field:     field,
		parameter: cparam,
		hint:      field.Type,
		required:  required,
		keys:      keys,
		display:   display,
		names:     filterMatchable(resolveParameterNames(nameGroups...)),
	}

	// Negatives derive from the final resolved spellings.
	argument.parameter.Name = argument.names
	argument.negatives = argument.parameter.GetNegatives(derefType(field.Type))

	if argument.parameter.Group == nil {
		argument.parameter.Group = defaultGroup(field.Kind)
	}

	count, consumeAll, err := tokenCountForHint(field.Type, argument.parameter)
	if err != nil {
		return err
	}

	argument.tokenCount, argument.consumeAll = count, consumeAll

	if argument.parameter.Count && !countable(field.Type) {
		return configError("count field %s must be an integer or bool, got %s", field.Name, field.Type)
	}

	assignIndex(argument, state)

	c.arguments = append(c.arguments, argument)

	children, err := buildChildren(argument, nameGroups, state)
	if err != nil {
		return err
	}

	argument.children = children.arguments
	c.arguments = append(c.arguments, children.arguments...)

	return nil
}

// structuralKey is the dotted-path component a child contributes.
func structuralKey(field FieldInfo, cparam Parameter) string {
	transform := cparam.nameTransform()

	return transform(field.Name)
}

// deriveNameGroups computes this node's name-group chain and display
// name. Unnamed positional and var-keyword fields get no keyword
// spellings; their display name stands in on help pages.
func deriveNameGroups(field FieldInfo, cparam Parameter, parentGroups [][]string) ([][]string, string) {
	var own []string

	if cparam.Name != nil {
		own = slices.Clone(cparam.Name)
	} else {
		switch field.Kind {
		case PositionalOnly, VarPositional:
			return nil, upperDisplayName(field.Name)
		case VarKeyword:
			return nil, "--[KEYWORD]"
		case PositionalOrKeyword, KeywordOnly:
			own = []string{structuralKey(field, cparam)}
		}
	}

	own = append(own, cparam.Alias...)

	if cparam.Short != "" {
		own = append(own, "-"+strings.TrimPrefix(cparam.Short, "-"))
	}

	groups := append(slices.Clone(parentGroups), own)

	return groups, upperDisplayName(field.Name)
}

// filterMatchable drops wildcard and empty spellings; they shape child
// names but are not themselves matchable.
func filterMatchable(names []string) []string {
	out := make([]string, 0, len(names))

	for _, name := range names {
		if name == "" || name == "*" {
			continue
		}

		out = append(out, name)
	}

	return out
}

func defaultGroup(kind Kind) []string {
	switch kind {
	case PositionalOnly, VarPositional:
		return []string{GroupArguments}
	case PositionalOrKeyword, KeywordOnly, VarKeyword:
		return []string{GroupParameters}
	default:
		return []string{GroupParameters}
	}
}

// assignIndex gives positional slots to positionally-eligible arguments.
// Keyword-accepting parents take no slot; their leaves consume slots
// instead, threaded depth-first.
func assignIndex(argument *Argument, state *buildState) {
	if !argument.parameter.parse() {
		return
	}

	switch argument.field.Kind {
	case KeywordOnly:
		state.stopped = true

		return
	case VarKeyword:
		return
	case PositionalOnly, PositionalOrKeyword, VarPositional:
	}

	if state.stopped || argument.acceptsKeywords() {
		return
	}

	index := state.nextIndex
	argument.index = &index
	state.nextIndex++
}

func countable(t reflect.Type) bool {
	t = derefType(t)

	switch t.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	default:
		return false
	}
}

// buildChildren expands a structured argument into child Arguments, with
// kind reassignment and blocked parameter inheritance. Maps get no
// children; their keys are arbitrary.
func buildChildren(parent *Argument, nameGroups [][]string, state *buildState) (*ArgumentCollection, error) {
	if !parent.acceptsKeywords() {
		return &ArgumentCollection{}, nil
	}

	hint := derefType(parent.hint)

	if members := unionMembers(hint, parent.parameter.Types); members != nil {
		return buildUnionChildren(parent, members, nameGroups)
	}

	if !isStructLike(hint) {
		return &ArgumentCollection{}, nil
	}

	var seed reflect.Value
	if parent.field.HasDefault && parent.field.Default.IsValid() {
		seed = reflect.Indirect(parent.field.Default)
	}

	return buildChildrenOfType(parent, hint, seed, nameGroups, state)
}

func buildChildrenOfType(
	parent *Argument,
	hint reflect.Type,
	seed reflect.Value,
	nameGroups [][]string,
	state *buildState,
) (*ArgumentCollection, error) {
	fields, err := fieldsOf(hint)
	if err != nil {
		return nil, err
	}

	fields = applySeedDefaults(fields, seed)

	inherited := blockSubkeyInheritance(parent.parameter)
	col := &ArgumentCollection{}

	for _, field := range fields {
		effective, ok := kindReassignment[[2]Kind{parent.field.Kind, field.Kind}]
		if !ok {
			continue
		}

		field.Kind = effective

		if err := col.appendField(field, parent, nameGroups, inherited, state); err != nil {
			return nil, err
		}
	}

	return col, nil
}

// buildUnionChildren expands each union member and merges children that
// share a key path. Union fields bind by keyword; the shared positional
// counter is not advanced for them.
func buildUnionChildren(parent *Argument, members []reflect.Type, nameGroups [][]string) (*ArgumentCollection, error) {
	col := &ArgumentCollection{}
	byPath := map[string]*Argument{}
	unionState := &buildState{stopped: true}

	for _, member := range members {
		member = derefType(member)
		if !isStructLike(member) {
			continue
		}

		memberCol, err := buildChildrenOfType(parent, member, reflect.Value{}, nameGroups, unionState)
		if err != nil {
			return nil, err
		}

		for _, child := range memberCol.arguments {
			path := joinKeys(child.keys)

			existing, ok := byPath[path]
			if !ok {
				byPath[path] = child
				col.arguments = append(col.arguments, child)

				continue
			}

			if err := mergeUnionChild(parent, existing, child); err != nil {
				return nil, err
			}
		}
	}

	return col, nil
}

// mergeUnionChild reconciles two branches' fields sharing a key path. The
// discriminator field's allowed values union and its default clears;
// anything else colliding with a different shape is a construction error.
func mergeUnionChild(parent *Argument, existing, incoming *Argument) error {
	key := existing.keys[len(existing.keys)-1]

	if existing.hint == incoming.hint && key != parent.parameter.Discriminator {
		return nil
	}

	if parent.parameter.Discriminator == "" || key != parent.parameter.Discriminator {
		return configError(
			"union members disagree on field %q and no discriminator reconciles them", key)
	}

	if existing.hint != incoming.hint {
		return configError("discriminator field %q must have one type across members", key)
	}

	existing.parameter.Choices = append(existing.parameter.Choices, incoming.parameter.Choices...)
	existing.field.HasDefault = false
	existing.field.DefaultText = nil
	existing.required = existing.required || incoming.required

	return nil
}

// Arguments returns the flattened pre-order arguments.
func (c *ArgumentCollection) Arguments() []*Argument { return c.arguments }

// Roots returns the top-level arguments.
func (c *ArgumentCollection) Roots() *ArgumentCollection {
	return c.Filter(func(a *Argument) bool { return len(a.keys) == 0 })
}

// Filter returns the arguments satisfying the predicate, preserving
// order.
func (c *ArgumentCollection) Filter(keep func(*Argument) bool) *ArgumentCollection {
	out := &ArgumentCollection{}

	for _, argument := range c.arguments {
		if keep(argument) {
			out.arguments = append(out.arguments, argument)
		}
	}

	return out
}

// WithKind keeps arguments of any of the given kinds.
func (c *ArgumentCollection) WithKind(kinds ...Kind) *ArgumentCollection {
	return c.Filter(func(a *Argument) bool {
		return slices.Contains(kinds, a.field.Kind)
	})
}

// WithTokens keeps arguments that directly received tokens.
func (c *ArgumentCollection) WithTokens() *ArgumentCollection {
	return c.Filter((*Argument).HasTokens)
}

// Parsed keeps arguments that participate in parsing.
func (c *ArgumentCollection) Parsed() *ArgumentCollection {
	return c.Filter(func(a *Argument) bool { return a.parameter.parse() })
}

// Shown keeps arguments visible on help pages.
func (c *ArgumentCollection) Shown() *ArgumentCollection {
	return c.Filter(func(a *Argument) bool { return a.parameter.show() })
}

// InGroup keeps arguments belonging to the named help group.
func (c *ArgumentCollection) InGroup(group string) *ArgumentCollection {
	return c.Filter(func(a *Argument) bool {
		return slices.Contains(a.parameter.Group, group)
	})
}

// Groups returns group names in first-appearance order.
func (c *ArgumentCollection) Groups() []string {
	var out []string

	for _, argument := range c.arguments {
		for _, group := range argument.parameter.Group {
			if !slices.Contains(out, group) {
				out = append(out, group)
			}
		}
	}

	return out
}

// Match resolves a CLI spelling to an argument. An exact match wins
// immediately; otherwise the candidate with the fewest leftover keys is
// the most specific and wins.
func (c *ArgumentCollection) Match(term string, transform NameTransformFunc) (*Argument, []string, *Implicit, bool) {
	var (
		best         *Argument
		bestKeys     []string
		bestImplicit *Implicit
		found        bool
	)

	for _, argument := range c.arguments {
		if !argument.parameter.parse() {
			continue
		}

		keys, implicit, ok := argument.Match(term, transform)
		if !ok {
			continue
		}

		if len(keys) == 0 {
			return argument, keys, implicit, true
		}

		if !found || len(keys) < len(bestKeys) {
			best, bestKeys, bestImplicit, found = argument, keys, implicit, true
		}
	}

	return best, bestKeys, bestImplicit, found
}

// MatchIndex resolves a positional slot to an argument.
func (c *ArgumentCollection) MatchIndex(index int) (*Argument, bool) {
	for _, argument := range c.arguments {
		if !argument.parameter.parse() {
			continue
		}

		if argument.MatchIndex(index) {
			return argument, true
		}
	}

	return nil, false
}

// Convert runs conversion and validation across the whole collection,
// mark-and-sweep: parents that consume children wholesale keep those
// children from double-converting.
func (c *ArgumentCollection) Convert() error {
	for _, argument := range c.arguments {
		argument.resetMark()
	}

	sorted := slices.Clone(c.arguments)
	slices.SortStableFunc(sorted, func(a, b *Argument) int {
		return slices.Compare(a.keys, b.keys)
	})

	for _, argument := range sorted {
		if argument.marked || !argument.parameter.parse() {
			continue
		}

		if err := argument.ConvertAndValidate(); err != nil {
			return err
		}
	}

	return nil
}

// UpdateFromMap feeds a nested configuration mapping into the collection
// as synthetic tokens, leaving arguments that already have tokens alone
// so earlier sources keep precedence.
func (c *ArgumentCollection) UpdateFromMap(data map[string]any, source Source, allowUnknown bool) error {
	return updateTreeFromMap(c, data, source, allowUnknown)
}

func updateTreeFromMap(c *ArgumentCollection, data map[string]any, source Source, allowUnknown bool) error {
	return updateMapPath(c, nil, data, source, allowUnknown)
}

func updateMapPath(c *ArgumentCollection, path []string, data map[string]any, source Source, allowUnknown bool) error {
	keys := make([]string, 0, len(data))
	for key := range data {
		keys = append(keys, key)
	}

	slices.Sort(keys)

	for _, key := range keys {
		childPath := append(slices.Clone(path), key)

		nested, ok := data[key].(map[string]any)
		if !ok {
			if err := updateMapLeaf(c, childPath, data[key], source, allowUnknown); err != nil {
				return err
			}

			continue
		}

		term := cliOptionName(childPath...)
		if argument, leftover, _, ok := c.Match(term, nil); ok && len(leftover) == 0 && !argument.acceptsKeywords() {
			return configError("%s does not take nested keys", term)
		}

		if err := updateMapPath(c, childPath, nested, source, allowUnknown); err != nil {
			return err
		}
	}

	return nil
}

func updateMapLeaf(c *ArgumentCollection, path []string, value any, source Source, allowUnknown bool) error {
	term := cliOptionName(path...)

	argument, leftover, _, ok := c.Match(term, nil)
	if !ok {
		if allowUnknown {
			return nil
		}

		return &UnknownOptionError{Token: Token{Keyword: term, Value: term, Source: source}}
	}

	// Earlier sources already populated this argument.
	if argument.HasTreeTokens() {
		return nil
	}

	values, many := value.([]any)
	if !many {
		values = []any{value}
	}

	for i, element := range values {
		token := Token{
			Keyword: term,
			Source:  source,
			Index:   i,
			Keys:    leftover,
		}

		if element == nil {
			token.Implicit = ImplicitValue(nil)
		} else {
			token.Value = configValueString(element)
		}

		if err := argument.Append(token); err != nil {
			return err
		}
	}

	return nil
}

// configValueString renders a configuration scalar the way it would have
// been typed on the command line.
func configValueString(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}
