package core

import (
	"reflect"
	"strconv"
	"strings"
)

// unexported constants.
const (
	tagName      = "argot"
	tagSeparator = "|"
)

// tagInfo is the raw configuration carried by one struct tag.
type tagInfo struct {
	Kind      Kind
	KindSet   bool
	Parameter Parameter

	// Default is the unconverted default value text, when the tag supplies
	// one.
	Default *string

	// Optional marks the zero value as a usable default.
	Optional bool

	// Skip drops the field entirely.
	Skip bool
}

// parseFieldTag interprets a field's `argot` tag. The first item may name
// the field kind; everything else is either a bare option word or
// key=value.
func parseFieldTag(field reflect.StructField) (tagInfo, error) {
	info := tagInfo{Kind: KeywordOnly}

	tag := field.Tag.Get(tagName)
	if tag == "-" {
		info.Skip = true

		return info, nil
	}

	if strings.TrimSpace(tag) == "" {
		return info, nil
	}

	for part := range strings.SplitSeq(tag, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		if err := applyTagPart(&info, field, part); err != nil {
			return info, err
		}
	}

	return info, nil
}

//nolint:cyclop,funlen // one case per tag option
func applyTagPart(info *tagInfo, field reflect.StructField, part string) error {
	p := &info.Parameter

	switch {
	case part == "flag":
		info.Kind, info.KindSet = KeywordOnly, true
	case part == "arg":
		info.Kind, info.KindSet = PositionalOrKeyword, true
	case part == "positional":
		info.Kind, info.KindSet = PositionalOnly, true
	case part == "rest":
		info.Kind, info.KindSet = VarPositional, true
	case part == "extra":
		info.Kind, info.KindSet = VarKeyword, true
	case strings.HasPrefix(part, "name="):
		p.Name = splitTagList(strings.TrimPrefix(part, "name="))
	case strings.HasPrefix(part, "alias="):
		p.Alias = splitTagList(strings.TrimPrefix(part, "alias="))
	case strings.HasPrefix(part, "short="):
		p.Short = strings.TrimPrefix(part, "short=")
	case strings.HasPrefix(part, "desc="):
		p.Help = strings.TrimPrefix(part, "desc=")
	case strings.HasPrefix(part, "env="):
		p.EnvVar = splitTagList(strings.TrimPrefix(part, "env="))
	case strings.HasPrefix(part, "default="):
		value := strings.TrimPrefix(part, "default=")
		info.Default = &value
	case part == "required":
		p.Required = Ptr(true)
	case part == "optional":
		info.Optional = true
	case strings.HasPrefix(part, "negative="):
		// "negative=" with no entries disables negation outright.
		p.Negative = splitTagList(strings.TrimPrefix(part, "negative="))
		if p.Negative == nil {
			p.Negative = []string{}
		}
	case part == "count":
		p.Count = true
	case strings.HasPrefix(part, "ntokens="):
		n, err := strconv.Atoi(strings.TrimPrefix(part, "ntokens="))
		if err != nil {
			return configError("field %s: bad ntokens value %q", field.Name, part)
		}

		p.NTokens = &n
	case strings.HasPrefix(part, "enum="):
		names := splitTagList(strings.TrimPrefix(part, "enum="))

		p.ChoiceNames = make(map[string]any, len(names))
		for _, name := range names {
			p.ChoiceNames[name] = name
		}
	case strings.HasPrefix(part, "jsondict="):
		return parseTagBool(part, field, &p.JSONDict)
	case strings.HasPrefix(part, "jsonlist="):
		return parseTagBool(part, field, &p.JSONList)
	case strings.HasPrefix(part, "acceptskeys="):
		return parseTagBool(part, field, &p.AcceptsKeys)
	case part == "consumemultiple":
		p.ConsumeMultiple = Ptr(true)
	case part == "allowhyphen":
		p.AllowLeadingHyphen = Ptr(true)
	case part == "set":
		p.Set = true
	case strings.HasPrefix(part, "delimiter="):
		p.Delimiter = strings.TrimPrefix(part, "delimiter=")
	case part == "hidden":
		p.Show = Ptr(false)
	case strings.HasPrefix(part, "group="):
		p.Group = splitTagList(strings.TrimPrefix(part, "group="))
	default:
		return configError("field %s: unknown tag option %q", field.Name, part)
	}

	return nil
}

// splitTagList splits a multi-valued tag entry on "|". Empty input yields
// nil.
func splitTagList(s string) []string {
	if s == "" {
		return nil
	}

	return strings.Split(s, tagSeparator)
}

func parseTagBool(part string, field reflect.StructField, dst **bool) error {
	_, raw, _ := strings.Cut(part, "=")

	value, err := strconv.ParseBool(raw)
	if err != nil {
		return configError("field %s: bad boolean tag option %q", field.Name, part)
	}

	*dst = &value

	return nil
}
