package style

import (
	"fmt"
	"strconv"
	"strings"

	"folio/css"
)

// Content is the normalized text of the content property: "normal",
// "none" or a list of items. Items parses it on demand.
type Content string

const (
	ContentNormal Content = "normal"
	ContentNone   Content = "none"
)

func (c Content) String() string { return string(c) }

// Generates reports whether a ::before or ::after box is produced.
func (c Content) Generates() bool {
	return c != ContentNormal && c != ContentNone && c != ""
}

// ContentKind tags a ContentItem.
type ContentKind uint8

const (
	ContentString ContentKind = iota
	ContentAttr
	ContentCounter
	ContentCounters
	ContentOpenQuote
	ContentCloseQuote
	ContentURL
)

// ContentItem is one component of a content list. Name is the attribute or
// counter name, Text the literal string, separator or URL, Style the
// counter style.
type ContentItem struct {
	Kind  ContentKind
	Text  string
	Name  string
	Style string
}

// Items parses the content list. It returns nil for normal and none.
func (c Content) Items() []ContentItem {
	if !c.Generates() {
		return nil
	}
	items, _ := parseContentItems(css.TokenizeString(string(c)))
	return items
}

func parseContentItems(toks []css.Token) ([]ContentItem, error) {
	var items []ContentItem
	toks = css.Compact(toks)
	for i := 0; i < len(toks); {
		t := toks[i]
		switch {
		case t.Kind == css.String:
			items = append(items, ContentItem{Kind: ContentString, Text: t.Unquoted()})
			i++
		case t.Kind == css.URL:
			items = append(items, ContentItem{Kind: ContentURL, Text: t.URLValue()})
			i++
		case t.IsIdent("open-quote"):
			items = append(items, ContentItem{Kind: ContentOpenQuote})
			i++
		case t.IsIdent("close-quote"):
			items = append(items, ContentItem{Kind: ContentCloseQuote})
			i++
		case t.IsIdent("no-open-quote"), t.IsIdent("no-close-quote"):
			i++
		case t.Kind == css.Function:
			args, next := funcArgs(toks, i)
			item, err := contentFunction(t.FuncName(), css.SplitTopLevel(args, css.Comma))
			if err != nil {
				return nil, err
			}
			items = append(items, item)
			i = next
		default:
			return nil, fmt.Errorf("unexpected %q in content", t.Text)
		}
	}
	if len(items) == 0 {
		return nil, errInvalid
	}
	return items, nil
}

func contentFunction(name string, args [][]css.Token) (ContentItem, error) {
	ident := func(i int) (string, bool) {
		if i >= len(args) {
			return "", false
		}
		a := css.Compact(args[i])
		if len(a) != 1 || a[0].Kind != css.Ident {
			return "", false
		}
		return a[0].Text, true
	}
	switch name {
	case "attr":
		n, ok := ident(0)
		if !ok || len(args) != 1 {
			return ContentItem{}, errInvalid
		}
		return ContentItem{Kind: ContentAttr, Name: n}, nil
	case "counter":
		n, ok := ident(0)
		if !ok || len(args) > 2 {
			return ContentItem{}, errInvalid
		}
		item := ContentItem{Kind: ContentCounter, Name: n, Style: "decimal"}
		if len(args) == 2 {
			if item.Style, ok = ident(1); !ok {
				return ContentItem{}, errInvalid
			}
		}
		return item, nil
	case "counters":
		n, ok := ident(0)
		if !ok || len(args) < 2 || len(args) > 3 {
			return ContentItem{}, errInvalid
		}
		sep := css.Compact(args[1])
		if len(sep) != 1 || sep[0].Kind != css.String {
			return ContentItem{}, errInvalid
		}
		item := ContentItem{Kind: ContentCounters, Name: n, Text: sep[0].Unquoted(), Style: "decimal"}
		if len(args) == 3 {
			if item.Style, ok = ident(2); !ok {
				return ContentItem{}, errInvalid
			}
		}
		return item, nil
	}
	return ContentItem{}, fmt.Errorf("unsupported content function %s()", name)
}

func parseContent(toks []css.Token) (Content, error) {
	if t, err := single(toks); err == nil && t.Kind == css.Ident {
		switch {
		case t.IsIdent("normal"):
			return ContentNormal, nil
		case t.IsIdent("none"):
			return ContentNone, nil
		}
	}
	if _, err := parseContentItems(toks); err != nil {
		return "", err
	}
	return Content(css.Normalize(toks)), nil
}

// Counters is the normalized value of counter-reset or counter-increment.
type Counters string

func (c Counters) String() string {
	if c == "" {
		return "none"
	}
	return strings.ReplaceAll(string(c), ":", " ")
}

// CounterChange is a counter name with the value it is reset to or
// incremented by.
type CounterChange struct {
	Name  string
	Value int
}

// Changes returns the counters in order.
func (c Counters) Changes() []CounterChange {
	var out []CounterChange
	for _, f := range strings.Fields(string(c)) {
		name, v, _ := strings.Cut(f, ":")
		n, _ := strconv.Atoi(v)
		out = append(out, CounterChange{Name: name, Value: n})
	}
	return out
}

func parseCounters(def int) func([]css.Token) (Counters, error) {
	return func(toks []css.Token) (Counters, error) {
		toks = css.Compact(toks)
		if len(toks) == 1 && toks[0].IsIdent("none") {
			return "", nil
		}
		var parts []string
		for i := 0; i < len(toks); i++ {
			if toks[i].Kind != css.Ident {
				return "", errInvalid
			}
			name, v := toks[i].Text, def
			if i+1 < len(toks) && toks[i+1].Kind == css.Number {
				n, err := strconv.Atoi(toks[i+1].Text)
				if err != nil {
					return "", errInvalid
				}
				v = n
				i++
			}
			parts = append(parts, name+":"+strconv.Itoa(v))
		}
		if len(parts) == 0 {
			return "", errInvalid
		}
		return Counters(strings.Join(parts, " ")), nil
	}
}
