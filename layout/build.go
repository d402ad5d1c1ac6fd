package layout

import (
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/language"

	"folio/dom"
	"folio/images"
	"folio/style"
	"folio/text"
)

// part is one entry of the content collected for a container: a
// block-level box or an inline item.
type part struct {
	box  *Box
	item *InlineItem
}

// counterState implements counter scoping: values holds the instances of
// each counter, scopes the counters created at each sibling level.
type counterState struct {
	values map[string][]int
	scopes []map[string]bool
}

func newCounterState() *counterState {
	return &counterState{values: make(map[string][]int), scopes: []map[string]bool{{}}}
}

func (cs *counterState) reset(name string, v int) {
	scope := cs.scopes[len(cs.scopes)-1]
	if scope[name] {
		vals := cs.values[name]
		vals[len(vals)-1] = v
		return
	}
	scope[name] = true
	cs.values[name] = append(cs.values[name], v)
}

func (cs *counterState) increment(name string, by int) {
	vals := cs.values[name]
	if len(vals) == 0 {
		cs.reset(name, 0)
		vals = cs.values[name]
	}
	vals[len(vals)-1] += by
}

func (cs *counterState) apply(sv *style.SpecifiedValues, listItem bool) {
	g := sv.Generated.Get()
	for _, c := range g.CounterReset.Changes() {
		cs.reset(c.Name, c.Value)
	}
	incremented := false
	for _, c := range g.CounterIncrement.Changes() {
		cs.increment(c.Name, c.Value)
		incremented = incremented || c.Name == "list-item"
	}
	if listItem && !incremented {
		cs.increment("list-item", 1)
	}
}

func (cs *counterState) push() { cs.scopes = append(cs.scopes, map[string]bool{}) }

func (cs *counterState) pop() {
	scope := cs.scopes[len(cs.scopes)-1]
	cs.scopes = cs.scopes[:len(cs.scopes)-1]
	for name := range scope {
		vals := cs.values[name]
		cs.values[name] = vals[:len(vals)-1]
	}
}

func (cs *counterState) value(name string) int {
	if vals := cs.values[name]; len(vals) > 0 {
		return vals[len(vals)-1]
	}
	return 0
}

func (cs *counterState) all(name string) []int {
	if vals := cs.values[name]; len(vals) > 0 {
		return vals
	}
	return []int{0}
}

// builder holds the state of one box tree construction.
type builder struct {
	*Context
	counters *counterState
	quotes   int
	// the inline content collected so far ends with a collapsible space
	afterSpace bool
}

// Build generates the box tree of a styled document. root is a document or
// an element; its styles must have been computed. It returns nil when the
// root element generates no box.
func (c *Context) Build(root *dom.Node) *Box {
	el := root
	if root.Type == dom.DocumentNode {
		el = root.DocumentElement()
	}
	cs := style.Of(el)
	if el == nil || cs == nil || cs.Values.Box.Get().Display == style.DisplayNone {
		return nil
	}
	b := &builder{Context: c, counters: newCounterState()}
	sv := cs.Values
	sv = style.WithDisplay(sv, sv.Box.Get().Display.Blockify())
	box := b.elementBox(el, sv, cs)
	c.log.Debug("Box tree built", zap.String("root", box.Name()))
	return box
}

// elementBox builds the box of an element that generates one: a replaced
// box, an svg box or a container.
func (b *builder) elementBox(el *dom.Node, sv *style.SpecifiedValues, cs *style.Computed) *Box {
	b.counters.apply(sv, sv.Box.Get().Display == style.DisplayListItem)
	if box := b.replaced(el, sv); box != nil {
		return box
	}
	box := NewBox(sv, el)
	b.counters.push()
	parts := b.contents(el, sv, cs)
	b.counters.pop()
	b.fill(box, parts)
	return box
}

// contents collects the parts of an element: the list marker, ::before,
// the children and ::after.
func (b *builder) contents(el *dom.Node, sv *style.SpecifiedValues, cs *style.Computed) []part {
	var parts []part
	if sv.Box.Get().Display == style.DisplayListItem {
		if m := b.marker(sv); m != "" {
			b.afterSpace = false
			parts = append(parts, part{item: &InlineItem{Kind: ItemText, Text: m, Values: sv}})
		}
	}
	parts = append(parts, b.pseudo(el, cs.Before, "before")...)
	for ch := range el.Children() {
		parts = append(parts, b.node(ch, sv)...)
	}
	parts = append(parts, b.pseudo(el, cs.After, "after")...)
	return parts
}

// node turns a child node into parts of its parent's content.
func (b *builder) node(n *dom.Node, parent *style.SpecifiedValues) []part {
	switch n.Type {
	case dom.TextNode:
		if it := b.text(n.Data, parent, n.Parent); it != nil {
			return []part{{item: it}}
		}
		return nil
	case dom.ElementNode:
	default:
		return nil
	}

	cs := style.Of(n)
	if cs == nil {
		return nil
	}
	sv := cs.Values
	bx := sv.Box.Get()
	switch {
	case bx.Display == style.DisplayNone,
		bx.Display == style.DisplayTableColumn, bx.Display == style.DisplayTableColumnGroup:
		return nil
	case bx.Display == style.DisplayContents:
		b.counters.apply(sv, false)
		b.counters.push()
		defer b.counters.pop()
		return b.contents(n, sv, cs)
	case n.IsHTMLElement("br"):
		b.afterSpace = true
		return []part{{item: &InlineItem{Kind: ItemBreak, Values: sv}}}
	}

	if parent.Box.Get().Display == style.DisplayFlex || parent.Box.Get().Display == style.DisplayInlineFlex ||
		parent.Box.Get().Display == style.DisplayGrid || parent.Box.Get().Display == style.DisplayInlineGrid {
		sv = style.WithDisplay(sv, bx.Display.Blockify())
	}
	probe := &Box{Values: sv}
	if probe.IsInlineLevel() && bx.Display == style.DisplayInline {
		if box := b.replaced(n, sv); box != nil {
			b.counters.apply(sv, false)
			b.afterSpace = false
			return []part{{item: &InlineItem{Kind: ItemAtomic, Values: sv, Box: box}}}
		}
		// inline boxes contribute their content to the parent
		b.counters.apply(sv, false)
		b.counters.push()
		defer b.counters.pop()
		return b.contents(n, sv, cs)
	}

	b.afterSpace = true
	box := b.elementBox(n, sv, cs)
	if probe.IsInlineLevel() {
		b.afterSpace = false
		return []part{{item: &InlineItem{Kind: ItemAtomic, Values: sv, Box: box}}}
	}
	// text after a block starts a new line, its leading spaces collapse
	b.afterSpace = true
	return []part{{box: box}}
}

// text processes a text node styled with sv.
func (b *builder) text(data string, sv *style.SpecifiedValues, el *dom.Node) *InlineItem {
	tx := sv.Text.Get()
	lang := language.Make(el.Lang())
	s := text.Transform(data, string(tx.Transform), lang)
	s = text.ApplyHyphens(s, string(tx.Hyphens), b.hyphens.For(lang))
	s = text.Collapse(s, tx.WhiteSpace, b.afterSpace)
	if s == "" {
		return nil
	}
	if tx.WhiteSpace.Collapses() {
		b.afterSpace = text.EndsWithSpace(s)
	} else {
		b.afterSpace = false
	}
	return &InlineItem{Kind: ItemText, Text: s, Values: sv}
}

// pseudo builds the generated content of ::before or ::after.
func (b *builder) pseudo(el *dom.Node, sv *style.SpecifiedValues, name string) []part {
	if sv == nil {
		return nil
	}
	b.counters.apply(sv, false)
	var (
		parts []part
		str   strings.Builder
	)
	flush := func() {
		if str.Len() > 0 {
			s := text.Collapse(str.String(), sv.Text.Get().WhiteSpace, b.afterSpace)
			if s != "" {
				parts = append(parts, part{item: &InlineItem{Kind: ItemText, Text: s, Values: sv}})
				b.afterSpace = sv.Text.Get().WhiteSpace.Collapses() && text.EndsWithSpace(s)
			}
			str.Reset()
		}
	}
	for _, it := range sv.Generated.Get().Content.Items() {
		switch it.Kind {
		case style.ContentString:
			str.WriteString(it.Text)
		case style.ContentAttr:
			v, _ := el.Attr(it.Name)
			str.WriteString(v)
		case style.ContentCounter:
			str.WriteString(FormatCounter(b.counters.value(it.Name), it.Style))
		case style.ContentCounters:
			vals := b.counters.all(it.Name)
			for i, v := range vals {
				if i > 0 {
					str.WriteString(it.Text)
				}
				str.WriteString(FormatCounter(v, it.Style))
			}
		case style.ContentOpenQuote:
			str.WriteString(quote(b.quotes, true))
			b.quotes++
		case style.ContentCloseQuote:
			if b.quotes > 0 {
				b.quotes--
			}
			str.WriteString(quote(b.quotes, false))
		case style.ContentURL:
			flush()
			img := &Box{Values: style.Anonymous(sv, style.DisplayInline), Pseudo: name, Content: b.image(it.Text, "")}
			parts = append(parts, part{item: &InlineItem{Kind: ItemAtomic, Values: img.Values, Box: img}})
		}
	}
	flush()

	probe := &Box{Values: sv}
	if probe.IsInlineLevel() && sv.Box.Get().Display == style.DisplayInline {
		return parts
	}
	box := NewBox(sv, el)
	box.Pseudo = name
	b.fill(box, parts)
	if probe.IsInlineLevel() {
		return []part{{item: &InlineItem{Kind: ItemAtomic, Values: sv, Box: box}}}
	}
	return []part{{box: box}}
}

func quote(depth int, open bool) string {
	switch {
	case depth == 0 && open:
		return "“"
	case depth == 0:
		return "”"
	case open:
		return "‘"
	}
	return "’"
}

// marker returns the text of an inside list marker.
func (b *builder) marker(sv *style.SpecifiedValues) string {
	typ := string(sv.Text.Get().ListStyleType)
	switch typ {
	case "none":
		return ""
	case "disc", "circle", "square":
		return FormatCounter(0, typ) + " "
	}
	return FormatCounter(b.counters.value("list-item"), typ) + ". "
}

// image returns replaced content for an image URL.
func (b *builder) image(url, alt string) *Replaced {
	rep := &Replaced{URL: url, Alt: alt}
	if b.images != nil && url != "" {
		if in, ok := b.images.Intrinsic(url); ok {
			rep.Intrinsic = in
		} else {
			b.log.Warn("Unable to load image", zap.String("url", url))
		}
	}
	return rep
}

// replaced returns the box of a replaced element or nil.
func (b *builder) replaced(el *dom.Node, sv *style.SpecifiedValues) *Box {
	var rep *Replaced
	switch {
	case el.IsHTMLElement("img"):
		src, _ := el.Attr("src")
		alt, _ := el.Attr("alt")
		rep = b.image(src, alt)
	case el.IsHTMLElement("object"):
		data, ok := el.Attr("data")
		if !ok {
			return nil
		}
		rep = b.image(data, "")
	case el.IsHTMLElement("embed"):
		src, _ := el.Attr("src")
		rep = b.image(src, "")
	case el.Is(dom.SVGNamespace, "svg") && (el.Parent == nil || el.Parent.Namespace != dom.SVGNamespace):
		w, _ := el.Attr("width")
		h, _ := el.Attr("height")
		var vbW, vbH float64
		if v, ok := el.Attr("viewBox"); ok {
			vbW, vbH, _ = images.ParseViewBox(v)
		}
		rep = &Replaced{Intrinsic: images.SVGIntrinsic(w, h, vbW, vbH), Svg: b.svgGroup(el)}
		rep.Intrinsic.Kind = "svg"
	default:
		return nil
	}
	return &Box{Values: sv, Origin: el, Content: rep}
}

// svgContainers hold other svg elements.
var svgContainers = map[string]bool{"g": true, "a": true, "svg": true, "switch": true}

// svgGroup builds boxes for the rendered children of an svg container.
func (b *builder) svgGroup(el *dom.Node) *SvgGroup {
	g := &SvgGroup{}
	for ch := range el.Children() {
		cs := style.Of(ch)
		if ch.Type != dom.ElementNode || ch.Namespace != dom.SVGNamespace || cs == nil ||
			cs.Values.Box.Get().Display == style.DisplayNone {
			continue
		}
		box := NewBox(cs.Values, ch)
		if svgContainers[ch.Name] {
			box.Content = b.svgGroup(ch)
		}
		g.Children = append(g.Children, box)
		box.owned = true
	}
	return g
}

// fill adds the collected parts to box. Inline runs next to block-level
// boxes are wrapped in anonymous blocks; white space only runs between
// blocks are dropped. Table and flex containers wrap what does not fit
// their content model.
func (b *builder) fill(box *Box, parts []part) {
	d := box.display()
	hasBlocks := false
	for _, p := range parts {
		if p.box != nil {
			hasBlocks = true
			break
		}
	}
	switch {
	case d == style.DisplayFlex || d == style.DisplayInlineFlex || d == style.DisplayGrid || d == style.DisplayInlineGrid:
		b.wrapRuns(box, parts, style.DisplayBlock)
	case d == style.DisplayTableRow:
		b.wrapRuns(box, parts, style.DisplayTableCell)
	case d == style.DisplayTable || d == style.DisplayInlineTable || d == style.DisplayTableRowGroup ||
		d == style.DisplayTableHeaderGroup || d == style.DisplayTableFooterGroup:
		b.tableRows(box, parts)
	case !hasBlocks:
		for _, p := range parts {
			box.AddInline(*p.item)
		}
	default:
		b.wrapRuns(box, parts, style.DisplayBlock)
	}
}

// wrapRuns adds boxes as children and wraps each inline run into an
// anonymous box with the given display.
func (b *builder) wrapRuns(box *Box, parts []part, display style.Display) {
	var run []part
	flush := func() {
		if len(run) > 0 && !blankRun(run) {
			anon := NewBox(style.Anonymous(box.Values, display), nil)
			for _, p := range run {
				anon.AddInline(*p.item)
			}
			box.Add(anon)
		}
		run = run[:0]
	}
	for _, p := range parts {
		if p.item != nil {
			run = append(run, p)
			continue
		}
		flush()
		box.Add(p.box)
	}
	flush()
}

// tableRows adds rows and row groups and wraps loose cells into anonymous
// rows.
func (b *builder) tableRows(box *Box, parts []part) {
	var loose []part
	flush := func() {
		if len(loose) == 0 || blankRun(loose) {
			loose = loose[:0]
			return
		}
		row := NewBox(style.Anonymous(box.Values, style.DisplayTableRow), nil)
		b.wrapRuns(row, loose, style.DisplayTableCell)
		box.Add(row)
		loose = loose[:0]
	}
	for _, p := range parts {
		if p.box != nil {
			switch p.box.display() {
			case style.DisplayTableRow, style.DisplayTableRowGroup, style.DisplayTableHeaderGroup,
				style.DisplayTableFooterGroup, style.DisplayTableCaption:
				flush()
				box.Add(p.box)
				continue
			}
			if p.box.IsPositioned() {
				flush()
				box.Add(p.box)
				continue
			}
		}
		loose = append(loose, p)
	}
	flush()
}

// blankRun reports inline runs made only of collapsible white space.
func blankRun(run []part) bool {
	for _, p := range run {
		it := p.item
		if it == nil || it.Kind != ItemText || strings.TrimSpace(it.Text) != "" || !it.Values.Text.Get().WhiteSpace.Collapses() {
			return false
		}
	}
	return true
}

var romanNumerals = []struct {
	v int
	s string
}{
	{1000, "m"}, {900, "cm"}, {500, "d"}, {400, "cd"}, {100, "c"}, {90, "xc"},
	{50, "l"}, {40, "xl"}, {10, "x"}, {9, "ix"}, {5, "v"}, {4, "iv"}, {1, "i"},
}

// FormatCounter renders a counter value in a list-style-type counter style.
// Unknown styles render as decimal.
func FormatCounter(v int, typ string) string {
	switch typ {
	case "none":
		return ""
	case "disc":
		return "•"
	case "circle":
		return "◦"
	case "square":
		return "▪"
	case "decimal-leading-zero":
		if v >= 0 && v < 10 {
			return "0" + strconv.Itoa(v)
		}
	case "lower-roman", "upper-roman":
		if v > 0 && v < 4000 {
			var sb strings.Builder
			for _, r := range romanNumerals {
				for v >= r.v {
					sb.WriteString(r.s)
					v -= r.v
				}
			}
			if typ == "upper-roman" {
				return strings.ToUpper(sb.String())
			}
			return sb.String()
		}
	case "lower-alpha", "lower-latin", "upper-alpha", "upper-latin":
		if v > 0 {
			s := alphabetic(v, 'a', 26)
			if typ == "upper-alpha" || typ == "upper-latin" {
				return strings.ToUpper(s)
			}
			return s
		}
	case "lower-greek":
		if v > 0 {
			return alphabetic(v, 'α', 24)
		}
	}
	return strconv.Itoa(v)
}

// alphabetic renders v in a bijective base-n system starting at first.
func alphabetic(v int, first rune, n int) string {
	var out []rune
	for v > 0 {
		v--
		r := first + rune(v%n)
		// skip final sigma
		if first == 'α' && r >= 'ς' {
			r++
		}
		out = append([]rune{r}, out...)
		v /= n
	}
	return string(out)
}
