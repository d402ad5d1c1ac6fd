package layout

// runTableRow lays out the cells of a table row side by side with equal
// widths. All cells get the height of the tallest one. Rows are monolithic.
func (lc *flow) runTableRow(box *Box, x, y, width float64) inner {
	var cells, positioned []*Box
	for _, k := range box.Children() {
		if k.IsPositioned() {
			positioned = append(positioned, k)
			continue
		}
		cells = append(cells, k)
	}
	res := inner{complete: true}
	if len(cells) == 0 {
		return res
	}
	cellW := width / float64(len(cells))

	outs := make([]Output, len(cells))
	for i, c := range cells {
		in := Input{X: x + float64(i)*cellW, Y: y, Width: cellW, Height: -1}.forced()
		in.ForcedWidth = cellW - lc.margins(c.Values, cellW).Horizontal()
		outs[i] = lc.run(c, in)
		res.height = max(res.height, outs[i].Height+outs[i].Margin.Vertical())
	}
	if !lc.commit() {
		return res
	}

	var frags FragChildren
	for i, c := range cells {
		m := outs[i].Margin
		in := Input{X: x + float64(i)*cellW, Y: y + m.Top, Width: cellW, Height: -1}.forced()
		in.ForcedWidth = outs[i].Width
		in.ForcedHeight = max(res.height-m.Vertical(), 0)
		out := lc.run(c, in)
		if out.Baselines.Valid && !res.baselines.Valid {
			res.baselines = out.Baselines
		}
		frags = append(frags, out.Frag)
	}
	for _, p := range positioned {
		frags = append(frags, lc.runPositioned(p, x, y, y, width, res.height))
	}
	res.content = frags
	return res
}
