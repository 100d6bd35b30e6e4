package layout

// epsilon 吸收浮点累加误差，避免恰好填满时误判溢出。
const epsilon = 1e-9

type pageAccumulator struct {
	texts []TextBox
	lines []Line
}

func (p *pageAccumulator) appendText(tb TextBox) {
	p.texts = append(p.texts, tb)
}

func (p *pageAccumulator) appendLine(ln Line) {
	p.lines = append(p.lines, ln)
}

type pageCollector struct {
	width   float64
	height  float64
	margin  Margin
	accs    []*pageAccumulator
	current int
}

func newPageCollector(width, height float64, margin Margin) *pageCollector {
	pc := &pageCollector{
		width:  width,
		height: height,
		margin: margin,
	}
	pc.newPage()
	return pc
}

func (pc *pageCollector) newPage() *pageAccumulator {
	acc := &pageAccumulator{}
	pc.accs = append(pc.accs, acc)
	pc.current = len(pc.accs) - 1
	return acc
}

func (pc *pageCollector) curr() *pageAccumulator {
	return pc.accs[pc.current]
}

func (pc *pageCollector) contentTop() float64 {
	return pc.margin.Top
}

// contentBottom 为可放置内容的最低位置：页面高度减去下边距。
func (pc *pageCollector) contentBottom() float64 {
	return pc.height - pc.margin.Bottom
}

func (pc *pageCollector) pages() []Page {
	out := make([]Page, len(pc.accs))
	for i, acc := range pc.accs {
		out[i] = Page{
			Width:  pc.width,
			Height: pc.height,
			Margin: pc.margin,
			Texts:  acc.texts,
			Lines:  acc.lines,
		}
	}
	return out
}

// Cursor 跟踪当前页与纵向偏移（页面坐标，mm），在剩余空间不足时开新页。
// 每次排版运行独占一个 Cursor，页面一旦创建不会合并。
type Cursor struct {
	collector *pageCollector
	offset    float64
}

// NewCursor 创建一个停在首页上边距处的游标。
func NewCursor(width, height float64, margin Margin) *Cursor {
	pc := newPageCollector(width, height, margin)
	return &Cursor{collector: pc, offset: pc.contentTop()}
}

// Reserve 为高度为 height 的块预留位置并返回绘制偏移。
// 当前页放不下且不是空白新页时先开新页；超过整页可用高度的块放在新页顶部并允许越过下边距。
func (c *Cursor) Reserve(height float64) float64 {
	if c.overflows(height) && !c.fresh() {
		c.pageBreak()
	}
	y := c.offset
	c.offset += height
	return y
}

// Advance 推进偏移但不放置内容（段落/条目间距）。放不下时换页，间距在新页顶部被吸收。
func (c *Cursor) Advance(height float64) {
	if c.overflows(height) {
		if !c.fresh() {
			c.pageBreak()
		}
		return
	}
	c.offset += height
}

// KeepTogether 只做准入判断：height 放不下时换页，但不推进偏移。
func (c *Cursor) KeepTogether(height float64) {
	if c.overflows(height) && !c.fresh() {
		c.pageBreak()
	}
}

// Remaining 返回当前页剩余的可用高度。
func (c *Cursor) Remaining() float64 {
	return c.collector.contentBottom() - c.offset
}

// Offset 返回当前纵向偏移。
func (c *Cursor) Offset() float64 { return c.offset }

// PageIndex 返回当前页序号（从 0 开始）。
func (c *Cursor) PageIndex() int { return c.collector.current }

// Pages 返回目前为止的全部页面。
func (c *Cursor) Pages() []Page { return c.collector.pages() }

func (c *Cursor) acc() *pageAccumulator { return c.collector.curr() }

func (c *Cursor) overflows(height float64) bool {
	return c.offset+height > c.collector.contentBottom()+epsilon
}

// fresh 表示当前页尚未放置任何内容。
func (c *Cursor) fresh() bool {
	return c.offset <= c.collector.contentTop()+epsilon
}

func (c *Cursor) pageBreak() {
	c.collector.newPage()
	c.offset = c.collector.contentTop()
}
