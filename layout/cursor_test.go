package layout

import "testing"

func newTestCursor() *Cursor {
	return NewCursor(100, 100, Margin{Top: 10, Right: 10, Bottom: 10, Left: 10})
}

func TestCursorReserveBreaksPage(t *testing.T) {
	c := newTestCursor()
	if y := c.Reserve(50); y != 10 {
		t.Fatalf("首块应从上边距开始，实际 %g", y)
	}
	if y := c.Reserve(30); y != 60 {
		t.Fatalf("第二块偏移期望 60，实际 %g", y)
	}
	if c.Remaining() != 0 {
		t.Fatalf("恰好填满后剩余应为 0，实际 %g", c.Remaining())
	}
	if y := c.Reserve(1); y != 10 || c.PageIndex() != 1 {
		t.Fatalf("溢出后应在新页顶部放置: y=%g page=%d", y, c.PageIndex())
	}
	if got := len(c.Pages()); got != 2 {
		t.Fatalf("期望 2 页，实际 %d", got)
	}
}

func TestCursorOversizedBlockStaysOnFreshPage(t *testing.T) {
	c := newTestCursor()
	if y := c.Reserve(200); y != 10 || c.PageIndex() != 0 {
		t.Fatalf("空白页上的超高块不应再换页: y=%g page=%d", y, c.PageIndex())
	}
	c.Reserve(1)
	if c.PageIndex() != 1 {
		t.Fatalf("超高块之后应换页")
	}
}

func TestCursorAdvanceCollapsesAtBreak(t *testing.T) {
	c := newTestCursor()
	c.Advance(500)
	if c.Offset() != 10 || c.PageIndex() != 0 {
		t.Fatalf("空白页上的间距不应换页: offset=%g page=%d", c.Offset(), c.PageIndex())
	}
	c.Reserve(75)
	c.Advance(10)
	if c.Offset() != 10 || c.PageIndex() != 1 {
		t.Fatalf("放不下的间距应换页并被吸收: offset=%g page=%d", c.Offset(), c.PageIndex())
	}
	c.Advance(5)
	if c.Offset() != 15 {
		t.Fatalf("间距应推进偏移，实际 %g", c.Offset())
	}
}

func TestCursorKeepTogether(t *testing.T) {
	c := newTestCursor()
	c.Reserve(40)
	c.KeepTogether(30)
	if c.Offset() != 50 || c.PageIndex() != 0 {
		t.Fatalf("放得下时不应移动: offset=%g page=%d", c.Offset(), c.PageIndex())
	}
	c.KeepTogether(60)
	if c.Offset() != 10 || c.PageIndex() != 1 {
		t.Fatalf("放不下时应换页: offset=%g page=%d", c.Offset(), c.PageIndex())
	}
}
