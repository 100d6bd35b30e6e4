package layout

import (
	"math"
	"testing"
)

// TestPtMmRoundTrip 验证 pt↔mm 换算的往返精度（允许极小的浮点误差）。
func TestPtMmRoundTrip(t *testing.T) {
	samples := []float64{0, 0.001, 1, 12, 14.4, 72, 96, 144, 1000}
	for _, pt := range samples {
		mm := pt * PtToMm
		back := mm * MmToPt
		if diff := math.Abs(back - pt); diff > 1e-9 {
			t.Fatalf("pt→mm→pt 往返误差过大: in=%gpt mm=%g back=%g diff=%g", pt, mm, back, diff)
		}
	}
}

// TestLengthConversions 覆盖 Length 在常见单位上的转换。
func TestLengthConversions(t *testing.T) {
	cases := []struct {
		in   Length
		want float64
	}{
		{Length{Value: 1, Unit: UnitIN}, 25.4},
		{Length{Value: 2.54, Unit: UnitCM}, 25.4},
		{Length{Value: 12, Unit: UnitPT}, 12 * PtToMm},
		{Length{Value: 7, Unit: UnitMM}, 7},
		{Length{Value: 3, Unit: UnitNone}, 3},
	}
	for _, c := range cases {
		if got := c.in.ToMM(); math.Abs(got-c.want) > 1e-9 {
			t.Fatalf("%g%s 转 mm 期望 %g，实际 %g", c.in.Value, c.in.Unit, c.want, got)
		}
	}
	if got := (Length{Value: 10, Unit: UnitMM}).ToPT(); math.Abs(got-10*MmToPt) > 1e-9 {
		t.Fatalf("10mm 转 pt 期望 %g，实际 %g", 10*MmToPt, got)
	}
}

func TestParseLength(t *testing.T) {
	l, err := ParseLength(" 18mm ")
	if err != nil || l.Unit != UnitMM || l.Value != 18 {
		t.Fatalf("解析 18mm 错误: %+v %v", l, err)
	}
	l, err = ParseLength("10.5pt")
	if err != nil || l.Unit != UnitPT || l.Value != 10.5 {
		t.Fatalf("解析 10.5pt 错误: %+v %v", l, err)
	}
	l, err = ParseLength("4")
	if err != nil || l.Unit != UnitNone {
		t.Fatalf("无单位数字应解析为 UnitNone: %+v %v", l, err)
	}
	for _, bad := range []string{"", "mm", "abc", "1.2.3cm"} {
		if _, err := ParseLength(bad); err == nil {
			t.Fatalf("期望 %q 解析失败", bad)
		}
	}
}

// TestLineHeightResolve 验证倍数与绝对值两种行高在 mm 下的解析结果。
func TestLineHeightResolve(t *testing.T) {
	size := 12 * PtToMm

	factor, err := ParseLineHeight("1.2x")
	if err != nil {
		t.Fatalf("解析 1.2x 失败: %v", err)
	}
	if got, want := factor.Resolve(size), size*1.2; math.Abs(got-want) > 1e-9 {
		t.Fatalf("1.2x 解析错误: got=%g want=%g", got, want)
	}

	abs, err := ParseLineHeight("18pt")
	if err != nil {
		t.Fatalf("解析 18pt 失败: %v", err)
	}
	if got, want := abs.Resolve(size), 18*PtToMm; math.Abs(got-want) > 1e-9 {
		t.Fatalf("18pt 行高解析错误: got=%g want=%g", got, want)
	}

	if _, err := ParseLineHeight("0x"); err == nil {
		t.Fatalf("0x 应当被拒绝")
	}
}
