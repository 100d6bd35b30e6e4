package fonts

import "testing"

func TestLoadBuiltin(t *testing.T) {
	for _, name := range []string{"embed:lmroman10-regular", "lmroman10-bold", "embed:LMRoman10-Italic"} {
		data, err := Load(name)
		if err != nil {
			t.Fatalf("加载 %s 失败: %v", name, err)
		}
		if len(data) < 1024 {
			t.Fatalf("%s 字体数据过小: %d", name, len(data))
		}
	}
	if _, err := Load("embed:inter-regular"); err == nil {
		t.Fatalf("未知字体应报错")
	}
}
