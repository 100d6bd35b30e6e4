package layout

import (
	"encoding/json"
	"io"
	"os"
)

// EncodeJSON 以缩进格式输出布局结果，HTTP 接口与调试文件共用。
func EncodeJSON(w io.Writer, res *Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

// WriteDebugJSON 将布局结果写入文件，便于调试或可视化。
func WriteDebugJSON(res *Result, path string) error {
	if res == nil {
		return nil
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := EncodeJSON(f, res); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
