package layout

// BuildOptions 配置布局阶段所需的依赖，例如排版后端与版式配置。
type BuildOptions struct {
	Typesetter Typesetter
	// Profile 为空时使用 DefaultProfile。
	Profile *Profile
}

// Typesetter 负责根据字体样式与宽度约束将文本拆成可绘制的行。
// 实现必须是纯函数：相同输入总是得到相同的行。
type Typesetter interface {
	LayoutLines(content string, style TextStyle, width float64) ([]TextLine, error)
}
