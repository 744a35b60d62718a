// 包 routes：走廊路线的静态定义（构建期确定，运行期只读）
package routes

import "github.com/paulmach/orb"

type Color string

const (
	Red     Color = "RED"
	Cyan    Color = "CYAN"
	Yellow  Color = "YELLOW"
	Lime    Color = "LIME"
	Magenta Color = "MAGENTA"
	Orange  Color = "ORANGE"
	Green   Color = "GREEN"
)

// CSS：渲染端使用的颜色值；未知颜色为白色
func (c Color) CSS() string {
	switch c {
	case Red:
		return "#FF3333"
	case Cyan:
		return "#00FFFF"
	case Yellow:
		return "#FFFF00"
	case Lime, Green:
		return "#00FF00"
	case Magenta:
		return "#FF00FF"
	case Orange:
		return "#FFA500"
	}
	return "#FFFFFF"
}

// 文档注释：命名折线路线
// 约束：Labels 与 Path 按下标对齐，空串表示该顶点无标注；定义不可变，按组或按 ID 显隐。
type Definition struct {
	ID         string
	Name       string
	Path       orb.LineString
	Labels     []string
	Color      Color
	LineWidth  int
	ShowLabels bool
}

// LabelAt：返回顶点 i 的标注；越界或空串返回 ""
func (d Definition) LabelAt(i int) string {
	if i < 0 || i >= len(d.Labels) {
		return ""
	}
	return d.Labels[i]
}

// Info：图例条目
type Info struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color Color  `json:"color"`
	CSS   string `json:"css"`
}

// Catalog：按固定顺序保存的路线集合
type Catalog struct {
	order []string
	defs  map[string]Definition
}

func NewCatalog(defs ...Definition) *Catalog {
	c := &Catalog{defs: make(map[string]Definition, len(defs))}
	for _, d := range defs {
		if _, dup := c.defs[d.ID]; !dup {
			c.order = append(c.order, d.ID)
		}
		c.defs[d.ID] = d
	}
	return c
}

func (c *Catalog) Get(id string) (Definition, bool) {
	d, ok := c.defs[id]
	return d, ok
}

// IDs：全部路线 ID，保持定义顺序
func (c *Catalog) IDs() []string { return append([]string(nil), c.order...) }

func (c *Catalog) Legend() []Info {
	out := make([]Info, 0, len(c.order))
	for _, id := range c.order {
		d := c.defs[id]
		out = append(out, Info{ID: d.ID, Name: d.Name, Color: d.Color, CSS: d.Color.CSS()})
	}
	return out
}
