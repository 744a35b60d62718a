package gazetteer

import (
	"strings"

	"golang.org/x/text/cases"
)

type folded struct {
	name, typ, location string
}

// 文档注释：单位名录
// 背景：数百条规模，线性扫描即可；加载时预先做 Unicode 大小写折叠，查询期只折叠查询串。
// 约束：构造后只读，可在多个会话间无锁共享。
type Gazetteer struct {
	entries []Entry
	folded  []folded
}

func New(entries []Entry) *Gazetteer {
	g := &Gazetteer{entries: entries, folded: make([]folded, len(entries))}
	for i, e := range entries {
		g.folded[i] = folded{name: fold(e.Name), typ: fold(e.Type), location: fold(e.LocationName)}
	}
	return g
}

// cases.Caser 有状态，不可跨 goroutine 共享，每次新建
func fold(s string) string { return cases.Fold().String(s) }

func (g *Gazetteer) Len() int { return len(g.entries) }

func (g *Gazetteer) Entries() []Entry { return append([]Entry(nil), g.entries...) }

func (g *Gazetteer) LocatedCount() int {
	n := 0
	for _, e := range g.entries {
		if e.HasLocation() {
			n++
		}
	}
	return n
}

// 文档注释：按列表顺序返回首个匹配条目
// 背景：名称、类型、地点三个字段任一包含查询子串即命中，大小写不敏感。
// 约束：查询为空或全空白时直接返回未命中；无坐标条目同样可能命中，是否可导航由调用方判断。
func (g *Gazetteer) FindFirstMatch(query string) (*Entry, bool) {
	q := strings.TrimSpace(query)
	if q == "" {
		return nil, false
	}
	q = fold(q)
	for i, f := range g.folded {
		if strings.Contains(f.name, q) || strings.Contains(f.typ, q) || strings.Contains(f.location, q) {
			e := g.entries[i]
			return &e, true
		}
	}
	return nil, false
}

// 文档注释：按来源与类别筛选可渲染条目
// 约束：仅返回有坐标的条目；source 为 ALL 或空表示不限，category 为 ALL 或空表示不限。
func (g *Gazetteer) Filter(source Source, category string) []Entry {
	var out []Entry
	for _, e := range g.entries {
		if !e.HasLocation() {
			continue
		}
		if Matches(e, source, category) {
			out = append(out, e)
		}
	}
	return out
}

// Matches：条目是否满足来源/类别筛选
func Matches(e Entry, source Source, category string) bool {
	if source != "" && source != SourceAll && e.Source != source {
		return false
	}
	if category != "" && category != CategoryAll && e.Category().Name != category {
		return false
	}
	return true
}
