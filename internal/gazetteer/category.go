package gazetteer

import (
	"sort"
	"strings"
)

type Category struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

const CategoryAll = "ALL"

var categoryOther = Category{Name: "Other", Color: "#808080"}

// 按顺序匹配，先命中者生效
var categoryRules = []struct {
	keywords []string
	cat      Category
}{
	{[]string{"hq", "command"}, Category{"Headquarters", "#DAA520"}},
	{[]string{"group army", "corps", "strike"}, Category{"Corps / Army", "#DC143C"}},
	{[]string{"armoured", "tank"}, Category{"Armoured", "#FF8C00"}},
	{[]string{"artillery", "firepower"}, Category{"Artillery", "#00CED1"}},
	{[]string{"aviation", "air force"}, Category{"Aviation", "#9932CC"}},
	{[]string{"air defence", "defense"}, Category{"Air Defence", "#1E90FF"}},
	{[]string{"special"}, Category{"Special Forces", "#4B0082"}},
	{[]string{"infantry", "combined", "mountain"}, Category{"Infantry", "#228B22"}},
	{[]string{"border"}, Category{"Border Guard", "#006400"}},
	{[]string{"service", "support", "logistics"}, Category{"Support", "#696969"}},
	{[]string{"hospital", "medical"}, Category{"Medical", "#FF69B4"}},
}

// Categorize：按单位类型关键字归类，未命中为 Other
func Categorize(unitType string) Category {
	t := strings.ToLower(unitType)
	for _, r := range categoryRules {
		for _, k := range r.keywords {
			if strings.Contains(t, k) {
				return r.cat
			}
		}
	}
	return categoryOther
}

// Categories：名录中实际出现的类别，按名称排序
func (g *Gazetteer) Categories() []Category {
	seen := map[string]Category{}
	for _, e := range g.entries {
		c := e.Category()
		seen[c.Name] = c
	}
	out := make([]Category, 0, len(seen))
	for _, c := range seen {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
