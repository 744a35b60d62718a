// 包 gazetteer：静态单位名录的加载与检索（启动时加载，运行期只读）
package gazetteer

import (
	"encoding/json"
	"strconv"
	"strings"

	"globe-nav/internal/geo"
)

// Source：条目来源数据集
type Source string

const (
	SourcePAK Source = "PAK"
	SourceCHN Source = "CHN"
	SourceAll Source = "ALL"
)

// 坐标值兼容数字与数字字符串两种写法
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		*f = 0
		return nil
	}
	*f = flexFloat(v)
	return nil
}

type Coordinates struct {
	Lat flexFloat `json:"lat"`
	Lon flexFloat `json:"lon"`
}

func (c Coordinates) LatLon() geo.LatLon { return geo.Pt(float64(c.Lat), float64(c.Lon)) }

func (c Coordinates) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.LatLon())
}

type Details struct {
	Corps     string `json:"corps,omitempty"`
	Division  string `json:"division,omitempty"`
	Remarks   string `json:"remarks,omitempty"`
	Reference string `json:"reference,omitempty"`
}

// 文档注释：名录条目
// 约束：坐标缺失或为零的条目保留在列表中，但不参与标记渲染与检索导航。
type Entry struct {
	Name         string      `json:"name"`
	Type         string      `json:"type"`
	LocationName string      `json:"locationName"`
	Coordinates  Coordinates `json:"coordinates"`
	Details      *Details    `json:"details,omitempty"`
	Source       Source      `json:"source"`
}

// HasLocation：经纬度均非零
func (e Entry) HasLocation() bool { return e.Coordinates.Lat != 0 && e.Coordinates.Lon != 0 }

func (e Entry) Category() Category { return Categorize(e.Type) }
