package routes

import (
	"github.com/paulmach/orb"

	"globe-nav/internal/geo"
)

// SpecialRouteKeyword：触发走廊特例的保留查询词（小写比较）
const SpecialRouteKeyword = "cpec"

const SpecialRouteName = "China-Pakistan Economic Corridor (CPEC)"

// 特例结果的中心点（总览视角）
var OverviewCenter = geo.Pt(32, 70)

// 文档注释：走廊关键航点
// 背景：特例查询的包围盒由这些航点计算，必须恰好包住全部航点。orb 点序为 {经度, 纬度}。
var Waypoints = orb.MultiPoint{
	{62.3225, 25.1264}, // Gwadar Port
	{66.5, 28.9},       // Quetta
	{73.0479, 33.6844}, // Islamabad
	{74.3089, 35.9208}, // Gilgit
	{75.1, 36.85},      // Khunjerab Pass
	{75.9938, 39.4677}, // Kashgar
}

// WaypointBBox：航点紧包围盒
func WaypointBBox() geo.BBox { return geo.BBox(Waypoints.Bound()) }

// path：按 {lat, lon} 书写顶点，转换为 orb 折线（X 为经度）
func path(pts ...[2]float64) orb.LineString {
	out := make(orb.LineString, len(pts))
	for i, p := range pts {
		out[i] = orb.Point{p[1], p[0]}
	}
	return out
}

var mainPath = path(
	[2]float64{25.1264, 62.3225}, [2]float64{25.4, 63.8}, [2]float64{26.2, 65.5}, [2]float64{27.0, 66.0},
	[2]float64{27.8, 66.6}, [2]float64{29.0, 66.5}, [2]float64{30.18, 66.99}, [2]float64{30.5, 68.5},
	[2]float64{31.4, 70.3}, [2]float64{32.1, 71.5}, [2]float64{32.5, 72.3}, [2]float64{33.6, 73.05},
	[2]float64{34.0, 73.2}, [2]float64{34.8, 72.8}, [2]float64{35.2, 73.2}, [2]float64{35.5, 74.5},
	[2]float64{35.8, 74.6}, [2]float64{35.92, 74.31}, [2]float64{36.3, 74.8}, [2]float64{36.6, 75.0},
	[2]float64{36.85, 75.42}, [2]float64{37.5, 75.5}, [2]float64{38.5, 75.7}, [2]float64{39.47, 75.99},
)

var mainLabels = []string{
	"Gwadar Port", "", "", "", "", "", "Quetta", "", "", "", "", "Islamabad",
	"", "", "", "", "", "Gilgit", "", "", "Khunjerab Pass", "", "", "Kashgar",
}

// Corridor：默认路线目录（主线、东线、西线、中线、北线）
func Corridor() *Catalog {
	return NewCatalog(
		Definition{
			ID: "main", Name: "Main CPEC Corridor", Path: mainPath, Labels: mainLabels,
			Color: Red, LineWidth: 5, ShowLabels: true,
		},
		Definition{
			ID: "eastern", Name: "Eastern Route",
			Path: path([2]float64{25.1264, 62.3225}, [2]float64{24.86, 67.01}, [2]float64{25.37, 68.37}, [2]float64{27.71, 68.86},
				[2]float64{29.38, 71.68}, [2]float64{31.55, 74.34}, [2]float64{32.08, 74.19}, [2]float64{33.6, 73.05}),
			Labels: []string{"Gwadar", "Karachi", "Hyderabad", "Sukkur", "Multan", "Lahore", "", "Islamabad"},
			Color:  Cyan, LineWidth: 3,
		},
		Definition{
			ID: "western", Name: "Western Route",
			Path: path([2]float64{25.1264, 62.3225}, [2]float64{26.23, 63.04}, [2]float64{27.0, 66.0}, [2]float64{30.18, 66.99},
				[2]float64{31.83, 70.9}, [2]float64{32.33, 71.18}, [2]float64{33.6, 73.05}),
			Labels: []string{"Gwadar", "Turbat", "Khuzdar", "Quetta", "Zhob", "D.I. Khan", "Islamabad"},
			Color:  Yellow, LineWidth: 3,
		},
		Definition{
			ID: "central", Name: "Central Route",
			Path: path([2]float64{25.1264, 62.3225}, [2]float64{24.86, 67.01}, [2]float64{27.71, 68.86}, [2]float64{30.2, 71.47},
				[2]float64{31.42, 73.08}, [2]float64{32.08, 72.67}, [2]float64{33.6, 73.05}),
			Labels: []string{"Gwadar", "Karachi", "Sukkur", "Bahawalpur", "Faisalabad", "Sargodha", "Islamabad"},
			Color:  Lime, LineWidth: 3,
		},
		Definition{
			ID: "northern", Name: "Northern Route",
			Path: path([2]float64{33.6, 73.05}, [2]float64{34.0, 73.2}, [2]float64{34.77, 72.36}, [2]float64{35.51, 72.99},
				[2]float64{35.33, 74.65}, [2]float64{35.92, 74.31}, [2]float64{36.31, 74.65}, [2]float64{36.85, 75.42}, [2]float64{39.47, 75.99}),
			Labels: []string{"Islamabad", "Abbottabad", "Mansehra", "Besham", "Chilas", "Gilgit", "Hunza", "Khunjerab", "Kashgar"},
			Color:  Magenta, LineWidth: 3,
		},
	)
}
