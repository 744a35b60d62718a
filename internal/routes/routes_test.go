package routes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"globe-nav/internal/geo"
)

func TestWaypointBBox_ExactExtremes(t *testing.T) {
	b := WaypointBBox()
	assert.Equal(t, geo.NewBBox(25.1264, 39.4677, 62.3225, 75.9938), b)
	assert.Len(t, Waypoints, 6)
	for _, p := range Waypoints {
		assert.True(t, b.Contains(geo.LatLon(p)))
	}
}

func TestCorridor_OrderAndLegend(t *testing.T) {
	c := Corridor()
	assert.Equal(t, []string{"main", "eastern", "western", "central", "northern"}, c.IDs())

	legend := c.Legend()
	require.Len(t, legend, 5)
	assert.Equal(t, "Main CPEC Corridor", legend[0].Name)
	assert.Equal(t, "#FF3333", legend[0].CSS)
	assert.Equal(t, "#FF00FF", legend[4].CSS)
}

func TestCorridor_LabelsAlignedWithPath(t *testing.T) {
	c := Corridor()
	for _, id := range c.IDs() {
		d, ok := c.Get(id)
		require.True(t, ok)
		assert.Len(t, d.Labels, len(d.Path), id)
	}
	main, _ := c.Get("main")
	assert.Equal(t, "Gwadar Port", main.LabelAt(0))
	assert.Equal(t, "", main.LabelAt(1))
	assert.Equal(t, "", main.LabelAt(99))
	assert.True(t, main.ShowLabels)
	assert.Equal(t, 5, main.LineWidth)
}

func TestNewCatalog_DuplicateKeepsFirstPosition(t *testing.T) {
	c := NewCatalog(Definition{ID: "a", Name: "A1"}, Definition{ID: "b"}, Definition{ID: "a", Name: "A2"})
	assert.Equal(t, []string{"a", "b"}, c.IDs())
	d, _ := c.Get("a")
	assert.Equal(t, "A2", d.Name)
}

func TestColorCSS_Unknown(t *testing.T) {
	assert.Equal(t, "#FFFFFF", Color("PURPLE").CSS())
}
