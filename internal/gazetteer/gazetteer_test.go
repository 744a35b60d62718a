package gazetteer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const armyJSON = `[
  {"name":"X Corps","type":"Corps HQ","locationName":"Rawalpindi","coordinates":{"lat":33.5973,"lon":73.0479}},
  {"name":"Unplaced Brigade","type":"Infantry Brigade","locationName":"Unknown","coordinates":{"lat":0,"lon":0}},
  {"name":"Lahore Garrison","type":"Armoured Division","locationName":"Lahore Cantt","coordinates":{"lat":"31.52","lon":"74.40"},
   "details":{"corps":"IV Corps","remarks":"garrison"}}
]`

const plaJSON = `[
  {"name":"Xinjiang Military District","type":"Military District Command","locationName":"Ürümqi","coordinates":{"lat":43.8256,"lon":87.6168}},
  {"name":"Hotan Regiment","type":"Border Defence Regiment","locationName":"Hotan","coordinates":{"lat":37.11,"lon":79.93}}
]`

func testGazetteer(t *testing.T) *Gazetteer {
	t.Helper()
	a, err := Decode([]byte(armyJSON), SourcePAK)
	require.NoError(t, err)
	b, err := Decode([]byte(plaJSON), SourceCHN)
	require.NoError(t, err)
	return New(append(a, b...))
}

func TestFindFirstMatch_AnyFieldInListOrder(t *testing.T) {
	g := testGazetteer(t)

	e, ok := g.FindFirstMatch("x corps")
	require.True(t, ok)
	assert.Equal(t, "X Corps", e.Name)
	assert.Equal(t, SourcePAK, e.Source)

	// 仅类型字段命中
	e, ok = g.FindFirstMatch("ARMOURED")
	require.True(t, ok)
	assert.Equal(t, "Lahore Garrison", e.Name)

	// 仅地点字段命中
	e, ok = g.FindFirstMatch("cantt")
	require.True(t, ok)
	assert.Equal(t, "Lahore Garrison", e.Name)

	// 多条命中时取列表中第一条
	e, ok = g.FindFirstMatch("command")
	require.True(t, ok)
	assert.Equal(t, "Xinjiang Military District", e.Name)
}

func TestFindFirstMatch_UnicodeFold(t *testing.T) {
	g := testGazetteer(t)
	e, ok := g.FindFirstMatch("ÜRÜMQI")
	require.True(t, ok)
	assert.Equal(t, SourceCHN, e.Source)
}

func TestFindFirstMatch_BlankAndMiss(t *testing.T) {
	g := testGazetteer(t)
	for _, q := range []string{"", "   ", "\t"} {
		_, ok := g.FindFirstMatch(q)
		assert.False(t, ok, "%q", q)
	}
	_, ok := g.FindFirstMatch("submarine")
	assert.False(t, ok)
}

func TestFindFirstMatch_ReturnsUnlocatedEntry(t *testing.T) {
	g := testGazetteer(t)

	e, ok := g.FindFirstMatch("brigade")
	require.True(t, ok)
	assert.Equal(t, "Unplaced Brigade", e.Name)
	assert.False(t, e.HasLocation())
}

func TestDecode_StringCoordinates(t *testing.T) {
	g := testGazetteer(t)
	e, ok := g.FindFirstMatch("lahore garrison")
	require.True(t, ok)
	assert.InDelta(t, 31.52, float64(e.Coordinates.Lat), 1e-9)
	require.NotNil(t, e.Details)
	assert.Equal(t, "IV Corps", e.Details.Corps)
}

func TestFilter_SourceAndCategory(t *testing.T) {
	g := testGazetteer(t)
	assert.Len(t, g.Filter(SourceAll, CategoryAll), 4)
	assert.Len(t, g.Filter(SourcePAK, ""), 2)
	assert.Len(t, g.Filter(SourceCHN, "Headquarters"), 1)
	assert.Empty(t, g.Filter(SourceCHN, "Medical"))
	assert.Equal(t, 4, g.LocatedCount())
	assert.Equal(t, 5, g.Len())
}

func TestCategorize(t *testing.T) {
	assert.Equal(t, "Headquarters", Categorize("Corps HQ").Name)
	assert.Equal(t, "Corps / Army", Categorize("Group Army").Name)
	assert.Equal(t, "Air Defence", Categorize("Air Defence Regiment").Name)
	assert.Equal(t, "Border Guard", Categorize("Border Regiment").Name)
	assert.Equal(t, "Other", Categorize("").Name)

	names := []string{}
	for _, c := range testGazetteer(t).Categories() {
		names = append(names, c.Name)
	}
	assert.IsIncreasing(t, names)
}

func TestFindSite(t *testing.T) {
	s, ok := FindSite("  Kirana Hills ")
	require.True(t, ok)
	assert.Equal(t, "Kirana Hills", s.Layer)
	_, ok = FindSite("kirana")
	assert.False(t, ok)
	assert.Len(t, Sites(), 2)
}

func TestLoad_ConcatenatesAThenB(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "army.json"), []byte(armyJSON), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pla.json"), []byte(plaJSON), 0o644))

	g, err := Load(dir)
	require.NoError(t, err)
	es := g.Entries()
	require.Len(t, es, 5)
	assert.Equal(t, SourcePAK, es[0].Source)
	assert.Equal(t, SourceCHN, es[4].Source)
}

func TestLoad_MissingFileIsEmptyDataset(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pla.json"), []byte(plaJSON), 0o644))
	g, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 2, g.Len())
}

func TestLoad_MalformedFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "army.json"), []byte(`{"name":1}`), 0o644))
	_, err := Load(dir)
	assert.Error(t, err)
}
