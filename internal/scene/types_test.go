package scene

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDestination_JSONKeepsZeroCoordinates(t *testing.T) {
	pt := Destination{Kind: DestPoint, Lon: 0, Lat: 51.47, Height: 2000}
	raw, err := json.Marshal(pt)
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"point","lon":0,"lat":51.47,"height":2000}`, string(raw))

	var back Destination
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, pt, back)

	rect := Destination{Kind: DestRectangle, West: -3.5, South: 0, East: 0, North: 12}
	raw, err = json.Marshal(rect)
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"rectangle","west":-3.5,"south":0,"east":0,"north":12}`, string(raw))
	var backRect Destination
	require.NoError(t, json.Unmarshal(raw, &backRect))
	assert.Equal(t, rect, backRect)
}

func TestFlyTo_EquatorCommand(t *testing.T) {
	cmd := Command{Op: OpFlyTo, FlyTo: &FlyTo{FlightID: 3, Destination: Destination{Kind: DestPoint, Lon: 0, Lat: 0, Height: 50000}, Duration: 3, Easing: QuadraticInOut}}
	raw, err := json.Marshal(cmd)
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m))
	dest := m["flyTo"].(map[string]any)["destination"].(map[string]any)
	assert.Equal(t, 0.0, dest["lon"])
	assert.Equal(t, 0.0, dest["lat"])
}
