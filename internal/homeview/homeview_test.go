package homeview

import (
	"errors"
	"net"
	"testing"

	"github.com/oschwald/geoip2-golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLocator struct {
	city *geoip2.City
	err  error
	seen []string
}

func (f *fakeLocator) City(ip net.IP) (*geoip2.City, error) {
	f.seen = append(f.seen, ip.String())
	return f.city, f.err
}

func lahore() *geoip2.City {
	c := &geoip2.City{}
	c.Location.Latitude = 31.5497
	c.Location.Longitude = 74.3436
	c.Country.IsoCode = "PK"
	return c
}

func TestFor_NoDatabaseIsDefault(t *testing.T) {
	r, err := Open("")
	require.NoError(t, err)
	assert.Equal(t, Default, r.For("39.44.1.2:5555"))
	assert.NoError(t, r.Close())

	var nilResolver *Resolver
	assert.Equal(t, Default, nilResolver.For("39.44.1.2"))
}

func TestFor_GeoIPCentre(t *testing.T) {
	f := &fakeLocator{city: lahore()}
	v := New(f).For("39.44.1.2:5555")

	assert.Equal(t, "geoip", v.Source)
	assert.Equal(t, "PK", v.Country)
	assert.Equal(t, 31.5497, v.Center.Lat())
	assert.Equal(t, DefaultHeight, v.Height)
	assert.Equal(t, []string{"39.44.1.2"}, f.seen)
}

func TestFor_FallsBackToDefault(t *testing.T) {
	cases := map[string]*fakeLocator{
		"lookup error":   {err: errors.New("not found")},
		"no coordinates": {city: &geoip2.City{}},
	}
	for name, f := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, Default, New(f).For("8.8.8.8"))
		})
	}

	f := &fakeLocator{city: lahore()}
	for _, addr := range []string{"127.0.0.1:80", "10.1.2.3", "[::1]:443", "not-an-ip", ""} {
		assert.Equal(t, Default, New(f).For(addr), addr)
	}
	assert.Empty(t, f.seen)
}

func TestOpen_MissingFile(t *testing.T) {
	_, err := Open("/nonexistent/GeoLite2-City.mmdb")
	assert.Error(t, err)
}
