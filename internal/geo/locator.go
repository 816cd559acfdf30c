// Package geo resolves client addresses to coarse locations for analytics.
package geo

import (
	"fmt"
	"net"

	"github.com/oschwald/geoip2-golang"
)

// Unknown is the placeholder for fields that could not be resolved.
const Unknown = "Unknown"

// Location is a coarse geographic position.
type Location struct {
	Country string
	City    string
}

// Locator maps an IP address to a Location. Implementations never fail:
// unresolvable input degrades to Unknown fields.
type Locator interface {
	Lookup(ip string) Location
}

// MaxMind is a Locator backed by a MaxMind GeoIP2/GeoLite2 city database.
type MaxMind struct {
	reader *geoip2.Reader
}

// OpenMaxMind opens the database at path.
func OpenMaxMind(path string) (*MaxMind, error) {
	reader, err := geoip2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open geoip database: %w", err)
	}

	return &MaxMind{reader: reader}, nil
}

func (m *MaxMind) Lookup(ip string) Location {
	loc := Location{Country: Unknown, City: Unknown}

	parsed := net.ParseIP(ip)
	if parsed == nil {
		return loc
	}

	record, err := m.reader.City(parsed)
	if err != nil {
		return loc
	}

	if record.Country.IsoCode != "" {
		loc.Country = record.Country.IsoCode
	}

	if name, ok := record.City.Names["en"]; ok && name != "" {
		loc.City = name
	}

	return loc
}

// Shutdown closes the underlying database reader.
func (m *MaxMind) Shutdown() error {
	return m.reader.Close()
}

// Noop is a Locator that resolves nothing. Used when no database is
// configured.
type Noop struct{}

func (Noop) Lookup(string) Location {
	return Location{Country: Unknown, City: Unknown}
}

// Compile-time checks.
var (
	_ Locator = (*MaxMind)(nil)
	_ Locator = Noop{}
)
