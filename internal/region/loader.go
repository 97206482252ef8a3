package region

import (
	"encoding/json"
	"errors"
	"log"
	"os"
)

// ErrRegionNotFound is returned when a region name has no entry in the
// loaded reference data.
var ErrRegionNotFound = errors.New("region not found")

// Database is the full region/city reference set. Loaded once at startup and
// treated as immutable afterwards; components receive it by injection so
// tests can run in parallel with distinct fixtures.
type Database struct {
	Regions map[string]Region `json:"regions"`
}

// Load reads the reference data document. A missing or unparsable file
// degrades to an empty region set instead of failing startup.
func Load(path string) Database {
	db := Database{Regions: map[string]Region{}}

	raw, err := os.ReadFile(path)
	if err != nil {
		log.Printf("regions data unavailable (%v), starting with empty region set", err)
		return db
	}
	if err := json.Unmarshal(raw, &db); err != nil {
		log.Printf("regions data unparsable (%v), starting with empty region set", err)
		return Database{Regions: map[string]Region{}}
	}
	if db.Regions == nil {
		db.Regions = map[string]Region{}
	}

	for name, r := range db.Regions {
		for cityName, city := range r.Cities {
			if city.Name == "" {
				city.Name = cityName
			}
			if city.TypicalDays <= 0 {
				city.TypicalDays = DefaultTypicalDays
			}
			r.Cities[cityName] = city
		}
		db.Regions[name] = r
	}
	return db
}

// Region returns the city set for a region name.
func (d Database) Region(name string) (Region, error) {
	r, ok := d.Regions[name]
	if !ok {
		return Region{}, ErrRegionNotFound
	}
	return r, nil
}

// City looks a city up inside one region. The second return mirrors map
// lookup so callers can substitute defaults on a miss.
func (r Region) City(name string) (City, bool) {
	c, ok := r.Cities[name]
	return c, ok
}

// TypicalDaysFor returns the typical-days weight for a city, defaulting on a
// lookup miss.
func (r Region) TypicalDaysFor(name string) int {
	if c, ok := r.Cities[name]; ok && c.TypicalDays > 0 {
		return c.TypicalDays
	}
	return DefaultTypicalDays
}
