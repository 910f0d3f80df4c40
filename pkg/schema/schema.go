package schema

import (
	"errors"
	"io/ioutil"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Catalog describes the positional layout of a raw telemetry file and the
// datetime layouts used when transforming it. The first column must be the
// row's datetime in the source layout.
type Catalog struct {
	Columns             []string `yaml:"columns" json:"columns"`
	SourceTimeLayout    string   `yaml:"source_time_layout" json:"source_time_layout"`
	CanonicalTimeLayout string   `yaml:"canonical_time_layout" json:"canonical_time_layout"`
}

func Load(path string) (Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	content, err := ioutil.ReadFile(filepath.Clean(path))
	if err != nil {
		return Default(), err
	}

	var cat Catalog
	if err := yaml.Unmarshal(content, &cat); err != nil {
		return Catalog{}, err
	}

	if len(cat.Columns) == 0 {
		return Catalog{}, errors.New("schema catalog has no columns")
	}
	if cat.SourceTimeLayout == "" {
		cat.SourceTimeLayout = Default().SourceTimeLayout
	}
	if cat.CanonicalTimeLayout == "" {
		cat.CanonicalTimeLayout = Default().CanonicalTimeLayout
	}

	return cat, nil
}

// FieldCount is the number of fields every data row must carry.
func (c Catalog) FieldCount() int {
	return len(c.Columns)
}

// Default is the fixed tractor telemetry layout: 19 semicolon-delimited
// columns with a display-format datetime in front.
func Default() Catalog {
	return Catalog{
		Columns: []string{
			"datetime", "serial", "gps_longitude", "gps_latitude",
			"working_hours", "engine_rpm", "engine_load", "fuel_consumption",
			"gearbox_speed", "radar_speed", "motor_temperature",
			"front_pto_rpm", "rear_pto_rpm", "gear_shift",
			"ambient_temperature", "parking_brake_status",
			"differential_lock_status", "all_wheel_status", "creeper_status",
		},
		SourceTimeLayout:    "Jan 2, 2006 3:04:05 PM",
		CanonicalTimeLayout: "2006-01-02 15:04:05",
	}
}
