package streaming

import (
	"encoding/csv"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/agristream/platform/pkg/common/logger"
	"github.com/agristream/platform/pkg/schema"
)

// Positions in the raw 19-field layout. Longitude comes before latitude in
// the source files even though the merged output field puts latitude first.
const (
	colDateTime = iota
	colSerial
	colGPSLongitude
	colGPSLatitude
	colWorkingHours
	colEngineRPM
	colEngineLoad
	colFuelConsumption
	colGearboxSpeed
	colRadarSpeed
	colMotorTemperature
	colFrontPTORPM
	colRearPTORPM
	colGearShift
	colAmbientTemperature
	colParkingBrakeStatus
	colDifferentialLockStatus
	colAllWheelStatus
	colCreeperStatus
)

// Parser turns raw semicolon-delimited file content into transformed
// telemetry rows according to the schema catalog.
type Parser struct {
	catalog schema.Catalog
}

func NewParser(catalog schema.Catalog) *Parser {
	return &Parser{catalog: catalog}
}

// Parse decodes the file content, skips the header row unconditionally and
// transforms every remaining row. A file with no data rows yields an empty
// batch, not an error. The whole file is parsed before anything is returned,
// so a bad row anywhere fails the batch as a unit.
func (p *Parser) Parse(content []byte) ([]TelemetryRow, error) {
	if !utf8.Valid(content) {
		return nil, DecodeError{}
	}

	reader := csv.NewReader(strings.NewReader(string(content)))
	reader.Comma = ';'
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, ParseError{Row: 0, Reason: err.Error()}
	}

	rows := make([]TelemetryRow, 0, len(records))
	for i, fields := range records {
		if i == 0 {
			// header
			continue
		}
		row, err := p.transform(i+1, fields)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
		logger.Log.WithFields(map[string]interface{}{
			"row":    i + 1,
			"serial": row.Serial,
		}).Debug("row parsed")
	}

	return rows, nil
}

func (p *Parser) transform(line int, fields []string) (TelemetryRow, error) {
	if len(fields) != p.catalog.FieldCount() {
		return TelemetryRow{}, ParseError{
			Row:    line,
			Reason: fmt.Sprintf("expected %d fields, got %d", p.catalog.FieldCount(), len(fields)),
		}
	}

	recorded, err := time.Parse(p.catalog.SourceTimeLayout, fields[colDateTime])
	if err != nil {
		return TelemetryRow{}, ParseError{
			Row:    line,
			Reason: fmt.Sprintf("unparseable datetime %q", fields[colDateTime]),
		}
	}

	return TelemetryRow{
		RecordedAt:             recorded.Format(p.catalog.CanonicalTimeLayout),
		Serial:                 fields[colSerial],
		GPS:                    fields[colGPSLatitude] + ", " + fields[colGPSLongitude],
		WorkingHours:           fields[colWorkingHours],
		EngineRPM:              fields[colEngineRPM],
		EngineLoad:             fields[colEngineLoad],
		FuelConsumption:        fields[colFuelConsumption],
		GearboxSpeed:           fields[colGearboxSpeed],
		RadarSpeed:             fields[colRadarSpeed],
		MotorTemperature:       fields[colMotorTemperature],
		FrontPTORPM:            fields[colFrontPTORPM],
		RearPTORPM:             fields[colRearPTORPM],
		GearShift:              fields[colGearShift],
		AmbientTemperature:     fields[colAmbientTemperature],
		ParkingBrakeStatus:     fields[colParkingBrakeStatus],
		DifferentialLockStatus: fields[colDifferentialLockStatus],
		AllWheelStatus:         fields[colAllWheelStatus],
		CreeperStatus:          fields[colCreeperStatus],
	}, nil
}
