package streaming

import (
	"time"

	"gorm.io/datatypes"
)

const (
	OutcomeSuccess   = "success"
	OutcomeFailed    = "failed"
	OutcomeDuplicate = "duplicate"
)

// StatusRecord is the per-object ingestion ledger document. A terminal write
// replaces the whole document; duplication attempts are merged in afterwards
// and only grow, newest first.
type StatusRecord struct {
	Success             bool     `json:"success"`
	When                string   `json:"when"`
	ErrorMessage        string   `json:"error_message,omitempty"`
	DuplicationAttempts []string `json:"duplication_attempts,omitempty"`
}

// TelemetryRow is one transformed telemetry reading. Measurements stay as
// text; only the datetime is reparsed into canonical form and latitude and
// longitude are merged into a single field, latitude first.
type TelemetryRow struct {
	RecordedAt             string `json:"recorded_at" gorm:"column:recorded_at"`
	Serial                 string `json:"serial" gorm:"column:serial"`
	GPS                    string `json:"gps" gorm:"column:gps"`
	WorkingHours           string `json:"working_hours" gorm:"column:working_hours"`
	EngineRPM              string `json:"engine_rpm" gorm:"column:engine_rpm"`
	EngineLoad             string `json:"engine_load" gorm:"column:engine_load"`
	FuelConsumption        string `json:"fuel_consumption" gorm:"column:fuel_consumption"`
	GearboxSpeed           string `json:"gearbox_speed" gorm:"column:gearbox_speed"`
	RadarSpeed             string `json:"radar_speed" gorm:"column:radar_speed"`
	MotorTemperature       string `json:"motor_temperature" gorm:"column:motor_temperature"`
	FrontPTORPM            string `json:"front_pto_rpm" gorm:"column:front_pto_rpm"`
	RearPTORPM             string `json:"rear_pto_rpm" gorm:"column:rear_pto_rpm"`
	GearShift              string `json:"gear_shift" gorm:"column:gear_shift"`
	AmbientTemperature     string `json:"ambient_temperature" gorm:"column:ambient_temperature"`
	ParkingBrakeStatus     string `json:"parking_brake_status" gorm:"column:parking_brake_status"`
	DifferentialLockStatus string `json:"differential_lock_status" gorm:"column:differential_lock_status"`
	AllWheelStatus         string `json:"all_wheel_status" gorm:"column:all_wheel_status"`
	CreeperStatus          string `json:"creeper_status" gorm:"column:creeper_status"`
}

// IngestionLog is the warehouse-side audit row written for every terminal
// outcome of an object. Best effort; never alters the pipeline result.
type IngestionLog struct {
	ID         string            `json:"id" gorm:"primaryKey;column:id"`
	ObjectName string            `json:"object_name" gorm:"column:object_name"`
	Bucket     string            `json:"bucket" gorm:"column:bucket"`
	Outcome    string            `json:"outcome" gorm:"column:outcome"`
	Rows       int               `json:"rows" gorm:"column:rows"`
	Detail     datatypes.JSONMap `json:"detail,omitempty" gorm:"column:detail"`
	CreatedAt  time.Time         `json:"created_at" gorm:"column:created_at"`
}

func (IngestionLog) TableName() string {
	return "ingestion_log"
}
