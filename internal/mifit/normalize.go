package mifit

import (
	"github.com/vladimiradmaev/health-tracker/internal/domain"
)

// valueFields names the blob field holding each type's value
var valueFields = map[domain.ActivityType]string{
	domain.HeartRate:        "bpm",
	domain.RestingHeartRate: "bpm",
	domain.SpO2:             "spo2",
	domain.Stress:           "stress",
	domain.Steps:            "steps",
	domain.Calories:         "calories",
	domain.Sleep:            "duration",
}

// Normalize picks the canonical value and unit out of a device value blob.
// The type-specific field wins over the generic "value" field; a blob with
// neither yields 0. Unknown types keep the blob's own unit.
func Normalize(activityType domain.ActivityType, blob map[string]interface{}) (float64, string) {
	field, ok := valueFields[activityType]
	if !ok {
		unit, _ := blob["unit"].(string)
		v, _ := Number(blob["value"])
		return v, unit
	}
	if v, ok := Number(blob[field]); ok {
		return v, activityType.Unit()
	}
	v, _ := Number(blob["value"])
	return v, activityType.Unit()
}

// Number reads a numeric BSON value. Non-numeric and missing values report false.
func Number(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	case float64:
		return n, true
	case float32:
		return float64(n), true
	default:
		return 0, false
	}
}
