package service

import (
	"encoding/json"
	"math"
	"unicode/utf8"

	"github.com/lshigami/heartscan/internal/questionbank"
	"gorm.io/datatypes"
)

// validateIntake checks micro-intake answers against the bank's declared
// fields and returns them in canonical form (scales as int).
func validateIntake(fields []questionbank.IntakeField, input map[string]interface{}) (datatypes.JSONMap, error) {
	byKey := make(map[string]questionbank.IntakeField, len(fields))
	for _, f := range fields {
		byKey[f.Key] = f
	}

	out := make(datatypes.JSONMap, len(input))
	for key, raw := range input {
		field, ok := byKey[key]
		if !ok {
			return nil, invalid("micro_intake."+key, "unknown intake field")
		}
		if raw == nil {
			continue
		}
		switch field.Kind {
		case questionbank.IntakeText:
			text, ok := raw.(string)
			if !ok {
				return nil, invalid("micro_intake."+key, "must be text")
			}
			if field.MaxLength > 0 && utf8.RuneCountInString(text) > field.MaxLength {
				return nil, invalid("micro_intake."+key, "must be at most %d characters", field.MaxLength)
			}
			out[key] = text

		case questionbank.IntakeScale:
			n, ok := integral(raw)
			if !ok {
				return nil, invalid("micro_intake."+key, "must be a whole number")
			}
			if (field.Min != nil && n < *field.Min) || (field.Max != nil && n > *field.Max) {
				return nil, invalid("micro_intake."+key, "must be between %d and %d", deref(field.Min), deref(field.Max))
			}
			out[key] = n

		case questionbank.IntakeBool:
			b, ok := raw.(bool)
			if !ok {
				return nil, invalid("micro_intake."+key, "must be true or false")
			}
			out[key] = b
		}
	}

	for _, f := range fields {
		if _, ok := out[f.Key]; f.Required && !ok {
			return nil, invalid("micro_intake."+f.Key, "is required")
		}
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out, nil
}

func integral(raw interface{}) (int, bool) {
	var f float64
	switch v := raw.(type) {
	case int:
		return v, true
	case int64:
		f = float64(v)
	case float64:
		f = v
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if f != math.Trunc(f) || math.IsInf(f, 0) || f > math.MaxInt32 || f < math.MinInt32 {
		return 0, false
	}
	return int(f), true
}

func deref(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}
