package types

import (
	"reflect"

	"github.com/go-viper/mapstructure/v2"
	"github.com/shopspring/decimal"
	ierr "github.com/velvena/velvena/internal/errors"
)

// ToStruct converts a map[string]interface{} to a typed struct.
// Numbers encoded as strings or floats are accepted for decimal fields.
func ToStruct[T any](value map[string]interface{}) (T, error) {
	var result T

	if value == nil {
		return result, nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &result,
		TagName:          "json",
		WeaklyTypedInput: true, // Allows type coercion (e.g., float64 to int)
		Squash:           true, // Embedded structs share the parent keys
		DecodeHook:       decimalDecodeHook,
	})
	if err != nil {
		return result, ierr.WithError(err).
			WithHint("Failed to create mapstructure decoder").
			Mark(ierr.ErrValidation)
	}

	if err := decoder.Decode(value); err != nil {
		return result, ierr.WithError(err).
			WithHint("Failed to decode map to struct").
			Mark(ierr.ErrValidation)
	}

	return result, nil
}

var decimalReflectType = reflect.TypeOf(decimal.Decimal{})

// decimalDecodeHook decodes numbers and numeric strings into decimal.Decimal.
// Pointer fields reach this hook again with their element type.
func decimalDecodeHook(from, to reflect.Type, data interface{}) (interface{}, error) {
	if to != decimalReflectType {
		return data, nil
	}

	switch v := data.(type) {
	case string:
		return decimal.NewFromString(v)
	case float64:
		return decimal.NewFromFloat(v), nil
	case float32:
		return decimal.NewFromFloat32(v), nil
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case int64:
		return decimal.NewFromInt(v), nil
	default:
		return data, nil
	}
}
