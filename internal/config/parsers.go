// Package config provides configuration loading and parsing for sortbench.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// lookupSetting returns the first candidate key present in settings. Keys
// are tried as given and lowercased, since viper lowercases file keys.
func lookupSetting(settings map[string]interface{}, candidates ...string) (interface{}, bool) {
	for _, key := range candidates {
		if val, ok := settings[key]; ok {
			return val, true
		}
		if val, ok := settings[strings.ToLower(key)]; ok {
			return val, true
		}
	}
	return nil, false
}

// scalar trims strings and maps blank ones to nil so they read as zero.
func scalar(value interface{}) interface{} {
	if s, ok := value.(string); ok {
		s = strings.TrimSpace(s)
		if s == "" {
			return nil
		}
		return s
	}
	return value
}

func asString(value interface{}) (string, error) {
	if value == nil {
		return "", nil
	}
	return cast.ToStringE(value)
}

func asInt(value interface{}) (int, error) {
	return cast.ToIntE(scalar(value))
}

func asInt64(value interface{}) (int64, error) {
	return cast.ToInt64E(scalar(value))
}

func asFloat64(value interface{}) (float64, error) {
	return cast.ToFloat64E(scalar(value))
}

func asBool(value interface{}) (bool, error) {
	return cast.ToBoolE(scalar(value))
}

// asDuration accepts Go duration strings ("30s", "1m"). Bare numbers are
// seconds.
func asDuration(value interface{}) (time.Duration, error) {
	switch v := scalar(value).(type) {
	case nil:
		return 0, nil
	case time.Duration:
		return v, nil
	case string:
		return time.ParseDuration(v)
	case bool:
		return 0, fmt.Errorf("unsupported duration type %T", value)
	default:
		secs, err := cast.ToFloat64E(v)
		if err != nil {
			return 0, err
		}
		return time.Duration(secs * float64(time.Second)), nil
	}
}

// asStringSlice keeps a lone string as one element instead of splitting it
// on whitespace, so "sort_duration:p95 < 5" stays intact.
func asStringSlice(value interface{}) ([]string, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case string:
		return []string{v}, nil
	default:
		return cast.ToStringSliceE(v)
	}
}

// toStringKeyMap converts a decoded map to map[string]interface{} with
// trimmed, lowercased keys.
func toStringKeyMap(value interface{}) (map[string]interface{}, error) {
	m, err := cast.ToStringMapE(value)
	if err != nil {
		return nil, err
	}
	result := make(map[string]interface{}, len(m))
	for key, val := range m {
		result[strings.ToLower(strings.TrimSpace(key))] = val
	}
	return result, nil
}
