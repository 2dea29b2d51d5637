package services

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"netqoe/internal/core/domain"
)

var (
	ErrNoParameters   = errors.New("no parameters provided")
	ErrMalformedInput = errors.New("request body must be a JSON object")

	errNotFinite = errors.New("value is not finite")
)

// InvalidParameterError reports a recognized parameter whose value is not a
// finite number.
type InvalidParameterError struct {
	Name  domain.ParameterName
	Value string
	Err   error
}

func (e *InvalidParameterError) Error() string {
	if errors.Is(e.Err, errNotFinite) {
		return fmt.Sprintf("parameter %s must be a finite number, got %s", e.Name, e.Value)
	}
	return fmt.Sprintf("parameter %s must be numeric, got %s", e.Name, e.Value)
}

func (e *InvalidParameterError) Unwrap() error {
	return e.Err
}

// DecodeParameters parses a JSON object of parameter values as submitted by
// clients. Values may be JSON numbers or numeric strings; null counts as
// absent. Unrecognized keys are ignored. An empty body or empty object yields
// ErrNoParameters.
func DecodeParameters(data []byte) (domain.Parameters, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, ErrNoParameters
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, ErrMalformedInput
	}
	if len(raw) == 0 {
		return nil, ErrNoParameters
	}

	params := make(domain.Parameters, len(raw))
	for key, value := range raw {
		name := domain.ParameterName(key)
		if _, ok := LookupParameter(name); !ok {
			continue
		}
		v, present, err := decodeNumber(value)
		if err != nil {
			return nil, &InvalidParameterError{Name: name, Value: string(value), Err: err}
		}
		if present {
			params[name] = v
		}
	}
	return params, nil
}

func decodeNumber(value json.RawMessage) (float64, bool, error) {
	if bytes.Equal(value, []byte("null")) {
		return 0, false, nil
	}

	var f float64
	if err := json.Unmarshal(value, &f); err == nil {
		return f, true, nil
	}

	var s string
	if err := json.Unmarshal(value, &s); err != nil {
		return 0, false, err
	}
	// ParseFloat also accepts "NaN" and "Inf", which cannot be stored or
	// encoded back to JSON.
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false, errNotFinite
	}
	return f, true, nil
}
