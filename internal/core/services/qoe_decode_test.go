package services

import (
	"errors"
	"testing"

	"netqoe/internal/core/domain"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeParameters(t *testing.T) {
	cases := []struct {
		name string
		body string
		want domain.Parameters
	}{
		{
			name: "numbers",
			body: `{"sinr": 20, "bler": 1.5}`,
			want: domain.Parameters{domain.ParamSINR: 20, domain.ParamBLER: 1.5},
		},
		{
			name: "numeric strings",
			body: `{"prb_utilization": " 70 ", "sinr": "-3"}`,
			want: domain.Parameters{domain.ParamPRBUtilization: 70, domain.ParamSINR: -3},
		},
		{
			name: "unknown keys ignored even when not numeric",
			body: `{"sinr": 10, "colour": "blue"}`,
			want: domain.Parameters{domain.ParamSINR: 10},
		},
		{
			name: "only unknown keys",
			body: `{"colour": "blue"}`,
			want: domain.Parameters{},
		},
		{
			name: "null is absent",
			body: `{"sinr": null, "bler": 2}`,
			want: domain.Parameters{domain.ParamBLER: 2},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := DecodeParameters([]byte(tc.body))
			require.NoError(t, err)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("DecodeParameters() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecodeParameters_Errors(t *testing.T) {
	for _, body := range []string{"", "   ", "null", "{}"} {
		_, err := DecodeParameters([]byte(body))
		assert.ErrorIs(t, err, ErrNoParameters, "body %q", body)
	}

	for _, body := range []string{"[1,2]", `"sinr"`, "{not json"} {
		_, err := DecodeParameters([]byte(body))
		assert.ErrorIs(t, err, ErrMalformedInput, "body %q", body)
	}

	_, err := DecodeParameters([]byte(`{"sinr": "high"}`))
	var invalid *InvalidParameterError
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, domain.ParamSINR, invalid.Name)

	_, err = DecodeParameters([]byte(`{"bler": true}`))
	assert.True(t, errors.As(err, &invalid))
}

func TestDecodeParameters_RejectsNonFiniteStrings(t *testing.T) {
	for _, value := range []string{"NaN", "nan", "Inf", "+Inf", "-Inf", "-Infinity", " infinity "} {
		t.Run(value, func(t *testing.T) {
			params, err := DecodeParameters([]byte(`{"sinr": "` + value + `", "bler": 2}`))
			assert.Nil(t, params)

			var invalid *InvalidParameterError
			require.True(t, errors.As(err, &invalid), "got %v", err)
			assert.Equal(t, domain.ParamSINR, invalid.Name)
			assert.Equal(t, `parameter sinr must be a finite number, got "`+value+`"`, err.Error())
		})
	}

	// JSON itself has no literal for these.
	_, err := DecodeParameters([]byte(`{"sinr": NaN}`))
	assert.ErrorIs(t, err, ErrMalformedInput)
}
