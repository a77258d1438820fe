package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNullableStringTracksPresence(t *testing.T) {
	var body struct {
		Flt     NullableString `json:"flt"`
		Remarks NullableString `json:"remarks"`
		Missing NullableString `json:"missing"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"flt":null,"remarks":"fragile"}`), &body))

	require.True(t, body.Flt.Cleared())
	require.True(t, body.Remarks.Valid)
	require.Equal(t, "fragile", *body.Remarks.Value)
	require.False(t, body.Missing.Valid)
	require.False(t, body.Missing.Cleared())
}

func TestNullableDecimalAcceptsNumbersAndStrings(t *testing.T) {
	var body struct {
		A NullableDecimal `json:"a"`
		B NullableDecimal `json:"b"`
		C NullableDecimal `json:"c"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":12.5,"b":"10","c":null}`), &body))

	require.Equal(t, "12.5", body.A.Value.String())
	require.Equal(t, "10", body.B.Value.String())
	require.True(t, body.C.Cleared())

	require.Error(t, json.Unmarshal([]byte(`{"a":"ten"}`), &body))
}
