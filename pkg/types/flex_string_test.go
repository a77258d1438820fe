package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFlexStringAcceptsStringsAndNumbers(t *testing.T) {
	var payload struct {
		CnNo  FlexString `json:"cn_no"`
		AwbNo FlexString `json:"awb_no"`
		Empty FlexString `json:"empty"`
	}
	err := json.Unmarshal([]byte(`{"cn_no": 1002003, "awb_no": " 232-1234 ", "empty": null}`), &payload)
	require.NoError(t, err)
	require.Equal(t, "1002003", payload.CnNo.String())
	require.Equal(t, "232-1234", payload.AwbNo.String())
	require.Equal(t, "", payload.Empty.String())
}

func TestFlexStringRejectsObjects(t *testing.T) {
	var f FlexString
	require.Error(t, json.Unmarshal([]byte(`{"a":1}`), &f))
}
