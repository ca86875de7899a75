package money

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromFloatRounds(t *testing.T) {
	assert.Equal(t, Amount(10050), FromFloat(100.5))
	assert.Equal(t, Amount(1999), FromFloat(19.99))
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "200.00", Amount(20000).Format())
	assert.Equal(t, "0.05", Amount(5).Format())
	assert.Equal(t, "-1.50", Amount(-150).Format())
}

func TestJSON(t *testing.T) {
	type payload struct {
		Total Amount `json:"total"`
	}

	out, err := json.Marshal(payload{Total: 12345})
	require.NoError(t, err)
	assert.JSONEq(t, `{"total":123.45}`, string(out))

	var in payload
	require.NoError(t, json.Unmarshal([]byte(`{"total":150}`), &in))
	assert.Equal(t, Amount(15000), in.Total)

	require.NoError(t, json.Unmarshal([]byte(`{"total":"12.30"}`), &in))
	assert.Equal(t, Amount(1230), in.Total)

	assert.Error(t, json.Unmarshal([]byte(`{"total":"abc"}`), &in))
}
