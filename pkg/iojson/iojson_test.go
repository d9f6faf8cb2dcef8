package iojson

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteWith(t *testing.T) {
	var out, errOut bytes.Buffer

	require.NoError(t, WriteWith(&out, &errOut, map[string]int{"rows": 3}))

	assert.Equal(t, "{\n  \"rows\": 3\n}\n", out.String())
	assert.Empty(t, errOut.String())
}

func TestWriteWith_MarshalError(t *testing.T) {
	var out, errOut bytes.Buffer

	err := WriteWith(&out, &errOut, map[string]any{"bad": make(chan int)})
	require.Error(t, err)
	assert.Empty(t, out.String())

	var got struct {
		Message string            `json:"message"`
		Data    map[string]string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(errOut.Bytes(), &got))
	assert.Equal(t, "error marshaling in iojson.Write", got.Message)
	assert.NotEmpty(t, got.Data["json_error"])
}

func TestJSONError_Escapes(t *testing.T) {
	s := jsonError(`quote " here`, errors.New("line\nbreak"))
	assert.True(t, json.Valid([]byte(s)))
}
