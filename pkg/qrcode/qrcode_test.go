package qrcode

import (
	"bytes"
	"encoding/base64"
	"strings"
	"testing"

	goqrcode "github.com/skip2/go-qrcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G'}

func TestPNG(t *testing.T) {
	png, err := PNG("http://localhost:8080/abc", goqrcode.High, 256)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, pngMagic))

	_, err = PNG("http://localhost:8080/abc", goqrcode.Medium, 64)
	assert.Error(t, err)
}

func TestDataURI(t *testing.T) {
	uri, err := DataURI("http://localhost:8080/abc")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(uri, "data:image/png;base64,"))

	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(uri, "data:image/png;base64,"))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(raw, pngMagic))
}

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel("")
	require.NoError(t, err)
	assert.Equal(t, goqrcode.Medium, level)

	level, err = ParseLevel("HIGHEST")
	require.NoError(t, err)
	assert.Equal(t, goqrcode.Highest, level)

	_, err = ParseLevel("ultra")
	assert.Error(t, err)
}
