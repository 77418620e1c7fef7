package jsonrpc

import (
	"bytes"
	"errors"
	"io"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteThenReadRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	original, err := NewRequest(NewIntID(7), "initialize", map[string]any{"rootUri": "file:///w"})
	require.NoError(t, err)
	require.NoError(t, w.Write(original))

	decoded, err := NewReader(&buf).Read()
	require.NoError(t, err)

	assert.Equal(t, original.Method, decoded.Method)
	assert.True(t, original.ID.Equal(*decoded.ID))
	assert.JSONEq(t, string(original.Params), string(decoded.Params))
}

func TestReadEncodeDecodeIsIdempotent(t *testing.T) {
	var buf bytes.Buffer
	msg, err := NewNotification("textDocument/didChange", map[string]any{"x": 1})
	require.NoError(t, err)
	require.NoError(t, NewWriter(&buf).Write(msg))

	first, err := NewReader(&buf).Read()
	require.NoError(t, err)

	var buf2 bytes.Buffer
	require.NoError(t, NewWriter(&buf2).Write(first))

	second, err := NewReader(&buf2).Read()
	require.NoError(t, err)

	assert.Equal(t, first.Method, second.Method)
	assert.JSONEq(t, string(first.Params), string(second.Params))
}

func TestReadCleanEOFAtBoundary(t *testing.T) {
	_, err := NewReader(strings.NewReader("")).Read()
	assert.ErrorIs(t, err, io.EOF)
}

func TestReadEOFMidHeaders(t *testing.T) {
	_, err := NewReader(strings.NewReader("Content-Length: 10\r\n")).Read()
	assert.True(t, errors.Is(err, ErrEOFBeforeHeaders))
}

func TestReadMalformedHeader(t *testing.T) {
	_, err := NewReader(strings.NewReader("not-a-header\r\n\r\n")).Read()
	assert.ErrorIs(t, err, ErrMalformedHeader)
}

func TestReadMissingContentLength(t *testing.T) {
	_, err := NewReader(strings.NewReader("Content-Type: application/json\r\n\r\n")).Read()
	assert.ErrorIs(t, err, ErrMissingContentLen)
}

func TestReadShortBody(t *testing.T) {
	_, err := NewReader(strings.NewReader("Content-Length: 100\r\n\r\n{}")).Read()
	assert.ErrorIs(t, err, ErrShortRead)
}

func TestReadInvalidJSON(t *testing.T) {
	body := "not json"
	input := "Content-Length: " + strconv.Itoa(len(body)) + "\r\n\r\n" + body
	_, err := NewReader(strings.NewReader(input)).Read()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid JSON")
}
