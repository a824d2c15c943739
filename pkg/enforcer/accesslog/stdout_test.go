//
//  Copyright © Manetu Inc. All rights reserved.
//

package accesslog

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecord() *Record {
	return &Record{
		ID:         "d3b07384-d9a7-4f3b-a6ca-2f1c5f7b9d10",
		Timestamp:  time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Decision:   false,
		Reason:     "not the owner of entity doc-1",
		Suppressed: []string{"granted"},
		DurationNs: 1234,
	}
}

func TestIoWriterStreamWritesOneLinePerRecord(t *testing.T) {
	var buffer bytes.Buffer
	stream, err := NewIoWriterFactory(&buffer).NewStream()
	require.NoError(t, err)
	defer stream.Close()

	require.NoError(t, stream.Send(sampleRecord()))
	require.NoError(t, stream.Send(sampleRecord()))

	lines := strings.Split(strings.TrimSpace(buffer.String()), "\n")
	assert.Len(t, lines, 2)

	var decoded Record
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &decoded))
	assert.Equal(t, "not the owner of entity doc-1", decoded.Reason)
	assert.False(t, decoded.Decision)
	assert.Equal(t, []string{"granted"}, decoded.Suppressed)
}

func TestIoWriterStreamPrettyPrint(t *testing.T) {
	var buffer bytes.Buffer
	stream, err := NewIoWriterFactoryWithOptions(&buffer, Options{PrettyPrint: true}).NewStream()
	require.NoError(t, err)

	require.NoError(t, stream.Send(sampleRecord()))

	assert.Greater(t, strings.Count(buffer.String(), "\n"), 1)

	var decoded Record
	require.NoError(t, json.Unmarshal(buffer.Bytes(), &decoded))
	assert.Equal(t, uint64(1234), decoded.DurationNs)
}

func TestEmptyOptionalFieldsAreOmitted(t *testing.T) {
	var buffer bytes.Buffer
	stream, err := NewIoWriterFactory(&buffer).NewStream()
	require.NoError(t, err)

	require.NoError(t, stream.Send(&Record{ID: "x", Decision: true}))

	line := buffer.String()
	assert.NotContains(t, line, "reason")
	assert.NotContains(t, line, "suppressed")
	assert.NotContains(t, line, "metadata")
}

func TestNullStreamDiscards(t *testing.T) {
	stream, err := NewNullFactory().NewStream()
	require.NoError(t, err)
	assert.NoError(t, stream.Send(sampleRecord()))
	stream.Close()
}

func TestChannelStreamDelivers(t *testing.T) {
	ch := make(chan *Record, 1)
	stream, err := NewChannelFactory(ch).NewStream()
	require.NoError(t, err)

	record := sampleRecord()
	require.NoError(t, stream.Send(record))
	assert.Same(t, record, <-ch)

	stream.Close()
	_, open := <-ch
	assert.False(t, open)
}
