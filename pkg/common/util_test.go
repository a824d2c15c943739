//
//  Copyright © Manetu Inc. All rights reserved.
//

package common

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrettyPrintWritesIndentedJSON(t *testing.T) {
	var out bytes.Buffer
	PrettyPrint(&out, map[string]string{"reason": "denied"})

	assert.Contains(t, out.String(), "\t\"reason\": \"denied\"")

	var decoded map[string]string
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	assert.Equal(t, "denied", decoded["reason"])
}

func TestPrettyPrintReportsMarshalFailure(t *testing.T) {
	var out bytes.Buffer
	PrettyPrint(&out, func() {})

	assert.Contains(t, out.String(), "unsupported type")
}
