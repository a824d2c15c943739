//
//  Copyright © Manetu Inc. All rights reserved.
//

package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
)

func TestGetLoggerDefaultsToInfo(t *testing.T) {
	resetForTesting()

	l := GetLogger("testmodule")
	assert.NotNil(t, l)
	assert.True(t, l.IsLevelEnabled(zapcore.InfoLevel))
	assert.False(t, l.IsLevelEnabled(zapcore.DebugLevel))

	// Same module yields the same tracked instance.
	assert.Same(t, l, GetLogger("testmodule"))
}

func TestUpdateLogLevels(t *testing.T) {
	resetForTesting()

	err := UpdateLogLevels(".:info;module1:debug;module2:warn")
	assert.NoError(t, err)

	assert.True(t, GetLogger("module1").IsLevelEnabled(zapcore.DebugLevel))

	l2 := GetLogger("module2")
	assert.True(t, l2.IsLevelEnabled(zapcore.WarnLevel))
	assert.False(t, l2.IsLevelEnabled(zapcore.InfoLevel))

	// Undeclared module gets the default.
	l3 := GetLogger("undeclared")
	assert.True(t, l3.IsLevelEnabled(zapcore.InfoLevel))
	assert.False(t, l3.IsLevelEnabled(zapcore.DebugLevel))

	// Raising the default updates non-explicit modules, new and existing.
	err = UpdateLogLevels(".:debug")
	assert.NoError(t, err)
	assert.True(t, GetLogger("undeclared2").IsLevelEnabled(zapcore.DebugLevel))
	assert.True(t, l3.IsLevelEnabled(zapcore.DebugLevel))
}

func TestUpdateLogLevelsToleratesWhitespace(t *testing.T) {
	resetForTesting()

	err := UpdateLogLevels("  mod1: debug  ;  mod2: error  ;  .: info  ")
	assert.NoError(t, err)

	assert.True(t, GetLogger("mod1").IsLevelEnabled(zapcore.DebugLevel))
	l2 := GetLogger("mod2")
	assert.True(t, l2.IsLevelEnabled(zapcore.ErrorLevel))
	assert.False(t, l2.IsLevelEnabled(zapcore.WarnLevel))
}

func TestTraceLevelMapsToDebug(t *testing.T) {
	resetForTesting()

	err := UpdateLogLevels("tracer:trace")
	assert.NoError(t, err)
	assert.True(t, GetLogger("tracer").IsTraceEnabled())
}

func TestMalformedEntriesAreSkipped(t *testing.T) {
	resetForTesting()

	err := UpdateLogLevels("garbage;mod1:debug;also:bad:entry")
	assert.NoError(t, err)
	assert.True(t, GetLogger("mod1").IsLevelEnabled(zapcore.DebugLevel))
}
