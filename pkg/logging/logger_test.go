package logging

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestSetLevel(t *testing.T) {
	defer SetLevel("info")

	SetLevel("debug")
	assert.Equal(t, logrus.DebugLevel, Log.GetLevel())
	assert.True(t, IsDebug())

	SetLevel("warn")
	assert.Equal(t, logrus.WarnLevel, Log.GetLevel())
	assert.False(t, IsDebug())

	SetLevel("nonsense")
	assert.Equal(t, logrus.InfoLevel, Log.GetLevel())
}
