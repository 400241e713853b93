package logger

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-core/engine/config"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestNewParsesLevel(t *testing.T) {
	l := New(config.LogConfig{Level: "debug", JSON: true})
	assert.Equal(t, logrus.DebugLevel, l.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, l.Formatter)

	l = New(config.LogConfig{Level: "nonsense"})
	assert.Equal(t, logrus.InfoLevel, l.GetLevel())
	assert.IsType(t, &logrus.TextFormatter{}, l.Formatter)
}

func TestOrDefault(t *testing.T) {
	assert.Same(t, logrus.StandardLogger(), OrDefault(nil))
	d := Discard()
	assert.Same(t, d, OrDefault(d))
}
