package fluentlogger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewClientValidates(t *testing.T) {
	_, err := NewClient(Config{Host: "127.0.0.1", Port: 24224})
	assert.Error(t, err, "tag prefix is required")

	_, err = NewClient(Config{Host: "127.0.0.1", TagPrefix: "property-explorer"})
	assert.Error(t, err, "port is required")
}
