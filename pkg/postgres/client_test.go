package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewClientValidates(t *testing.T) {
	_, err := NewClient(context.Background(), Config{})
	assert.Error(t, err)

	_, err = NewClient(context.Background(), Config{DatabaseURL: "postgres://%zz"})
	assert.Error(t, err)
}
