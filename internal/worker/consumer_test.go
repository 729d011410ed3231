package worker_test

import (
	"testing"

	"github.com/Landa5/SEL-CONTROL-HORARIO-sub000/internal/worker"
	"github.com/stretchr/testify/assert"
)

func TestBackoffGrowsExponentially(t *testing.T) {
	assert.Equal(t, int32(10), worker.Backoff(0))
	assert.Equal(t, int32(20), worker.Backoff(1))
	assert.Equal(t, int32(40), worker.Backoff(2))
	assert.Equal(t, int32(80), worker.Backoff(3))
}

func TestBackoffCapsAtOneHour(t *testing.T) {
	assert.Equal(t, int32(3600), worker.Backoff(10))
	assert.Equal(t, int32(3600), worker.Backoff(100))
}
