package format

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPrice(t *testing.T) {
	assert.Equal(t, "$9.99", Price(9.99))
	assert.Equal(t, "$0.00", Price(0))
	assert.Equal(t, "$19.98", Price(19.98))
	assert.Equal(t, "$1234.50", Price(1234.5))
}

func TestAmount(t *testing.T) {
	assert.Equal(t, "0.00", Amount(0))
	assert.Equal(t, "19.98", Amount(19.98))
}

func TestDate(t *testing.T) {
	assert.Equal(t, "-", Date(time.Time{}))
	assert.Equal(t, "Mar 4, 2026", Date(time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)))
}
