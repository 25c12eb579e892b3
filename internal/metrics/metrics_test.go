package metrics

import (
	"errors"
	"testing"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCodeOf(t *testing.T) {
	assert.Equal(t, "ok", codeOf(nil))
	assert.Equal(t, "not_found", codeOf(connect.NewError(connect.CodeNotFound, errors.New("x"))))
	assert.Equal(t, "unknown", codeOf(errors.New("plain")))
}

func TestCountersAreRegistered(t *testing.T) {
	before := testutil.ToFloat64(Pins)
	Pins.Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(Pins))

	SenpaiResponses.WithLabelValues("random", SenpaiPosted).Inc()
	assert.GreaterOrEqual(t, testutil.ToFloat64(SenpaiResponses.WithLabelValues("random", SenpaiPosted)), 1.0)
}
