package hashsvc

import (
	"net/http"
	"testing"

	"github.com/go-errors/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthChecker(t *testing.T) {
	hc := NewHealthChecker("1.2.3", "v1")

	var fail error
	hc.RegisterComponent("store", func() error { return fail })
	hc.RegisterComponent("http", nil)

	h := hc.CheckHealth()
	assert.Equal(t, Healthy, h.OverallStatus)
	assert.Equal(t, http.StatusOK, h.HTTPStatus())
	assert.Equal(t, "1.2.3", h.Version)
	assert.Equal(t, "v1", h.ParameterSet)
	require.Len(t, h.Components, 2)
	assert.Equal(t, "http", h.Components[0].Name)
	assert.Equal(t, "store", h.Components[1].Name)

	hc.UpdateComponent("http", Degraded, "slow")
	h = hc.CheckHealth()
	assert.Equal(t, Degraded, h.OverallStatus)
	assert.Equal(t, http.StatusOK, h.HTTPStatus())
	assert.Equal(t, "warning", CreateHealthResponse(h).Status)

	fail = errors.New("disk gone")
	h = hc.CheckHealth()
	assert.Equal(t, Unhealthy, h.OverallStatus)
	assert.Equal(t, http.StatusServiceUnavailable, h.HTTPStatus())
	assert.Equal(t, "disk gone", h.Components[1].Message)
	assert.Equal(t, "error", CreateHealthResponse(h).Status)

	// GetHealth reports the last result without running the checker again
	fail = nil
	assert.Equal(t, Unhealthy, hc.GetHealth().OverallStatus)
	assert.Equal(t, Degraded, hc.CheckHealth().OverallStatus)
}

func TestUpdateUnknownComponentIsIgnored(t *testing.T) {
	hc := NewHealthChecker("dev", "v1")
	hc.UpdateComponent("nope", Unhealthy, "x")
	h := hc.GetHealth()
	assert.Empty(t, h.Components)
	assert.Equal(t, Healthy, h.OverallStatus)
	assert.Equal(t, "success", CreateHealthResponse(h).Status)
}
