package metrics

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jhoicas/sweetshop-api/internal/application/inventory"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_CuentaMovimientos(t *testing.T) {
	m := New("sweetshop")
	ctx := context.Background()

	require.NoError(t, m.Publish(ctx, inventory.Event{Type: inventory.EventPurchased, Quantity: 10}))
	require.NoError(t, m.Publish(ctx, inventory.Event{Type: inventory.EventPurchased, Quantity: 5}))
	require.NoError(t, m.Publish(ctx, inventory.Event{Type: inventory.EventRestocked, Quantity: 20}))
	require.NoError(t, m.Publish(ctx, inventory.Event{Type: inventory.EventLowStock}))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.movements.WithLabelValues(inventory.EventPurchased)))
	assert.Equal(t, 15.0, testutil.ToFloat64(m.units.WithLabelValues(inventory.EventPurchased)))
	assert.Equal(t, 20.0, testutil.ToFloat64(m.units.WithLabelValues(inventory.EventRestocked)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.movements.WithLabelValues(inventory.EventLowStock)))
}

func TestMetrics_PeticionesHTTP(t *testing.T) {
	m := New("sweetshop")

	m.RequestStarted()
	assert.Equal(t, 1.0, testutil.ToFloat64(m.reqInflight))
	m.RequestFinished("GET", "/api/sweets", 200, 20*time.Millisecond)
	m.RequestStarted()
	m.RequestFinished("DELETE", "/api/sweets/:id", 403, time.Millisecond)

	assert.Equal(t, 0.0, testutil.ToFloat64(m.reqInflight))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.reqErrors.WithLabelValues("DELETE", "/api/sweets/:id", "403")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.reqErrors.WithLabelValues("GET", "/api/sweets", "200")))
}

func TestMetrics_Handler(t *testing.T) {
	m := New("sweetshop")
	_ = m.Publish(context.Background(), inventory.Event{Type: inventory.EventRestocked, Quantity: 3})

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, string(body), `sweetshop_inventory_units_moved_total{type="sweet.restocked"} 3`)
}
