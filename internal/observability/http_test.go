package observability

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func TestMetricsHandlerExposesDomainCollectors(t *testing.T) {
	app := fiber.New()
	app.Get("/metrics", MetricsHandler())

	DoubtsSubmitted().Inc()
	DoubtsResolved().WithLabelValues("resolved").Inc()
	DispatchPublishFailures().WithLabelValues("nats").Inc()

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()

	require.Contains(t, string(body), "doubts_submitted_total")
	require.Contains(t, string(body), `doubts_resolved_total{outcome="resolved"}`)
	require.Contains(t, string(body), `notification_publish_failures_total{broker="nats"}`)
}
