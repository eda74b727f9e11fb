package logger

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func newEchoContext() echo.Context {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	return e.NewContext(req, httptest.NewRecorder())
}

func TestFromEchoFallsBackWithoutMiddleware(t *testing.T) {
	assert.NotNil(t, FromEcho(newEchoContext()))
}

func TestEchoWithPersistsFields(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	c := newEchoContext()
	c.Set("logger", zap.New(core))

	EchoWith(c, zap.Uint("company_id", 7))

	// A later FromEcho must see the enriched logger.
	FromEcho(c).Info("scoped")

	entries := logs.All()
	assert.Len(t, entries, 1)
	assert.Equal(t, uint64(7), entries[0].ContextMap()["company_id"])
}

func TestContextRoundTrip(t *testing.T) {
	base := zap.NewNop()
	ctx := WithContext(context.Background(), base)
	assert.Same(t, base, FromContext(ctx))
	assert.NotNil(t, FromContext(context.Background()))
}
