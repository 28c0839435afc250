package wsedge

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamspace-dev/chatcore/internal/apperr"
	"github.com/streamspace-dev/chatcore/internal/cache"
	"github.com/streamspace-dev/chatcore/internal/db"
	"github.com/streamspace-dev/chatcore/internal/friendship"
	"github.com/streamspace-dev/chatcore/internal/hub"
	"github.com/streamspace-dev/chatcore/internal/session"
	"github.com/streamspace-dev/chatcore/internal/store"
)

func newTestEdge(t *testing.T) *Edge {
	t.Helper()
	sqlDB, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	c, err := cache.NewCache(cache.Config{Enabled: false})
	require.NoError(t, err)

	s := store.New(db.NewDatabaseForTesting(sqlDB), c)
	return New(hub.New(), s, friendship.New(s), session.New(s))
}

func newTestContext(cookies map[string]string) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	for name, value := range cookies {
		req.AddCookie(&http.Cookie{Name: name, Value: value})
	}
	c.Request = req
	return c, w
}

func TestAuthenticate_MissingCookiesIsUnauthorized(t *testing.T) {
	edge := newTestEdge(t)
	c, _ := newTestContext(nil)

	_, err := edge.authenticate(c)
	require.Error(t, err)
	appErr, ok := err.(*apperr.AppError)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, appErr.StatusCode)
}

func TestAuthenticate_MalformedIDCookieIsUnauthorized(t *testing.T) {
	edge := newTestEdge(t)
	c, _ := newTestContext(map[string]string{"id": "not-a-number", "sess": "token"})

	_, err := edge.authenticate(c)
	require.Error(t, err)
	appErr, ok := err.(*apperr.AppError)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, appErr.StatusCode)
}

func TestAuthenticate_UnknownSessionIsUnauthorized(t *testing.T) {
	edge := newTestEdge(t)
	c, _ := newTestContext(map[string]string{"id": "1", "sess": "some-token"})

	_, err := edge.authenticate(c)
	require.Error(t, err)
	appErr, ok := err.(*apperr.AppError)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, appErr.StatusCode)
}
