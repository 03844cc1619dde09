package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/checkout-api/internal/common"
)

func newService(t *testing.T) *Service {
	t.Helper()
	svc, err := NewService("test-secret-at-least-32-characters!!", "checkout-api", time.Hour)
	require.NoError(t, err)
	return svc
}

func TestIssueAndParseRoundTrip(t *testing.T) {
	svc := newService(t)
	clientID := uuid.NewString()

	token, expiresAt, err := svc.IssueAccessToken(clientID)
	require.NoError(t, err)
	require.True(t, expiresAt.After(time.Now()))

	subject, err := svc.ParseAccessToken(token)
	require.NoError(t, err)
	require.Equal(t, clientID, subject)
}

func TestParseRejectsExpiredToken(t *testing.T) {
	svc := newService(t)
	svc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, _, err := svc.IssueAccessToken(uuid.NewString())
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.ParseAccessToken(token)
	require.Error(t, err)
	require.True(t, common.IsAppError(err))
}

func TestParseRejectsWrongSecret(t *testing.T) {
	svc := newService(t)
	token, _, err := svc.IssueAccessToken(uuid.NewString())
	require.NoError(t, err)

	other, err := NewService("another-secret-also-32-characters!!!", "checkout-api", time.Hour)
	require.NoError(t, err)
	_, err = other.ParseAccessToken(token)
	require.Error(t, err)
}

func TestParseRejectsWrongIssuer(t *testing.T) {
	svc := newService(t)
	token, _, err := svc.IssueAccessToken(uuid.NewString())
	require.NoError(t, err)

	other, err := NewService("test-secret-at-least-32-characters!!", "someone-else", time.Hour)
	require.NoError(t, err)
	_, err = other.ParseAccessToken(token)
	require.Error(t, err)
}

func TestRequireAuthAttachesClientID(t *testing.T) {
	svc := newService(t)
	clientID := uuid.NewString()
	token, _, err := svc.IssueAccessToken(clientID)
	require.NoError(t, err)

	var got string
	handler := Middleware{Service: svc}.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = common.ClientIDFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodPost, "/v1/checkout", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, clientID, got)
}

func TestRequireAuthRejectsMissingToken(t *testing.T) {
	svc := newService(t)
	handler := Middleware{Service: svc}.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run")
	}))

	req := httptest.NewRequest(http.MethodPost, "/v1/checkout", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
