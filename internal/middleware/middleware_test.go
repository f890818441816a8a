package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/roadsmart/backend/internal/access"
	"github.com/roadsmart/backend/internal/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(tokens *TokenManager, handlers ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	chain := append([]gin.HandlerFunc{AuthMiddleware(tokens)}, handlers...)
	chain = append(chain, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	r.POST("/protected", chain...)
	return r
}

func doRequest(r http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/protected", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestTokenRoundTripAndRevoke(t *testing.T) {
	tokens := NewTokenManager("test-secret", time.Hour, nil)
	ctx := context.Background()
	user := &models.User{ID: 7, Username: "crew", Role: models.RoleRepairTeam}

	signed, expiresAt, err := tokens.Issue(user)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if time.Until(expiresAt) <= 0 {
		t.Errorf("expected expiry in the future, got %v", expiresAt)
	}

	claims, err := tokens.Parse(ctx, signed)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if claims.UserID != 7 || claims.Role != models.RoleRepairTeam || claims.ID == "" {
		t.Errorf("unexpected claims %+v", claims)
	}

	if err := tokens.Revoke(ctx, claims); err != nil {
		t.Fatalf("Revoke failed: %v", err)
	}
	if _, err := tokens.Parse(ctx, signed); !errors.Is(err, ErrTokenRevoked) {
		t.Errorf("expected ErrTokenRevoked, got %v", err)
	}
}

func TestParseRejectsForeignTokens(t *testing.T) {
	issuer := NewTokenManager("other-secret", time.Hour, nil)
	verifier := NewTokenManager("test-secret", time.Hour, nil)

	signed, _, err := issuer.Issue(&models.User{ID: 1, Role: models.RoleAdmin})
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if _, err := verifier.Parse(context.Background(), signed); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}

	expired := NewTokenManager("test-secret", -time.Minute, nil)
	old, _, _ := expired.Issue(&models.User{ID: 1, Role: models.RoleAdmin})
	if _, err := verifier.Parse(context.Background(), old); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expired token: expected ErrInvalidToken, got %v", err)
	}
}

func TestAuthMiddleware(t *testing.T) {
	tokens := NewTokenManager("test-secret", time.Hour, nil)
	r := newTestRouter(tokens)
	signed, _, _ := tokens.Issue(&models.User{ID: 3, Role: models.RoleCitizen})

	tests := []struct {
		name   string
		token  string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"garbage token", "not-a-jwt", http.StatusUnauthorized},
		{"valid token", signed, http.StatusOK},
	}

	for _, test := range tests {
		if w := doRequest(r, test.token); w.Code != test.status {
			t.Errorf("%s: expected %d, got %d", test.name, test.status, w.Code)
		}
	}
}

func TestRequirePermission(t *testing.T) {
	tokens := NewTokenManager("test-secret", time.Hour, nil)
	r := newTestRouter(tokens, RequirePermission(access.ReportUpdateStatus))

	municipal, _, _ := tokens.Issue(&models.User{ID: 1, Role: models.RoleMunicipal})
	citizen, _, _ := tokens.Issue(&models.User{ID: 2, Role: models.RoleCitizen})

	if w := doRequest(r, municipal); w.Code != http.StatusOK {
		t.Errorf("municipal: expected 200, got %d", w.Code)
	}
	if w := doRequest(r, citizen); w.Code != http.StatusForbidden {
		t.Errorf("citizen: expected 403, got %d", w.Code)
	}
}

func TestReportRateLimiter(t *testing.T) {
	tokens := NewTokenManager("test-secret", time.Hour, nil)
	r := newTestRouter(tokens, ReportRateLimiter(NewMemoryCounter(), 2))

	first, _, _ := tokens.Issue(&models.User{ID: 1, Role: models.RoleCitizen})
	second, _, _ := tokens.Issue(&models.User{ID: 2, Role: models.RoleCitizen})

	for i := 0; i < 2; i++ {
		if w := doRequest(r, first); w.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i+1, w.Code)
		}
	}
	if w := doRequest(r, first); w.Code != http.StatusTooManyRequests {
		t.Errorf("third request: expected 429, got %d", w.Code)
	}
	if w := doRequest(r, second); w.Code != http.StatusOK {
		t.Errorf("other user: expected 200, got %d", w.Code)
	}
}

func TestReportRateLimiterDisabled(t *testing.T) {
	tokens := NewTokenManager("test-secret", time.Hour, nil)
	r := newTestRouter(tokens, ReportRateLimiter(nil, 1))
	signed, _, _ := tokens.Issue(&models.User{ID: 1, Role: models.RoleCitizen})

	for i := 0; i < 3; i++ {
		if w := doRequest(r, signed); w.Code != http.StatusOK {
			t.Errorf("request %d: expected 200, got %d", i+1, w.Code)
		}
	}
}

func TestMemoryCounterWindowResets(t *testing.T) {
	counter := NewMemoryCounter()
	ctx := context.Background()

	counter.Hit(ctx, "k", 50*time.Millisecond)
	count, _, _ := counter.Hit(ctx, "k", 50*time.Millisecond)
	if count != 2 {
		t.Fatalf("expected 2 hits, got %d", count)
	}

	time.Sleep(100 * time.Millisecond)
	if count, _, _ := counter.Hit(ctx, "k", 50*time.Millisecond); count != 1 {
		t.Errorf("expected window reset, got %d", count)
	}
}
