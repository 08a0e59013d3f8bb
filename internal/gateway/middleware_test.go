package gateway

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func authProbe(token string, authorize func(*http.Request)) int {
	handler := BearerAuth(token)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authorize != nil {
		authorize(req)
	}
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w.Code
}

func TestBearerAuth_ShouldPassThroughWhenTokenEmpty(t *testing.T) {
	if code := authProbe("", nil); code != http.StatusOK {
		t.Errorf("expected 200 without configured token, got %d", code)
	}
}

func TestBearerAuth_ShouldRejectMissingHeader(t *testing.T) {
	if code := authProbe("secret", nil); code != http.StatusUnauthorized {
		t.Errorf("expected 401 for missing header, got %d", code)
	}
}

func TestBearerAuth_ShouldRejectWrongScheme(t *testing.T) {
	code := authProbe("secret", func(r *http.Request) {
		r.Header.Set("Authorization", "Basic secret")
	})
	if code != http.StatusUnauthorized {
		t.Errorf("expected 401 for wrong scheme, got %d", code)
	}
}

func TestBearerAuth_ShouldRejectWrongToken(t *testing.T) {
	code := authProbe("secret", func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer nope")
	})
	if code != http.StatusUnauthorized {
		t.Errorf("expected 401 for wrong token, got %d", code)
	}
}

func TestBearerAuth_ShouldAcceptCorrectToken(t *testing.T) {
	code := authProbe("secret", func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer secret")
	})
	if code != http.StatusOK {
		t.Errorf("expected 200 for correct token, got %d", code)
	}
}
