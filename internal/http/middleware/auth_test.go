package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/nurpe/pestcare-visits/internal/model"
)

type stubParser map[string]model.Principal

func (s stubParser) Parse(token string) (model.Principal, error) {
	p, ok := s[token]
	if !ok {
		return model.Principal{}, errors.New("unknown token")
	}
	return p, nil
}

func TestAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	office := model.Principal{UserID: uuid.New(), Role: model.UserRoleOffice}
	parser := stubParser{"good": office}

	router := gin.New()
	who := func(c *gin.Context) {
		p, ok := MustPrincipal(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.String(http.StatusOK, string(p.Role))
	}
	router.GET("/who", Auth(parser), who)
	router.GET("/feed.ics", FeedAuth(parser), who)

	tests := []struct {
		name   string
		target string
		header string
		status int
	}{
		{"bearer header", "/who", "Bearer good", http.StatusOK},
		{"lowercase scheme", "/who", "bearer good", http.StatusOK},
		{"query token ignored", "/who?token=good", "", http.StatusUnauthorized},
		{"missing", "/who", "", http.StatusUnauthorized},
		{"wrong scheme", "/who", "Basic good", http.StatusUnauthorized},
		{"bad token", "/who", "Bearer bad", http.StatusUnauthorized},
		{"feed bearer header", "/feed.ics", "Bearer good", http.StatusOK},
		{"feed query token", "/feed.ics?token=good", "", http.StatusOK},
		{"feed bad query token", "/feed.ics?token=bad", "", http.StatusUnauthorized},
		{"feed missing", "/feed.ics", "", http.StatusUnauthorized},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.target, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tc.status, rec.Code)
			if tc.status == http.StatusOK {
				assert.Equal(t, "OFFICE", rec.Body.String())
			}
		})
	}
}
