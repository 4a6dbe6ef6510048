package tests

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jdirocco/forno/internal/infra"
	"github.com/jdirocco/forno/internal/model"
	"github.com/jdirocco/forno/internal/router"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newAPIRouter builds the real routing table. DB and Redis stay nil: denied
// requests never get past the role gates, and the allowed ones use an
// invalid UUID so the handler stops at path validation.
func newAPIRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return router.New(newTestCfg(), nil, nil, infra.NewCircuitBreaker(infra.DefaultCBConfig()), nil)
}

func signShopToken(t *testing.T, shopID *string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"user_id": uuid.NewString(), "username": "negozio", "role": string(model.RoleShop),
		"exp": time.Now().Add(time.Hour).Unix(), "iat": time.Now().Unix(),
	}
	if shopID != nil {
		claims["shop_id"] = *shopID
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := tok.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return s
}

func doAuthed(r *gin.Engine, method, path, token string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)
	return w
}

// Status changes, draft edits and returns registration belong to the people
// who handle the goods; the accountant only creates and consults.
func TestShipmentRouteRoleGates(t *testing.T) {
	r := newAPIRouter()
	id := uuid.NewString()

	cases := []struct {
		name   string
		role   model.UserRole
		method string
		path   string
		want   int
	}{
		{"accountant cannot change status", model.RoleAccountant, http.MethodPut, "/api/shipments/" + id + "/status?status=IN_CONSEGNA", http.StatusForbidden},
		{"accountant cannot attach returns", model.RoleAccountant, http.MethodPost, "/api/shipments/" + id + "/returns", http.StatusForbidden},
		{"accountant cannot edit a draft", model.RoleAccountant, http.MethodPut, "/api/shipments/" + id, http.StatusForbidden},
		{"shop cannot confirm", model.RoleShop, http.MethodPost, "/api/shipments/" + id + "/confirm", http.StatusForbidden},
		{"driver cannot delete", model.RoleDriver, http.MethodDelete, "/api/shipments/" + id, http.StatusForbidden},
		{"driver cannot resend email", model.RoleDriver, http.MethodPost, "/api/shipments/" + id + "/send-email", http.StatusForbidden},
		{"driver passes the status gate", model.RoleDriver, http.MethodPut, "/api/shipments/not-a-uuid/status?status=IN_CONSEGNA", http.StatusBadRequest},
		{"driver passes the returns gate", model.RoleDriver, http.MethodPost, "/api/shipments/not-a-uuid/returns", http.StatusBadRequest},
		{"driver passes the edit gate", model.RoleDriver, http.MethodPut, "/api/shipments/not-a-uuid", http.StatusBadRequest},
		{"driver passes the whatsapp gate", model.RoleDriver, http.MethodPost, "/api/shipments/not-a-uuid/send-whatsapp", http.StatusBadRequest},
		{"accountant passes the shop listing gate", model.RoleAccountant, http.MethodGet, "/api/shipments/shop/not-a-uuid", http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tok := signToken(t, uuid.NewString(), tc.role, time.Hour)
			w := doAuthed(r, tc.method, tc.path, tok)
			assert.Equal(t, tc.want, w.Code)
		})
	}
}

// A SHOP account may hit the per-shop listing, but one without a linked shop
// gets an empty result, never another shop's data.
func TestShopListingWithoutLinkedShopIsEmpty(t *testing.T) {
	r := newAPIRouter()
	tok := signShopToken(t, nil)

	w := doAuthed(r, http.MethodGet, "/api/shipments/shop/"+uuid.NewString(), tok)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", strings.TrimSpace(w.Body.String()))
}
