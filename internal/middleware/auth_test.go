package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret")

func mint(t *testing.T, secret []byte, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	require.NoError(t, err)
	return token
}

func invoke(token string, viaCookie bool) (*httptest.ResponseRecorder, error) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		if viaCookie {
			req.AddCookie(&http.Cookie{Name: "accessToken", Value: token})
		} else {
			req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
		}
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := RequireUser(testSecret)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	return rec, handler(c)
}

func TestRequireUser(t *testing.T) {
	userID := uuid.New()
	token := mint(t, testSecret, jwt.MapClaims{
		"sub": userID.String(),
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	rec, err := invoke(token, false)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	// cookie fallback
	rec, err = invoke(token, true)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireUser_Rejections(t *testing.T) {
	cases := map[string]string{
		"missing token": "",
		"garbage":       "not-a-jwt",
		"wrong secret": mint(t, []byte("other"), jwt.MapClaims{
			"sub": uuid.NewString(),
			"exp": time.Now().Add(time.Hour).Unix(),
		}),
		"expired": mint(t, testSecret, jwt.MapClaims{
			"sub": uuid.NewString(),
			"exp": time.Now().Add(-time.Hour).Unix(),
		}),
		"non-uuid subject": mint(t, testSecret, jwt.MapClaims{
			"sub": "42",
			"exp": time.Now().Add(time.Hour).Unix(),
		}),
	}

	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := invoke(token, false)
			var he *echo.HTTPError
			require.ErrorAs(t, err, &he)
			assert.Equal(t, http.StatusUnauthorized, he.Code)
		})
	}
}

func TestUserIDAndRole(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	_, err := UserID(c)
	assert.Error(t, err)
	assert.False(t, IsAdmin(c))

	id := uuid.New()
	c.Set("user_id", id.String())
	c.Set("role", "admin")

	got, err := UserID(c)
	require.NoError(t, err)
	assert.Equal(t, id, got)
	assert.True(t, IsAdmin(c))
}
