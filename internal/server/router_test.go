package server_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/oggyb/storefront/internal/app"
	"github.com/oggyb/storefront/internal/cache"
	"github.com/oggyb/storefront/internal/config"
	"github.com/oggyb/storefront/internal/db"
	"github.com/oggyb/storefront/internal/logger"
	"github.com/oggyb/storefront/internal/server"
)

func setupRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dbName := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	gdb, err := gorm.Open(sqlite.Open(dbName), &gorm.Config{
		NowFunc:                func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.Migrate(gdb))

	mr := miniredis.RunT(t)
	cfg := &config.Config{}
	cfg.Redis.Addr = mr.Addr()

	appCtx := app.New(gdb, cache.NewRedisCache(cfg), logger.L())
	return server.NewRouter(appCtx), gdb
}

func doJSON(router *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealthcheck(t *testing.T) {
	router, _ := setupRouter(t)

	w := doJSON(router, http.MethodGet, "/healthcheck", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestProtectedRoutesRejectAnonymous(t *testing.T) {
	router, _ := setupRouter(t)

	for _, path := range []string{"/api/cart", "/api/wishlist", "/api/orders", "/api/discounts/tiered"} {
		w := doJSON(router, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)

		var resp struct {
			Error struct {
				Code string `json:"code"`
			} `json:"error"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), path)
		assert.Equal(t, "unauthorized", resp.Error.Code, path)
	}
}

func TestProtectedRoutesRejectBogusToken(t *testing.T) {
	router, _ := setupRouter(t)

	w := doJSON(router, http.MethodGet, "/api/cart", "not-a-session", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAnonymousRecommendationsServeFeatured(t *testing.T) {
	router, gdb := setupRouter(t)

	cat := db.Category{Slug: "audio", Name: "Audio"}
	require.NoError(t, gdb.Create(&cat).Error)
	require.NoError(t, gdb.Create(&db.Product{
		Slug: "earbuds", Name: "Earbuds", Price: 79.99, Featured: true, CategoryID: cat.ID,
	}).Error)

	w := doJSON(router, http.MethodGet, "/api/recommendations", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Products []struct {
			Slug string `json:"slug"`
		} `json:"products"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Products, 1)
	assert.Equal(t, "earbuds", resp.Products[0].Slug)
}

// Full session lifecycle: register, login, hit a protected route, logout,
// verify the token died with the session.
func TestSessionLifecycle(t *testing.T) {
	router, gdb := setupRouter(t)

	cat := db.Category{Slug: "laptops", Name: "Laptops"}
	require.NoError(t, gdb.Create(&cat).Error)
	product := db.Product{Slug: "laptop-mid", Name: "Laptop Mid", Price: 549.99, CategoryID: cat.ID}
	require.NoError(t, gdb.Create(&product).Error)

	w := doJSON(router, http.MethodPost, "/api/register", "", gin.H{
		"email": "bob@example.com", "username": "bob", "password": "hunter22",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(router, http.MethodPost, "/api/login", "", gin.H{
		"email": "bob@example.com", "password": "hunter22",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var login struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))
	require.NotEmpty(t, login.Token)

	w = doJSON(router, http.MethodPost, "/api/cart", login.Token, gin.H{
		"productId": product.ID, "quantity": 2,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(router, http.MethodGet, "/api/cart", login.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var cart struct {
		Cart struct {
			Items []struct {
				Quantity int `json:"quantity"`
			} `json:"items"`
			Total float64 `json:"total"`
		} `json:"cart"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cart))
	require.Len(t, cart.Cart.Items, 1)
	assert.Equal(t, 2, cart.Cart.Items[0].Quantity)
	assert.InDelta(t, 1099.98, cart.Cart.Total, 0.001)

	w = doJSON(router, http.MethodPost, "/api/logout", login.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, http.MethodGet, "/api/cart", login.Token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestWrongPasswordIsUnauthorized(t *testing.T) {
	router, _ := setupRouter(t)

	w := doJSON(router, http.MethodPost, "/api/register", "", gin.H{
		"email": "eve@example.com", "username": "eve", "password": "correct-horse",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(router, http.MethodPost, "/api/login", "", gin.H{
		"email": "eve@example.com", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
