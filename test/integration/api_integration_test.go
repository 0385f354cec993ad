package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"promokiosk/internal/auth"
	"promokiosk/internal/handler"
	"promokiosk/internal/model"
	"promokiosk/internal/repository"
	"promokiosk/internal/router"
	"promokiosk/internal/service"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestServer wires the full HTTP stack against the test database.
func newTestServer(testDB *TestDB) http.Handler {
	logger := zerolog.Nop()

	userRepo := repository.NewUserRepository(testDB.Pool, logger)
	storeRepo := repository.NewStoreRepository(testDB.Pool, logger)
	adminRepo := repository.NewAdminRepository(testDB.Pool, logger)
	promoRepo := repository.NewPromotionRepository(testDB.Pool, logger)
	couponRepo := repository.NewCouponRepository(testDB.Pool, logger)
	statsRepo := repository.NewStatsRepository(testDB.Pool, logger)

	storeService := service.NewStoreService(storeRepo, userRepo, logger)
	adminService := service.NewAdminService(adminRepo, storeRepo, logger)
	promotionService := service.NewPromotionService(promoRepo, storeRepo, logger)
	couponService := service.NewCouponService(couponRepo, storeRepo, logger)
	statsService := service.NewStatsService(statsRepo, storeRepo, logger)

	tokens := auth.NewTokenIssuer("integration-secret", time.Hour)

	storeHandler := handler.NewStoreHandler(storeService, logger)
	couponHandler := handler.NewCouponHandler(couponService, logger)
	adminHandler := handler.NewAdminHandler(adminService, tokens, logger)
	promotionHandler := handler.NewPromotionHandler(promotionService, logger)
	statsHandler := handler.NewStatsHandler(statsService, nil, logger)

	return router.New(storeHandler, couponHandler, adminHandler, promotionHandler, statsHandler, tokens, logger)
}

func doJSON(t *testing.T, srv http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestAPI_Integration_FullFlow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testDB := SetupTestDB(t)
	srv := newTestServer(testDB)

	SeedAdmin(t, testDB.Pool, "boss", "masterpass", model.RoleMaster, nil)

	// Admin login
	rec := doJSON(t, srv, http.MethodPost, "/api/admin/login", "", model.LoginRequest{Login: "boss", Password: "masterpass"})
	require.Equal(t, http.StatusOK, rec.Code)
	login := decode[model.LoginResponse](t, rec)
	require.NotEmpty(t, login.Token)
	token := login.Token

	// Create a store
	rec = doJSON(t, srv, http.MethodPost, "/api/admin/stores", token, model.StoreRequest{
		City: "Riga", Address: "Brivibas iela 1", Name: "Central",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	store := decode[model.Store](t, rec)

	// Duplicate store is rejected
	rec = doJSON(t, srv, http.MethodPost, "/api/admin/stores", token, model.StoreRequest{
		City: "Riga", Address: "Brivibas iela 1", Name: "Central",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Create a promotion live today
	rec = doJSON(t, srv, http.MethodPost, "/api/admin/promotions", token, model.PromotionRequest{
		StoreID:     store.ID,
		Description: "Free pastry",
		StartDate:   time.Now().UTC().Format(model.DateLayoutDayFirst),
		Duration:    30,
		MaxCoupons:  100,
		ValidDays:   3,
		StartsToday: true,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	// Shopper picks the store
	rec = doJSON(t, srv, http.MethodPost, "/api/users/555/store", "", map[string]any{"storeId": store.ID})
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/api/users/555/store", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, store.ID, decode[model.Store](t, rec).ID)

	// Issue a coupon
	rec = doJSON(t, srv, http.MethodPost, "/api/coupons", "", model.IssueRequest{ExternalUserID: 555})
	require.Equal(t, http.StatusCreated, rec.Code)
	issued := decode[model.IssueResult](t, rec)
	assert.Len(t, issued.Code, 6)
	assert.Equal(t, "Free pastry", issued.Description)

	// Daily limit on the second attempt
	rec = doJSON(t, srv, http.MethodPost, "/api/coupons", "", model.IssueRequest{ExternalUserID: 555})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, model.ErrCodeDailyLimitReached, decode[model.ErrorResponse](t, rec).Error)

	// Owner sees the coupon
	rec = doJSON(t, srv, http.MethodGet, "/api/users/555/coupons", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	coupons := decode[[]model.ActiveCoupon](t, rec)
	require.Len(t, coupons, 1)
	assert.Equal(t, issued.Code, coupons[0].Code)

	// Redeem it
	rec = doJSON(t, srv, http.MethodPost, "/api/redemptions", "", model.RedeemRequest{Code: issued.Code})
	require.Equal(t, http.StatusOK, rec.Code)
	redeemed := decode[model.RedeemResult](t, rec)
	assert.Equal(t, model.RedemptionSuccess, redeemed.Status)
	assert.Equal(t, int64(555), redeemed.Receipt.OwnerExternalID)

	// Replay reads as not found
	rec = doJSON(t, srv, http.MethodPost, "/api/redemptions", "", model.RedeemRequest{Code: issued.Code})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Stats reflect the flow
	rec = doJSON(t, srv, http.MethodGet, "/api/admin/stats", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decode[model.GlobalStats](t, rec)
	assert.Equal(t, 1, stats.TotalStores)
	assert.Equal(t, 1, stats.TotalUsers)
	assert.Equal(t, 1, stats.ActivePromotions)
	assert.Equal(t, model.CouponCounts{Issued: 1, Redeemed: 1, RedemptionRate: 100.0}, stats.AllTime)
}

func TestAPI_Integration_AdminScoping(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testDB := SetupTestDB(t)
	srv := newTestServer(testDB)

	storeA := SeedStore(t, testDB.Pool, "Riga", "Brivibas iela 1", "Central")
	storeB := SeedStore(t, testDB.Pool, "Liepaja", "Liela iela 2", "Port")
	SeedAdmin(t, testDB.Pool, "riga-admin", "storepass", model.RoleStore, &storeA)

	rec := doJSON(t, srv, http.MethodPost, "/api/admin/login", "", model.LoginRequest{Login: "riga-admin", Password: "storepass"})
	require.Equal(t, http.StatusOK, rec.Code)
	token := decode[model.LoginResponse](t, rec).Token

	// No token at all
	rec = doJSON(t, srv, http.MethodGet, "/api/admin/promotions", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Store admin cannot reach master-only surface
	rec = doJSON(t, srv, http.MethodPost, "/api/admin/stores", token, model.StoreRequest{City: "x", Address: "y", Name: "z"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = doJSON(t, srv, http.MethodGet, "/api/admin/stats", token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Store admin cannot create promotions for another store
	rec = doJSON(t, srv, http.MethodPost, "/api/admin/promotions", token, model.PromotionRequest{
		StoreID:     storeB,
		Description: "Sneaky",
		StartDate:   "10.06.2025",
		ValidDays:   3,
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// But may manage their own
	rec = doJSON(t, srv, http.MethodPost, "/api/admin/promotions", token, model.PromotionRequest{
		StoreID:     storeA,
		Description: "Legit",
		StartDate:   time.Now().UTC().Format(model.DateLayoutDayFirst),
		Duration:    10,
		ValidDays:   3,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	promo := decode[model.Promotion](t, rec)

	// And view their own store's stats
	rec = doJSON(t, srv, http.MethodGet, fmt.Sprintf("/api/admin/stats/stores/%s", storeA), token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = doJSON(t, srv, http.MethodGet, fmt.Sprintf("/api/admin/stats/stores/%s", storeB), token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Listing is silently scoped to their store
	rec = doJSON(t, srv, http.MethodGet, "/api/admin/promotions?storeId="+storeB.String(), token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	listings := decode[[]model.PromotionListing](t, rec)
	require.Len(t, listings, 1)
	assert.Equal(t, promo.ID, listings[0].ID)
}
