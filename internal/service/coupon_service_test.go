package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"promokiosk/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockCouponRepository is a mock implementation of CouponRepository.
type MockCouponRepository struct {
	mock.Mock
}

func (m *MockCouponRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if tx, ok := args.Get(0).(pgx.Tx); ok {
		return tx, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCouponRepository) LockUserByExternalID(ctx context.Context, tx pgx.Tx, externalID int64) (*model.User, error) {
	args := m.Called(ctx, tx, externalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockCouponRepository) HasCouponOnDay(ctx context.Context, tx pgx.Tx, userID uuid.UUID, day time.Time) (bool, error) {
	args := m.Called(ctx, tx, userID, day)
	return args.Bool(0), args.Error(1)
}

func (m *MockCouponRepository) StorePromotionsWithIssued(ctx context.Context, tx pgx.Tx, storeID uuid.UUID) ([]model.PromotionWithIssued, error) {
	args := m.Called(ctx, tx, storeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.PromotionWithIssued), args.Error(1)
}

func (m *MockCouponRepository) CountIssuedLocked(ctx context.Context, tx pgx.Tx, promotionID uuid.UUID) (int, error) {
	args := m.Called(ctx, tx, promotionID)
	return args.Int(0), args.Error(1)
}

func (m *MockCouponRepository) Insert(ctx context.Context, tx pgx.Tx, coupon *model.Coupon) (bool, error) {
	args := m.Called(ctx, tx, coupon)
	return args.Bool(0), args.Error(1)
}

func (m *MockCouponRepository) FindForRedemption(ctx context.Context, tx pgx.Tx, code string) (*model.RedemptionCandidate, error) {
	args := m.Called(ctx, tx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.RedemptionCandidate), args.Error(1)
}

func (m *MockCouponRepository) MarkRedeemed(ctx context.Context, tx pgx.Tx, couponID uuid.UUID, redeemedAt time.Time) error {
	args := m.Called(ctx, tx, couponID, redeemedAt)
	return args.Error(0)
}

func (m *MockCouponRepository) ListActiveByExternalID(ctx context.Context, externalID int64) ([]model.ActiveCouponRow, error) {
	args := m.Called(ctx, externalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ActiveCouponRow), args.Error(1)
}

// MockStoreRepository is a mock implementation of StoreRepository.
type MockStoreRepository struct {
	mock.Mock
}

func (m *MockStoreRepository) GetAll(ctx context.Context) ([]model.Store, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Store), args.Error(1)
}

func (m *MockStoreRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Store, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Store), args.Error(1)
}

func (m *MockStoreRepository) Create(ctx context.Context, store *model.Store) error {
	args := m.Called(ctx, store)
	return args.Error(0)
}

func (m *MockStoreRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

// MockTx is a minimal mock implementation of pgx.Tx for testing.
type MockTx struct {
	mock.Mock
}

func (m *MockTx) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockTx) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// Stub methods to satisfy pgx.Tx interface - these are not used in our tests
func (m *MockTx) Begin(ctx context.Context) (pgx.Tx, error) { return nil, nil }
func (m *MockTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (m *MockTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (m *MockTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (m *MockTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (m *MockTx) Exec(ctx context.Context, sql string, arguments ...any) (commandTag pgconn.CommandTag, err error) {
	return
}
func (m *MockTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (m *MockTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row { return nil }
func (m *MockTx) Conn() *pgx.Conn                                               { return nil }

// newTestCouponService wires a coupon service with a frozen clock and a
// deterministic promotion draw.
func newTestCouponService(couponRepo *MockCouponRepository, storeRepo *MockStoreRepository, now time.Time) *couponService {
	svc := NewCouponService(couponRepo, storeRepo, zerolog.Nop()).(*couponService)
	svc.now = func() time.Time { return now }
	svc.randIndex = func(n int) (int, error) { return 0, nil }
	return svc
}

func TestCouponService_Issue_Success(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 10, 15, 0, 0, 0, time.UTC)

	storeID := uuid.New()
	userID := uuid.New()
	promoID := uuid.New()

	user := &model.User{ID: userID, ExternalID: 42, StoreID: &storeID}
	promos := []model.PromotionWithIssued{
		{
			Promotion: model.Promotion{
				ID: promoID, StoreID: storeID, Description: "Free pastry",
				StartDate: "01.06.2025", Duration: 30, MaxCoupons: 100, ValidDays: 3, StartsToday: true,
			},
			IssuedCount: 5,
		},
	}

	mockRepo := new(MockCouponRepository)
	mockStoreRepo := new(MockStoreRepository)
	mockTx := new(MockTx)

	mockRepo.On("BeginTx", ctx).Return(mockTx, nil)
	mockRepo.On("LockUserByExternalID", ctx, mockTx, int64(42)).Return(user, nil)
	mockRepo.On("HasCouponOnDay", ctx, mockTx, userID, now).Return(false, nil)
	mockRepo.On("StorePromotionsWithIssued", ctx, mockTx, storeID).Return(promos, nil)
	mockRepo.On("CountIssuedLocked", ctx, mockTx, promoID).Return(5, nil)
	mockRepo.On("Insert", ctx, mockTx, mock.AnythingOfType("*model.Coupon")).Return(true, nil)
	mockTx.On("Commit", ctx).Return(nil)
	mockTx.On("Rollback", ctx).Return(pgx.ErrTxClosed)
	mockStoreRepo.On("GetByID", ctx, storeID).Return(&model.Store{ID: storeID, Address: "Main st 1"}, nil)

	svc := newTestCouponService(mockRepo, mockStoreRepo, now)

	result, err := svc.Issue(ctx, 42)

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Len(t, result.Code, 6)
	assert.Equal(t, "Free pastry", result.Description)
	assert.Equal(t, "Main st 1", result.StoreAddress)
	assert.Equal(t, time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC), result.IssuedOn)
	assert.Equal(t, time.Date(2025, 6, 13, 0, 0, 0, 0, time.UTC), result.ValidUntil)
	assert.True(t, result.StartsToday)

	mockRepo.AssertExpectations(t)
	mockTx.AssertExpectations(t)
	mockStoreRepo.AssertExpectations(t)
}

func TestCouponService_Issue_NoUser(t *testing.T) {
	ctx := context.Background()

	mockRepo := new(MockCouponRepository)
	mockTx := new(MockTx)

	mockRepo.On("BeginTx", ctx).Return(mockTx, nil)
	mockRepo.On("LockUserByExternalID", ctx, mockTx, int64(42)).Return(nil, nil)
	mockTx.On("Rollback", ctx).Return(nil)

	svc := newTestCouponService(mockRepo, new(MockStoreRepository), time.Now())

	result, err := svc.Issue(ctx, 42)

	assert.Equal(t, model.ErrNoStoreSelected, err)
	assert.Nil(t, result)
	mockTx.AssertNotCalled(t, "Commit")
}

func TestCouponService_Issue_NoStoreSelected(t *testing.T) {
	ctx := context.Background()

	user := &model.User{ID: uuid.New(), ExternalID: 42, StoreID: nil}

	mockRepo := new(MockCouponRepository)
	mockTx := new(MockTx)

	mockRepo.On("BeginTx", ctx).Return(mockTx, nil)
	mockRepo.On("LockUserByExternalID", ctx, mockTx, int64(42)).Return(user, nil)
	mockTx.On("Rollback", ctx).Return(nil)

	svc := newTestCouponService(mockRepo, new(MockStoreRepository), time.Now())

	result, err := svc.Issue(ctx, 42)

	assert.Equal(t, model.ErrNoStoreSelected, err)
	assert.Nil(t, result)
	mockRepo.AssertNotCalled(t, "HasCouponOnDay")
}

func TestCouponService_Issue_DailyLimit(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 10, 15, 0, 0, 0, time.UTC)

	storeID := uuid.New()
	userID := uuid.New()
	user := &model.User{ID: userID, ExternalID: 42, StoreID: &storeID}

	mockRepo := new(MockCouponRepository)
	mockTx := new(MockTx)

	mockRepo.On("BeginTx", ctx).Return(mockTx, nil)
	mockRepo.On("LockUserByExternalID", ctx, mockTx, int64(42)).Return(user, nil)
	mockRepo.On("HasCouponOnDay", ctx, mockTx, userID, now).Return(true, nil)
	mockTx.On("Rollback", ctx).Return(nil)

	svc := newTestCouponService(mockRepo, new(MockStoreRepository), now)

	result, err := svc.Issue(ctx, 42)

	assert.Equal(t, model.ErrDailyLimitReached, err)
	assert.Nil(t, result)
	mockRepo.AssertNotCalled(t, "StorePromotionsWithIssued")
}

func TestCouponService_Issue_NoActivePromotions(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 10, 15, 0, 0, 0, time.UTC)

	storeID := uuid.New()
	userID := uuid.New()
	user := &model.User{ID: userID, ExternalID: 42, StoreID: &storeID}

	// Present in the store but outside its window as of now.
	promos := []model.PromotionWithIssued{
		{Promotion: model.Promotion{ID: uuid.New(), StartDate: "01.05.2025", Duration: 10, ValidDays: 3}},
	}

	mockRepo := new(MockCouponRepository)
	mockTx := new(MockTx)

	mockRepo.On("BeginTx", ctx).Return(mockTx, nil)
	mockRepo.On("LockUserByExternalID", ctx, mockTx, int64(42)).Return(user, nil)
	mockRepo.On("HasCouponOnDay", ctx, mockTx, userID, now).Return(false, nil)
	mockRepo.On("StorePromotionsWithIssued", ctx, mockTx, storeID).Return(promos, nil)
	mockTx.On("Rollback", ctx).Return(nil)

	svc := newTestCouponService(mockRepo, new(MockStoreRepository), now)

	result, err := svc.Issue(ctx, 42)

	assert.Equal(t, model.ErrNoActivePromotions, err)
	assert.Nil(t, result)
	mockRepo.AssertNotCalled(t, "CountIssuedLocked")
	mockRepo.AssertNotCalled(t, "Insert")
}

func TestCouponService_Issue_CapRecheckDropsCandidate(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 10, 15, 0, 0, 0, time.UTC)

	storeID := uuid.New()
	userID := uuid.New()
	cappedID := uuid.New()
	openID := uuid.New()
	user := &model.User{ID: userID, ExternalID: 42, StoreID: &storeID}

	promos := []model.PromotionWithIssued{
		{
			Promotion:   model.Promotion{ID: cappedID, StoreID: storeID, Description: "nearly full", StartDate: "01.06.2025", Duration: 30, MaxCoupons: 10, ValidDays: 3},
			IssuedCount: 9,
		},
		{
			Promotion:   model.Promotion{ID: openID, StoreID: storeID, Description: "open", StartDate: "01.06.2025", Duration: 30, MaxCoupons: 10, ValidDays: 3},
			IssuedCount: 0,
		},
	}

	mockRepo := new(MockCouponRepository)
	mockStoreRepo := new(MockStoreRepository)
	mockTx := new(MockTx)

	mockRepo.On("BeginTx", ctx).Return(mockTx, nil)
	mockRepo.On("LockUserByExternalID", ctx, mockTx, int64(42)).Return(user, nil)
	mockRepo.On("HasCouponOnDay", ctx, mockTx, userID, now).Return(false, nil)
	mockRepo.On("StorePromotionsWithIssued", ctx, mockTx, storeID).Return(promos, nil)
	// The first draw lost a race: the cap filled up since the scan.
	mockRepo.On("CountIssuedLocked", ctx, mockTx, cappedID).Return(10, nil)
	mockRepo.On("CountIssuedLocked", ctx, mockTx, openID).Return(0, nil)
	mockRepo.On("Insert", ctx, mockTx, mock.AnythingOfType("*model.Coupon")).Return(true, nil)
	mockTx.On("Commit", ctx).Return(nil)
	mockTx.On("Rollback", ctx).Return(pgx.ErrTxClosed)
	mockStoreRepo.On("GetByID", ctx, storeID).Return(&model.Store{ID: storeID, Address: "Main st 1"}, nil)

	svc := newTestCouponService(mockRepo, mockStoreRepo, now)

	result, err := svc.Issue(ctx, 42)

	require.NoError(t, err)
	assert.Equal(t, "open", result.Description)
	mockRepo.AssertExpectations(t)
}

func TestCouponService_Issue_CodeCollisionRetries(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 10, 15, 0, 0, 0, time.UTC)

	storeID := uuid.New()
	userID := uuid.New()
	promoID := uuid.New()
	user := &model.User{ID: userID, ExternalID: 42, StoreID: &storeID}

	promos := []model.PromotionWithIssued{
		{Promotion: model.Promotion{ID: promoID, StoreID: storeID, Description: "promo", StartDate: "01.06.2025", Duration: 30, ValidDays: 3}},
	}

	mockRepo := new(MockCouponRepository)
	mockStoreRepo := new(MockStoreRepository)
	mockTx := new(MockTx)

	mockRepo.On("BeginTx", ctx).Return(mockTx, nil)
	mockRepo.On("LockUserByExternalID", ctx, mockTx, int64(42)).Return(user, nil)
	mockRepo.On("HasCouponOnDay", ctx, mockTx, userID, now).Return(false, nil)
	mockRepo.On("StorePromotionsWithIssued", ctx, mockTx, storeID).Return(promos, nil)
	mockRepo.On("CountIssuedLocked", ctx, mockTx, promoID).Return(0, nil)
	// First code is taken, second lands.
	mockRepo.On("Insert", ctx, mockTx, mock.AnythingOfType("*model.Coupon")).Return(false, nil).Once()
	mockRepo.On("Insert", ctx, mockTx, mock.AnythingOfType("*model.Coupon")).Return(true, nil).Once()
	mockTx.On("Commit", ctx).Return(nil)
	mockTx.On("Rollback", ctx).Return(pgx.ErrTxClosed)
	mockStoreRepo.On("GetByID", ctx, storeID).Return(&model.Store{ID: storeID}, nil)

	svc := newTestCouponService(mockRepo, mockStoreRepo, now)

	result, err := svc.Issue(ctx, 42)

	require.NoError(t, err)
	require.NotNil(t, result)
	mockRepo.AssertNumberOfCalls(t, "Insert", 2)
}

func TestCouponService_Issue_BeginTxError(t *testing.T) {
	ctx := context.Background()

	mockRepo := new(MockCouponRepository)
	mockRepo.On("BeginTx", ctx).Return(nil, errors.New("pool exhausted"))

	svc := newTestCouponService(mockRepo, new(MockStoreRepository), time.Now())

	result, err := svc.Issue(ctx, 42)

	require.Error(t, err)
	assert.Nil(t, result)
}

func TestCouponService_Redeem_NotFound(t *testing.T) {
	ctx := context.Background()

	mockRepo := new(MockCouponRepository)
	mockTx := new(MockTx)

	mockRepo.On("BeginTx", ctx).Return(mockTx, nil)
	mockRepo.On("FindForRedemption", ctx, mockTx, "123456").Return(nil, nil)
	mockTx.On("Rollback", ctx).Return(nil)

	svc := newTestCouponService(mockRepo, new(MockStoreRepository), time.Now())

	result, err := svc.Redeem(ctx, "123456")

	require.NoError(t, err)
	assert.Equal(t, model.RedemptionNotFound, result.Status)
	assert.Nil(t, result.Receipt)
	mockRepo.AssertNotCalled(t, "MarkRedeemed")
	mockTx.AssertNotCalled(t, "Commit")
}

func TestCouponService_Redeem_Expired(t *testing.T) {
	ctx := context.Background()
	// Issued 2025-06-01 with 3 valid days: good through 2025-06-04.
	now := time.Date(2025, 6, 5, 10, 0, 0, 0, time.UTC)

	candidate := &model.RedemptionCandidate{
		CouponID:  uuid.New(),
		Code:      "123456",
		IssuedAt:  time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		ValidDays: 3,
	}

	mockRepo := new(MockCouponRepository)
	mockTx := new(MockTx)

	mockRepo.On("BeginTx", ctx).Return(mockTx, nil)
	mockRepo.On("FindForRedemption", ctx, mockTx, "123456").Return(candidate, nil)
	mockTx.On("Rollback", ctx).Return(nil)

	svc := newTestCouponService(mockRepo, new(MockStoreRepository), now)

	result, err := svc.Redeem(ctx, "123456")

	require.NoError(t, err)
	assert.Equal(t, model.RedemptionExpired, result.Status)
	assert.Nil(t, result.Receipt)
	// An expired coupon is never mutated.
	mockRepo.AssertNotCalled(t, "MarkRedeemed")
	mockTx.AssertNotCalled(t, "Commit")
}

func TestCouponService_Redeem_LastValidDay(t *testing.T) {
	ctx := context.Background()
	// Exactly the expiry day is still redeemable.
	now := time.Date(2025, 6, 4, 23, 0, 0, 0, time.UTC)

	couponID := uuid.New()
	candidate := &model.RedemptionCandidate{
		CouponID:        couponID,
		Code:            "123456",
		IssuedAt:        time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		ValidDays:       3,
		Description:     "Free pastry",
		StoreName:       "Central",
		StoreAddress:    "Main st 1",
		StoreCity:       "Riga",
		OwnerExternalID: 42,
	}

	mockRepo := new(MockCouponRepository)
	mockTx := new(MockTx)

	mockRepo.On("BeginTx", ctx).Return(mockTx, nil)
	mockRepo.On("FindForRedemption", ctx, mockTx, "123456").Return(candidate, nil)
	mockRepo.On("MarkRedeemed", ctx, mockTx, couponID, now).Return(nil)
	mockTx.On("Commit", ctx).Return(nil)
	mockTx.On("Rollback", ctx).Return(pgx.ErrTxClosed)

	svc := newTestCouponService(mockRepo, new(MockStoreRepository), now)

	result, err := svc.Redeem(ctx, "123456")

	require.NoError(t, err)
	assert.Equal(t, model.RedemptionSuccess, result.Status)
	require.NotNil(t, result.Receipt)
	assert.Equal(t, "123456", result.Receipt.Code)
	assert.Equal(t, "Free pastry", result.Receipt.Description)
	assert.Equal(t, "Central", result.Receipt.StoreName)
	assert.Equal(t, int64(42), result.Receipt.OwnerExternalID)

	mockRepo.AssertExpectations(t)
	mockTx.AssertExpectations(t)
}

func TestCouponService_ListActive(t *testing.T) {
	ctx := context.Background()

	rows := []model.ActiveCouponRow{
		{
			Code:        "111111",
			Description: "Free pastry",
			IssuedAt:    time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
			ValidDays:   3,
			StartsToday: true,
		},
		{
			Code:        "222222",
			Description: "Discount",
			IssuedAt:    time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC),
			ValidDays:   7,
		},
	}

	mockRepo := new(MockCouponRepository)
	mockRepo.On("ListActiveByExternalID", ctx, int64(42)).Return(rows, nil)

	svc := newTestCouponService(mockRepo, new(MockStoreRepository), time.Now())

	coupons, err := svc.ListActive(ctx, 42)

	require.NoError(t, err)
	require.Len(t, coupons, 2)
	assert.Equal(t, "111111", coupons[0].Code)
	assert.Equal(t, time.Date(2025, 6, 4, 0, 0, 0, 0, time.UTC), coupons[0].ValidUntil)
	// Long-expired coupons still show up; listing is the owner's view.
	assert.Equal(t, time.Date(2025, 5, 8, 0, 0, 0, 0, time.UTC), coupons[1].ValidUntil)
}

func TestGenerateCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code, err := generateCode()
		require.NoError(t, err)
		require.Len(t, code, 6)
		for _, r := range code {
			assert.True(t, r >= '0' && r <= '9')
		}
		seen[code] = true
	}
	// Not a uniqueness guarantee, just a sanity check that codes vary.
	assert.Greater(t, len(seen), 1)
}
