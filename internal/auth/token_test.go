package auth

import (
	"testing"
	"time"

	"promokiosk/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenIssuer_IssueAndParse(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)

	storeID := uuid.New()
	admin := &model.Admin{
		ID:      uuid.New(),
		Login:   "store-admin",
		Role:    model.RoleStore,
		StoreID: &storeID,
	}

	token, err := issuer.Issue(admin)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := issuer.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, admin.ID, claims.AdminID)
	assert.Equal(t, "store-admin", claims.Login)
	assert.Equal(t, model.RoleStore, claims.Role)
	require.NotNil(t, claims.StoreID)
	assert.Equal(t, storeID, *claims.StoreID)
}

func TestTokenIssuer_MasterHasNoStore(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)

	admin := &model.Admin{
		ID:    uuid.New(),
		Login: "master",
		Role:  model.RoleMaster,
	}

	token, err := issuer.Issue(admin)
	require.NoError(t, err)

	claims, err := issuer.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, model.RoleMaster, claims.Role)
	assert.Nil(t, claims.StoreID)
}

func TestTokenIssuer_Parse_WrongSecret(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)
	other := NewTokenIssuer("another-secret", time.Hour)

	token, err := issuer.Issue(&model.Admin{ID: uuid.New(), Login: "master", Role: model.RoleMaster})
	require.NoError(t, err)

	claims, err := other.Parse(token)
	assert.Error(t, err)
	assert.Nil(t, claims)
}

func TestTokenIssuer_Parse_Expired(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", -time.Minute)

	token, err := issuer.Issue(&model.Admin{ID: uuid.New(), Login: "master", Role: model.RoleMaster})
	require.NoError(t, err)

	claims, err := issuer.Parse(token)
	assert.Error(t, err)
	assert.Nil(t, claims)
}

func TestTokenIssuer_Parse_Garbage(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)

	claims, err := issuer.Parse("not-a-token")
	assert.Error(t, err)
	assert.Nil(t, claims)
}
