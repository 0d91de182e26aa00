package users

import (
	"context"
	"testing"

	"github.com/angelmondragon/tienda-backend/pkg/db"
	"github.com/angelmondragon/tienda-backend/pkg/db/models"
	"github.com/angelmondragon/tienda-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/tienda-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupUsersTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), db.GormConfig())
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&models.User{}))
	return conn
}

func TestPushTokenRoundTrip(t *testing.T) {
	conn := setupUsersTestDB(t)
	user := models.User{Name: "Ana", Email: "ana@example.com", Role: enums.UserRoleCustomer}
	require.NoError(t, conn.Create(&user).Error)

	svc, err := NewService(NewRepository(conn))
	require.NoError(t, err)
	ctx := context.Background()

	token, err := svc.PushToken(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, token)

	require.NoError(t, svc.SavePushToken(ctx, user.ID, "  fcm-device-token "))
	token, err = svc.PushToken(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "fcm-device-token", token)

	require.NoError(t, svc.SavePushToken(ctx, user.ID, ""))
	token, err = svc.PushToken(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestPushTokenErrors(t *testing.T) {
	conn := setupUsersTestDB(t)
	svc, err := NewService(NewRepository(conn))
	require.NoError(t, err)
	ctx := context.Background()

	assert.True(t, pkgerrors.IsCode(svc.SavePushToken(ctx, 42, "t"), pkgerrors.CodeNotFound))
	assert.True(t, pkgerrors.IsCode(svc.SavePushToken(ctx, 0, "t"), pkgerrors.CodeUnauthorized))

	_, err = svc.PushToken(ctx, 42)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}
