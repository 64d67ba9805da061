package repo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"identity/internal/apperr"
	"identity/internal/models"
)

const (
	companyA = "11111111-1111-1111-1111-111111111111"
	companyB = "22222222-2222-2222-2222-222222222222"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Company{},
		&models.User{},
		&models.OrganizationUnit{},
		&models.Position{},
		&models.Customer{},
		&models.Subcontractor{},
		&models.PasswordResetOTP{},
	))
	return db
}

func seedUser(t *testing.T, s *UserStore, companyID, email string) *models.User {
	t.Helper()
	u := models.User{CompanyID: companyID, Email: email, HashedPassword: "x", IsActive: true}
	require.NoError(t, s.Create(context.Background(), &u))
	return &u
}

func TestUserTenantIsolation(t *testing.T) {
	s := NewUserStore(newTestDB(t))
	ctx := context.Background()
	u := seedUser(t, s, companyA, "ana@example.com")

	// чужой арендатор — not found, не forbidden
	_, err := s.GetByID(ctx, companyB, u.ID)
	assert.True(t, apperr.IsNotFound(err))

	_, err = s.Update(ctx, companyB, u.ID, map[string]any{"first_name": "Eve"})
	assert.True(t, apperr.IsNotFound(err))

	err = s.Delete(ctx, companyB, u.ID)
	assert.True(t, apperr.IsNotFound(err))

	// свой и суперпользователь видят
	got, err := s.GetByID(ctx, companyA, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	_, err = s.GetByID(ctx, "", u.ID)
	assert.NoError(t, err)
}

func TestUserListScopedByCompany(t *testing.T) {
	s := NewUserStore(newTestDB(t))
	ctx := context.Background()
	seedUser(t, s, companyA, "a1@example.com")
	seedUser(t, s, companyA, "a2@example.com")
	seedUser(t, s, companyB, "b1@example.com")

	listA, err := s.List(ctx, companyA)
	require.NoError(t, err)
	assert.Len(t, listA, 2)

	all, err := s.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestUserEmailNormalizedAndUnique(t *testing.T) {
	s := NewUserStore(newTestDB(t))
	ctx := context.Background()

	u := models.User{CompanyID: companyA, Email: "  Ana@Example.COM ", HashedPassword: "x"}
	require.NoError(t, s.Create(ctx, &u))
	assert.Equal(t, "ana@example.com", u.Email)

	dup := models.User{CompanyID: companyB, Email: "ana@example.com", HashedPassword: "x"}
	err := s.Create(ctx, &dup)
	assert.ErrorIs(t, err, apperr.ErrConflict)

	got, err := s.GetByEmail(ctx, "ANA@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
}

func TestUserDeleteCascadesOTP(t *testing.T) {
	db := newTestDB(t)
	s := NewUserStore(db)
	ctx := context.Background()
	u := seedUser(t, s, companyA, "ana@example.com")

	require.NoError(t, db.Create(&models.PasswordResetOTP{
		UserID: u.ID, CodeHash: "h", ExpiresAt: u.CreatedAt,
	}).Error)

	require.NoError(t, s.Delete(ctx, companyA, u.ID))

	var count int64
	require.NoError(t, db.Model(&models.PasswordResetOTP{}).
		Where("user_id = ?", u.ID).Count(&count).Error)
	assert.Zero(t, count)
}

func TestPositionRequiresUnitInSameCompany(t *testing.T) {
	db := newTestDB(t)
	positions := NewPositionStore(db)
	ctx := context.Background()

	unit := models.OrganizationUnit{CompanyID: companyA, Name: "HQ", Path: "/x", Level: 0}
	require.NoError(t, db.Create(&unit).Error)

	p := models.Position{CompanyID: companyA, OrganizationUnitID: unit.ID, Title: "Engineer"}
	require.NoError(t, positions.Create(ctx, &p))

	// подразделение чужой компании выглядит несуществующим
	foreign := models.Position{CompanyID: companyB, OrganizationUnitID: unit.ID, Title: "Spy"}
	err := positions.Create(ctx, &foreign)
	assert.True(t, apperr.IsNotFound(err))
}

func TestSetAvatarTogglesFlag(t *testing.T) {
	db := newTestDB(t)
	s := NewUserStore(db)
	ctx := context.Background()
	u := seedUser(t, s, companyA, "ana@example.com")

	require.NoError(t, s.SetAvatar(ctx, companyA, u.ID, "file-1"))
	got, err := s.GetByID(ctx, companyA, u.ID)
	require.NoError(t, err)
	assert.True(t, got.HasAvatar)
	assert.Equal(t, "file-1", got.AvatarFileID)

	require.NoError(t, s.SetAvatar(ctx, companyA, u.ID, ""))
	got, err = s.GetByID(ctx, companyA, u.ID)
	require.NoError(t, err)
	assert.False(t, got.HasAvatar)
	assert.Empty(t, got.AvatarFileID)
}
