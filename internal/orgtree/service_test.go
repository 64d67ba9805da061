package orgtree

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

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.OrganizationUnit{}, &models.Position{}))
	return db
}

const testCompany = "11111111-1111-1111-1111-111111111111"

func mustCreate(t *testing.T, s *Service, name, parentID string) *models.OrganizationUnit {
	t.Helper()
	u, err := s.Create(context.Background(), CreateInput{
		CompanyID: testCompany,
		Name:      name,
		ParentID:  parentID,
	})
	require.NoError(t, err)
	return u
}

func TestCreateRootAndChild(t *testing.T) {
	s := New(newTestDB(t))

	root := mustCreate(t, s, "HQ", "")
	assert.Equal(t, 0, root.Level)
	assert.Equal(t, "/"+root.ID, root.Path)

	child := mustCreate(t, s, "Engineering", root.ID)
	assert.Equal(t, 1, child.Level)
	assert.Equal(t, root.Path+"/"+child.ID, child.Path)
}

func TestCreateRequiresName(t *testing.T) {
	s := New(newTestDB(t))
	_, err := s.Create(context.Background(), CreateInput{CompanyID: testCompany})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestCreateUnderForeignParent(t *testing.T) {
	s := New(newTestDB(t))
	root := mustCreate(t, s, "HQ", "")

	_, err := s.Create(context.Background(), CreateInput{
		CompanyID: "22222222-2222-2222-2222-222222222222",
		Name:      "Spy Department",
		ParentID:  root.ID,
	})
	assert.True(t, apperr.IsNotFound(err), "foreign parent must look nonexistent, got %v", err)
}

func TestMoveRecomputesSubtree(t *testing.T) {
	s := New(newTestDB(t))
	ctx := context.Background()

	// HQ -> A -> B -> C, и отдельный корень X
	root := mustCreate(t, s, "HQ", "")
	a := mustCreate(t, s, "A", root.ID)
	b := mustCreate(t, s, "B", a.ID)
	c := mustCreate(t, s, "C", b.ID)
	x := mustCreate(t, s, "X", "")

	moved, err := s.Move(ctx, testCompany, a.ID, x.ID)
	require.NoError(t, err)
	assert.Equal(t, x.ID, moved.ParentID)
	assert.Equal(t, 1, moved.Level)
	assert.Equal(t, x.Path+"/"+a.ID, moved.Path)

	gotB, err := s.Get(ctx, testCompany, b.ID)
	require.NoError(t, err)
	assert.Equal(t, moved.Path+"/"+b.ID, gotB.Path)
	assert.Equal(t, 2, gotB.Level)

	gotC, err := s.Get(ctx, testCompany, c.ID)
	require.NoError(t, err)
	assert.Equal(t, gotB.Path+"/"+c.ID, gotC.Path)
	assert.Equal(t, 3, gotC.Level)
}

func TestMoveToRoot(t *testing.T) {
	s := New(newTestDB(t))
	ctx := context.Background()

	root := mustCreate(t, s, "HQ", "")
	a := mustCreate(t, s, "A", root.ID)
	b := mustCreate(t, s, "B", a.ID)

	moved, err := s.Move(ctx, testCompany, a.ID, "")
	require.NoError(t, err)
	assert.Equal(t, "", moved.ParentID)
	assert.Equal(t, 0, moved.Level)
	assert.Equal(t, "/"+a.ID, moved.Path)

	gotB, err := s.Get(ctx, testCompany, b.ID)
	require.NoError(t, err)
	assert.Equal(t, moved.Path+"/"+b.ID, gotB.Path)
	assert.Equal(t, 1, gotB.Level)
}

func TestMoveCycleRejectedAtomically(t *testing.T) {
	s := New(newTestDB(t))
	ctx := context.Background()

	root := mustCreate(t, s, "HQ", "")
	a := mustCreate(t, s, "A", root.ID)
	b := mustCreate(t, s, "B", a.ID)

	_, err := s.Move(ctx, testCompany, a.ID, a.ID)
	assert.ErrorIs(t, err, apperr.ErrCycle)

	_, err = s.Move(ctx, testCompany, a.ID, b.ID)
	assert.ErrorIs(t, err, apperr.ErrCycle)

	// после отказа дерево не изменилось
	gotA, err := s.Get(ctx, testCompany, a.ID)
	require.NoError(t, err)
	assert.Equal(t, root.ID, gotA.ParentID)
	assert.Equal(t, root.Path+"/"+a.ID, gotA.Path)
	assert.Equal(t, 1, gotA.Level)
}

func TestDescendantsOrderedByLevel(t *testing.T) {
	s := New(newTestDB(t))
	ctx := context.Background()

	root := mustCreate(t, s, "HQ", "")
	a := mustCreate(t, s, "A", root.ID)
	b := mustCreate(t, s, "B", a.ID)
	c := mustCreate(t, s, "C", root.ID)

	got, err := s.Descendants(ctx, testCompany, root.ID)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, a.ID, got[0].ID)
	assert.Equal(t, c.ID, got[1].ID)
	assert.Equal(t, b.ID, got[2].ID)
}

func TestAncestorPathRootFirst(t *testing.T) {
	s := New(newTestDB(t))
	ctx := context.Background()

	root := mustCreate(t, s, "HQ", "")
	a := mustCreate(t, s, "A", root.ID)
	b := mustCreate(t, s, "B", a.ID)

	chain, err := s.AncestorPath(ctx, testCompany, b.ID)
	require.NoError(t, err)
	require.Len(t, chain, 3)
	assert.Equal(t, root.ID, chain[0].ID)
	assert.Equal(t, a.ID, chain[1].ID)
	assert.Equal(t, b.ID, chain[2].ID)
}

func TestDeleteWithChildrenNeedsCascade(t *testing.T) {
	s := New(newTestDB(t))
	ctx := context.Background()

	root := mustCreate(t, s, "HQ", "")
	a := mustCreate(t, s, "A", root.ID)

	err := s.Delete(ctx, testCompany, root.ID, false)
	assert.ErrorIs(t, err, apperr.ErrConflict)

	require.NoError(t, s.Delete(ctx, testCompany, root.ID, true))
	_, err = s.Get(ctx, testCompany, a.ID)
	assert.True(t, apperr.IsNotFound(err))
}

func TestDeleteCascadeRemovesPositions(t *testing.T) {
	db := newTestDB(t)
	s := New(db)
	ctx := context.Background()

	root := mustCreate(t, s, "HQ", "")
	a := mustCreate(t, s, "A", root.ID)

	p := models.Position{CompanyID: testCompany, OrganizationUnitID: a.ID, Title: "Engineer"}
	require.NoError(t, db.Create(&p).Error)

	require.NoError(t, s.Delete(ctx, testCompany, root.ID, true))

	var count int64
	require.NoError(t, db.Model(&models.Position{}).Where("id = ?", p.ID).Count(&count).Error)
	assert.Zero(t, count)
}

func TestTenantIsolation(t *testing.T) {
	s := New(newTestDB(t))
	ctx := context.Background()

	root := mustCreate(t, s, "HQ", "")

	_, err := s.Get(ctx, "22222222-2222-2222-2222-222222222222", root.ID)
	assert.True(t, apperr.IsNotFound(err), "foreign tenant must get not found, got %v", err)
}

func TestUpdateDelegatesMoves(t *testing.T) {
	s := New(newTestDB(t))
	ctx := context.Background()

	root := mustCreate(t, s, "HQ", "")
	a := mustCreate(t, s, "A", root.ID)
	x := mustCreate(t, s, "X", "")

	got, err := s.Update(ctx, testCompany, a.ID, map[string]any{
		"name":      "A-prime",
		"parent_id": x.ID,
		"path":      "/hacked", // игнорируется
		"level":     42,        // игнорируется
	})
	require.NoError(t, err)
	assert.Equal(t, "A-prime", got.Name)
	assert.Equal(t, x.ID, got.ParentID)
	assert.Equal(t, x.Path+"/"+a.ID, got.Path)
	assert.Equal(t, 1, got.Level)
}
