package menu

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmvoss/hotelier/internal/database"
	"github.com/jmvoss/hotelier/internal/entities"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()

	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewRepository(db.DB)
}

func seedMenu(t *testing.T, repo *Repository) {
	t.Helper()
	for _, item := range []entities.MenuItem{
		{Name: "Eggs Benedict", Category: entities.MenuCategoryBreakfast, Price: 12.5, Available: true},
		{Name: "Club Sandwich", Category: entities.MenuCategoryLunch, Price: 14, Available: true},
		{Name: "Grilled Salmon", Category: entities.MenuCategoryDinner, Price: 24, Available: false},
		{Name: "House Red", Category: entities.MenuCategoryDrinks, Price: 8, Available: true},
	} {
		i := item
		require.NoError(t, repo.Create(&i))
	}
}

func TestListAllItems(t *testing.T) {
	repo := newTestRepo(t)
	seedMenu(t, repo)

	items, err := repo.List("", false)
	require.NoError(t, err)
	assert.Len(t, items, 4)
}

func TestListByCategory(t *testing.T) {
	repo := newTestRepo(t)
	seedMenu(t, repo)

	items, err := repo.List(entities.MenuCategoryBreakfast, false)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Eggs Benedict", items[0].Name)
}

func TestListOnlyAvailable(t *testing.T) {
	repo := newTestRepo(t)
	seedMenu(t, repo)

	items, err := repo.List("", true)
	require.NoError(t, err)
	assert.Len(t, items, 3)
	for _, item := range items {
		assert.True(t, item.Available)
	}

	// Unavailable dinner item hidden from the guest view.
	items, err = repo.List(entities.MenuCategoryDinner, true)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestGetByID(t *testing.T) {
	repo := newTestRepo(t)
	item := &entities.MenuItem{Name: "Eggs Benedict", Category: entities.MenuCategoryBreakfast, Price: 12.5}
	require.NoError(t, repo.Create(item))

	got, err := repo.GetByID(item.ID)
	require.NoError(t, err)
	assert.Equal(t, "Eggs Benedict", got.Name)

	_, err = repo.GetByID(999)
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestUpdate(t *testing.T) {
	repo := newTestRepo(t)
	item := &entities.MenuItem{Name: "Eggs Benedict", Category: entities.MenuCategoryBreakfast, Price: 12.5, Available: true}
	require.NoError(t, repo.Create(item))

	item.Price = 13.5
	item.Available = false
	require.NoError(t, repo.Update(item))

	got, err := repo.GetByID(item.ID)
	require.NoError(t, err)
	assert.Equal(t, 13.5, got.Price)
	assert.False(t, got.Available)

	missing := &entities.MenuItem{Name: "Ghost Dish"}
	missing.ID = 999
	assert.ErrorIs(t, repo.Update(missing), ErrItemNotFound)
}

func TestSetImagePath(t *testing.T) {
	repo := newTestRepo(t)
	item := &entities.MenuItem{Name: "Eggs Benedict", Category: entities.MenuCategoryBreakfast, Price: 12.5}
	require.NoError(t, repo.Create(item))

	require.NoError(t, repo.SetImagePath(item.ID, "/images/eggs.jpg"))

	got, err := repo.GetByID(item.ID)
	require.NoError(t, err)
	assert.Equal(t, "/images/eggs.jpg", got.ImagePath)

	assert.ErrorIs(t, repo.SetImagePath(999, "/images/x.jpg"), ErrItemNotFound)
}

func TestDelete(t *testing.T) {
	repo := newTestRepo(t)
	item := &entities.MenuItem{Name: "Eggs Benedict", Category: entities.MenuCategoryBreakfast, Price: 12.5}
	require.NoError(t, repo.Create(item))

	require.NoError(t, repo.Delete(item.ID))

	_, err := repo.GetByID(item.ID)
	assert.ErrorIs(t, err, ErrItemNotFound)

	assert.ErrorIs(t, repo.Delete(item.ID), ErrItemNotFound)
}
