package catalog_test

import (
	"context"
	"testing"

	"github.com/fjod/go_bakery/internal/catalog"
	"github.com/fjod/go_bakery/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *catalog.Repository {
	// Use in-memory database for tests
	repo, err := catalog.NewRepository(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	require.NoError(t, repo.RunMigrations("./migrations"))
	return repo
}

func TestListProducts_AllCategories(t *testing.T) {
	repo := setupTestDB(t)

	for _, key := range []string{"", "all", domain.AllCategories} {
		products, err := repo.ListProducts(context.Background(), key)
		require.NoError(t, err)
		assert.Len(t, products, 6, "key %q", key)
	}
}

func TestListProducts_FiltersByCategory(t *testing.T) {
	repo := setupTestDB(t)

	products, err := repo.ListProducts(context.Background(), "kolaci")
	require.NoError(t, err)
	require.Len(t, products, 2)
	for _, p := range products {
		assert.Equal(t, "kolaci", p.Category)
	}
}

func TestListProducts_UnknownCategoryIsEmpty(t *testing.T) {
	repo := setupTestDB(t)

	products, err := repo.ListProducts(context.Background(), "hleb")
	require.NoError(t, err)
	assert.NotNil(t, products)
	assert.Empty(t, products)
}

func TestListProducts_CancelledContext(t *testing.T) {
	repo := setupTestDB(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.ListProducts(ctx, "")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGetProduct_ImagesInOrder(t *testing.T) {
	repo := setupTestDB(t)

	p, err := repo.GetProduct(context.Background(), "krempita")
	require.NoError(t, err)
	assert.Equal(t, []string{"/images/krempita-1.jpg", "/images/krempita-2.jpg"}, p.Images)
	assert.True(t, p.Price.Equal(decimal.NewFromInt(180)))
}

func TestGetProduct_OnlyItsOwnImages(t *testing.T) {
	repo := setupTestDB(t)

	for id, want := range map[string][]string{
		"baklava":  {"/images/baklava.jpg"},
		"tufahija": {"/images/tufahija.jpg"},
	} {
		p, err := repo.GetProduct(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, want, p.Images, id)
	}
}

func TestGetProduct_WithoutPriceOrImages(t *testing.T) {
	repo := setupTestDB(t)

	p, err := repo.GetProduct(context.Background(), "mini-pice")
	require.NoError(t, err)
	assert.True(t, p.Price.IsZero())
	assert.Equal(t, "150.00", p.DisplayPrice().StringFixed(2))
	assert.Equal(t, domain.PlaceholderImageURL, p.PrimaryImage())
}

func TestGetProduct_NotFound(t *testing.T) {
	repo := setupTestDB(t)

	p, err := repo.GetProduct(context.Background(), "missing")
	assert.Nil(t, p)
	assert.ErrorIs(t, err, catalog.ErrProductNotFound)
}

func TestIngredients_LoadAndLookup(t *testing.T) {
	repo := setupTestDB(t)

	ingredients, err := catalog.LoadIngredients(context.Background(), repo)
	require.NoError(t, err)
	assert.Len(t, ingredients.All(), 10)
	assert.Len(t, ingredients.Allergens(), 5)

	ing, ok := ingredients.Lookup("  orasi ")
	require.True(t, ok)
	assert.Equal(t, "Orasi", ing.Name)
	assert.True(t, ing.IsAllergen)

	_, ok = ingredients.Lookup("Cimet")
	assert.False(t, ok)
}

func TestIngredients_AllReturnsCopy(t *testing.T) {
	ingredients := catalog.NewIngredients([]domain.Ingredient{{Name: "Jaja", IsAllergen: true}, {Name: "jaja"}, {Name: " "}})

	all := ingredients.All()
	require.Len(t, all, 1)
	all[0].Name = "changed"

	assert.Equal(t, "Jaja", ingredients.All()[0].Name)
}
