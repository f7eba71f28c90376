package repository

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notas/internal/schema"
	"notas/internal/store"
	"notas/pkg/models"
)

func newCustomerRepo(t *testing.T) *CustomerRepository {
	t.Helper()
	file := store.Open[models.Customer](filepath.Join(t.TempDir(), store.CustomersFile))
	return NewCustomerRepository(file)
}

func TestCustomerRepository_AddAndFind(t *testing.T) {
	repo := newCustomerRepo(t)

	c, err := repo.Add(schema.CustomerDraft{
		Name:  "Padaria Central",
		TaxID: "12345678000195",
		Phone: "1134567890",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), c.ID)
	assert.Equal(t, "12.345.678/0001-95", c.TaxID)

	found, ok, err := repo.FindByName("  padaria CENTRAL ")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, c.ID, found.ID)

	_, ok, err = repo.FindByName("Mercado")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCustomerRepository_UniqueName(t *testing.T) {
	repo := newCustomerRepo(t)

	_, err := repo.Add(schema.CustomerDraft{Name: "ACME"})
	require.NoError(t, err)
	other, err := repo.Add(schema.CustomerDraft{Name: "Globex"})
	require.NoError(t, err)

	_, err = repo.Add(schema.CustomerDraft{Name: "acme"})
	var verr *schema.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "name", verr.Field)

	name := "Acme"
	_, err = repo.Update(other.ID, CustomerPatch{Name: &name})
	assert.True(t, errors.Is(err, schema.ErrValidation))

	// Renaming a customer to its own name in another case is allowed.
	self := "GLOBEX"
	renamed, err := repo.Update(other.ID, CustomerPatch{Name: &self})
	require.NoError(t, err)
	assert.Equal(t, "GLOBEX", renamed.Name)
}

func TestCustomerRepository_ListSortedByName(t *testing.T) {
	repo := newCustomerRepo(t)
	for _, name := range []string{"Zeta", "alpha", "Mercado"} {
		_, err := repo.Add(schema.CustomerDraft{Name: name, Email: name + "@example.com"})
		require.NoError(t, err)
	}

	all, err := repo.List(CustomerFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"alpha", "Mercado", "Zeta"}, []string{all[0].Name, all[1].Name, all[2].Name})

	some, err := repo.List(CustomerFilter{Term: "MERCADO@"})
	require.NoError(t, err)
	require.Len(t, some, 1)
	assert.Equal(t, "Mercado", some[0].Name)
}

func TestCustomerRepository_DeleteAll(t *testing.T) {
	repo := newCustomerRepo(t)
	c, err := repo.Add(schema.CustomerDraft{Name: "ACME"})
	require.NoError(t, err)

	require.NoError(t, repo.Delete(c.ID))
	assert.True(t, errors.Is(repo.Delete(c.ID), ErrNotFound))

	_, err = repo.Add(schema.CustomerDraft{Name: "Globex"})
	require.NoError(t, err)

	removed, err := repo.DeleteAll()
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	removed, err = repo.DeleteAll()
	require.NoError(t, err)
	assert.Zero(t, removed)

	count, err := repo.Count()
	require.NoError(t, err)
	assert.Zero(t, count)

	_, err = repo.Get(c.ID)
	assert.True(t, errors.Is(err, ErrNotFound))
}
