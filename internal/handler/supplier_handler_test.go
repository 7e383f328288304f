package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inventory-service/internal/store"
)

func newSupplierHandler(env *testEnv) *SupplierHandler {
	return NewSupplierHandler(env.records, env.side, env.images)
}

func TestSupplierCreateWithCategory(t *testing.T) {
	env := newTestEnv(t)
	h := newSupplierHandler(env)

	body := `{"name":"Acme Trading","email":"sales@acme.example","category":"furniture"}`
	c, rec := env.newContext(jsonRequest(http.MethodPost, "/api/suppliers", body))

	require.NoError(t, h.Create(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp SupplierResponse
	decodeBody(t, rec, &resp)
	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, "furniture", resp.Category)
	assert.Equal(t, "furniture", env.side.GetString(store.NamespaceSupplierCategory, resp.ID, ""))
}

func TestSupplierCreateEmptyName(t *testing.T) {
	env := newTestEnv(t)
	h := newSupplierHandler(env)

	c, rec := env.newContext(jsonRequest(http.MethodPost, "/api/suppliers", `{"name":""}`))
	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSupplierUpdateCategory(t *testing.T) {
	env := newTestEnv(t)
	h := newSupplierHandler(env)
	id := createSupplier(t, env, "Acme")
	require.NoError(t, env.side.SetString(store.NamespaceSupplierCategory, id, "furniture"))

	c, rec := env.newContext(jsonRequest(http.MethodPut, "/api/suppliers/"+id, `{"name":"Acme","category":"textiles"}`))
	c.SetParamNames("id")
	c.SetParamValues(id)

	require.NoError(t, h.Update(c))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "textiles", env.side.GetString(store.NamespaceSupplierCategory, id, ""))
}

func TestSupplierDeleteRemovesContacts(t *testing.T) {
	env := newTestEnv(t)
	h := newSupplierHandler(env)

	supplierID := createSupplier(t, env, "Acme")
	contactID := createContact(t, env, supplierID, "Li Wei")
	require.NoError(t, env.side.SetString(store.NamespaceContactNotes, contactID, "met at fair"))
	require.NoError(t, env.side.SetString(store.NamespaceSupplierCategory, supplierID, "furniture"))

	c, rec := env.newContext(jsonRequest(http.MethodDelete, "/api/suppliers/"+supplierID, ""))
	c.SetParamNames("id")
	c.SetParamValues(supplierID)

	require.NoError(t, h.Delete(c))
	require.Equal(t, http.StatusOK, rec.Code)

	_, err := env.records.GetSupplier(supplierID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = env.records.GetContact(contactID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.Equal(t, "", env.side.GetString(store.NamespaceContactNotes, contactID, ""))
	assert.Equal(t, "", env.side.GetString(store.NamespaceSupplierCategory, supplierID, ""))
}

func TestSupplierDeleteNotFound(t *testing.T) {
	env := newTestEnv(t)
	h := newSupplierHandler(env)

	c, rec := env.newContext(jsonRequest(http.MethodDelete, "/api/suppliers/missing", ""))
	c.SetParamNames("id")
	c.SetParamValues("missing")

	require.NoError(t, h.Delete(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
