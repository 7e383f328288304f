package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inventory-service/internal/store"
)

func newProductHandler(env *testEnv) *ProductHandler {
	return NewProductHandler(env.records, env.side, env.images)
}

func TestProductCreate(t *testing.T) {
	env := newTestEnv(t)
	h := newProductHandler(env)

	body := `{"name":"Teak Chair","sku":"TC-01","price":49.9,"currency":"USD","dimensions":"10x20x30","packing_type":"carton","quantity_per_box":24}`
	c, rec := env.newContext(jsonRequest(http.MethodPost, "/api/products", body))

	require.NoError(t, h.Create(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp ProductResponse
	decodeBody(t, rec, &resp)
	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, "Teak Chair", resp.Name)
	assert.Equal(t, "carton", resp.PackingType)
	assert.EqualValues(t, 24, resp.QuantityPerBox)
	assert.Equal(t, []string{"10", "20", "30"}, resp.DimensionComponents)

	// Side attributes landed in the store, not on the record.
	assert.Equal(t, "carton", env.side.GetString(store.NamespacePackingType, resp.ID, ""))
	assert.EqualValues(t, 24, env.side.GetInt(store.NamespaceQuantityPerBox, resp.ID, 0))
}

func TestProductCreateEmptyName(t *testing.T) {
	env := newTestEnv(t)
	h := newProductHandler(env)

	c, rec := env.newContext(jsonRequest(http.MethodPost, "/api/products", `{"name":"   "}`))
	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "name is required")
	assert.EqualValues(t, 0, env.records.CountProducts())
}

func TestProductGetNotFound(t *testing.T) {
	env := newTestEnv(t)
	h := newProductHandler(env)

	c, rec := env.newContext(jsonRequest(http.MethodGet, "/api/products/missing", ""))
	c.SetParamNames("id")
	c.SetParamValues("missing")

	require.NoError(t, h.Get(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProductList(t *testing.T) {
	env := newTestEnv(t)
	h := newProductHandler(env)

	createProduct(t, env, "Desk")
	createProduct(t, env, "Chair")

	c, rec := env.newContext(jsonRequest(http.MethodGet, "/api/products?sort=name", ""))
	require.NoError(t, h.List(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp []ProductResponse
	decodeBody(t, rec, &resp)
	require.Len(t, resp, 2)
	assert.Equal(t, "Chair", resp[0].Name)
	assert.Equal(t, "Desk", resp[1].Name)
}

func TestProductListEmpty(t *testing.T) {
	env := newTestEnv(t)
	h := newProductHandler(env)

	c, rec := env.newContext(jsonRequest(http.MethodGet, "/api/products", ""))
	require.NoError(t, h.List(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]\n", rec.Body.String())
}

func TestProductUpdate(t *testing.T) {
	env := newTestEnv(t)
	h := newProductHandler(env)
	id := createProduct(t, env, "Chair")

	body := `{"name":"Chair v2","sku":"C-2","packing_type":"pallet"}`
	c, rec := env.newContext(jsonRequest(http.MethodPut, "/api/products/"+id, body))
	c.SetParamNames("id")
	c.SetParamValues(id)

	require.NoError(t, h.Update(c))
	require.Equal(t, http.StatusOK, rec.Code)

	updated, err := env.records.GetProduct(id)
	require.NoError(t, err)
	assert.Equal(t, "Chair v2", updated.Name)
	assert.Equal(t, "C-2", updated.SKU)
	assert.Equal(t, "pallet", env.side.GetString(store.NamespacePackingType, id, ""))
}

func TestProductUpdateNotFound(t *testing.T) {
	env := newTestEnv(t)
	h := newProductHandler(env)

	c, rec := env.newContext(jsonRequest(http.MethodPut, "/api/products/missing", `{"name":"x"}`))
	c.SetParamNames("id")
	c.SetParamValues("missing")

	require.NoError(t, h.Update(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProductDeleteCleansUpSideAttributes(t *testing.T) {
	env := newTestEnv(t)
	h := newProductHandler(env)
	id := createProduct(t, env, "Chair")
	require.NoError(t, env.side.SetString(store.NamespacePackingType, id, "carton"))
	require.NoError(t, env.side.SetInt(store.NamespaceQuantityPerBox, id, 12))

	c, rec := env.newContext(jsonRequest(http.MethodDelete, "/api/products/"+id, ""))
	c.SetParamNames("id")
	c.SetParamValues(id)

	require.NoError(t, h.Delete(c))
	require.Equal(t, http.StatusOK, rec.Code)

	_, err := env.records.GetProduct(id)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.Equal(t, "", env.side.GetString(store.NamespacePackingType, id, ""))
	assert.EqualValues(t, 0, env.side.GetInt(store.NamespaceQuantityPerBox, id, 0))
}

func TestProductSupplierLinkMirror(t *testing.T) {
	env := newTestEnv(t)
	h := newProductHandler(env)
	supplierID := createSupplier(t, env, "Acme")

	body := `{"name":"Chair","supplier_id":"` + supplierID + `"}`
	c, rec := env.newContext(jsonRequest(http.MethodPost, "/api/products", body))
	require.NoError(t, h.Create(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp ProductResponse
	decodeBody(t, rec, &resp)
	assert.Equal(t, supplierID, env.side.GetString(store.NamespaceProductSupplier, resp.ID, ""))

	// Clearing the link removes the mirror entry.
	c, rec = env.newContext(jsonRequest(http.MethodPut, "/api/products/"+resp.ID, `{"name":"Chair"}`))
	c.SetParamNames("id")
	c.SetParamValues(resp.ID)
	require.NoError(t, h.Update(c))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "", env.side.GetString(store.NamespaceProductSupplier, resp.ID, ""))
}

func TestSplitSortKeys(t *testing.T) {
	assert.Nil(t, splitSortKeys(""))
	assert.Equal(t, []string{"name"}, splitSortKeys("name"))
	assert.Equal(t, []string{"name", "-price"}, splitSortKeys("name, -price"))
	assert.Empty(t, splitSortKeys(" , ,"))
}
