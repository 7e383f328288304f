package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inventory-service/internal/store"
)

func newContactHandler(env *testEnv) *ContactHandler {
	return NewContactHandler(env.records, env.side, env.images)
}

func TestContactCreate(t *testing.T) {
	env := newTestEnv(t)
	h := newContactHandler(env)
	supplierID := createSupplier(t, env, "Acme")

	body := `{"name":"Li Wei","job_title":"Sales Manager","wechat_id":"liwei88","is_primary":true,"notes":"met at fair"}`
	c, rec := env.newContext(jsonRequest(http.MethodPost, "/api/suppliers/"+supplierID+"/contacts", body))
	c.SetParamNames("id")
	c.SetParamValues(supplierID)

	require.NoError(t, h.Create(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp ContactResponse
	decodeBody(t, rec, &resp)
	assert.Equal(t, supplierID, resp.SupplierID)
	assert.True(t, resp.IsPrimary)
	assert.Equal(t, "met at fair", resp.Notes)
	assert.Equal(t, "met at fair", env.side.GetString(store.NamespaceContactNotes, resp.ID, ""))
}

func TestContactCreateMissingSupplier(t *testing.T) {
	env := newTestEnv(t)
	h := newContactHandler(env)

	c, rec := env.newContext(jsonRequest(http.MethodPost, "/api/suppliers/missing/contacts", `{"name":"Li Wei"}`))
	c.SetParamNames("id")
	c.SetParamValues("missing")

	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestContactListForSupplier(t *testing.T) {
	env := newTestEnv(t)
	h := newContactHandler(env)

	a := createSupplier(t, env, "Acme")
	b := createSupplier(t, env, "Bolt")
	createContact(t, env, a, "Li Wei")
	createContact(t, env, a, "Chen Yu")
	createContact(t, env, b, "Sam Ortiz")

	c, rec := env.newContext(jsonRequest(http.MethodGet, "/api/suppliers/"+a+"/contacts?sort=name", ""))
	c.SetParamNames("id")
	c.SetParamValues(a)

	require.NoError(t, h.List(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp []ContactResponse
	decodeBody(t, rec, &resp)
	require.Len(t, resp, 2)
	assert.Equal(t, "Chen Yu", resp[0].Name)
}

func TestContactUpdateNotes(t *testing.T) {
	env := newTestEnv(t)
	h := newContactHandler(env)
	supplierID := createSupplier(t, env, "Acme")
	contactID := createContact(t, env, supplierID, "Li Wei")

	c, rec := env.newContext(jsonRequest(http.MethodPut, "/api/contacts/"+contactID, `{"name":"Li Wei","notes":"prefers WeChat"}`))
	c.SetParamNames("id")
	c.SetParamValues(contactID)

	require.NoError(t, h.Update(c))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "prefers WeChat", env.side.GetString(store.NamespaceContactNotes, contactID, ""))
}

func TestContactDeleteCleansUp(t *testing.T) {
	env := newTestEnv(t)
	h := newContactHandler(env)
	supplierID := createSupplier(t, env, "Acme")
	contactID := createContact(t, env, supplierID, "Li Wei")
	require.NoError(t, env.side.SetString(store.NamespaceContactNotes, contactID, "note"))
	require.NoError(t, env.side.SetBlob(store.NamespaceContactPhoto, contactID, []byte{1, 2, 3}))

	c, rec := env.newContext(jsonRequest(http.MethodDelete, "/api/contacts/"+contactID, ""))
	c.SetParamNames("id")
	c.SetParamValues(contactID)

	require.NoError(t, h.Delete(c))
	require.Equal(t, http.StatusOK, rec.Code)

	_, err := env.records.GetContact(contactID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.Equal(t, "", env.side.GetString(store.NamespaceContactNotes, contactID, ""))
	assert.Nil(t, env.side.GetBlob(store.NamespaceContactPhoto, contactID))
}
