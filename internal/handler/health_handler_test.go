package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthCheck(t *testing.T) {
	env := newTestEnv(t)
	createProduct(t, env, "Chair")
	supplierID := createSupplier(t, env, "Acme")
	createContact(t, env, supplierID, "Li Wei")

	h := NewHealthHandler(env.records, false)
	c, rec := env.newContext(jsonRequest(http.MethodGet, "/health", ""))

	require.NoError(t, h.Check(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Status    string `json:"status"`
		DataReset bool   `json:"data_reset"`
		Counts    struct {
			Products  int64 `json:"products"`
			Suppliers int64 `json:"suppliers"`
			Contacts  int64 `json:"contacts"`
		} `json:"counts"`
	}
	decodeBody(t, rec, &resp)
	assert.Equal(t, "ok", resp.Status)
	assert.False(t, resp.DataReset)
	assert.EqualValues(t, 1, resp.Counts.Products)
	assert.EqualValues(t, 1, resp.Counts.Suppliers)
	assert.EqualValues(t, 1, resp.Counts.Contacts)
}

func TestHealthCheckReportsDataReset(t *testing.T) {
	env := newTestEnv(t)
	h := NewHealthHandler(env.records, true)

	c, rec := env.newContext(jsonRequest(http.MethodGet, "/health", ""))
	require.NoError(t, h.Check(c))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"data_reset":true`)
}
