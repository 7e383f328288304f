package handler

import (
	"bytes"
	"encoding/json"
	"image/color"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"inventory-service/internal/imagestore"
	"inventory-service/internal/model"
	"inventory-service/internal/store"
	"inventory-service/pkg/config"
	"inventory-service/prometheus"
)

func TestMain(m *testing.M) {
	// Metrics register against the default registry; initialize once for the
	// whole package.
	prometheus.InitMetrics(&config.Config{
		Metrics: config.MetricsConfig{Prefix: "inventory_test"},
	})
	os.Exit(m.Run())
}

type testEnv struct {
	e       *echo.Echo
	records *store.RecordStore
	side    *store.SideAttributeStore
	images  *imagestore.ImageStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.Product{},
		&model.Supplier{},
		&model.ContactPerson{},
		&store.SideAttribute{},
	))

	log := zap.NewNop()
	records := store.NewRecordStore(db, log)
	side := store.NewSideAttributeStore(db, log)
	images := imagestore.NewImageStore(t.TempDir(), side, log)

	return &testEnv{e: echo.New(), records: records, side: side, images: images}
}

func (env *testEnv) newContext(req *http.Request) (echo.Context, *httptest.ResponseRecorder) {
	rec := httptest.NewRecorder()
	return env.e.NewContext(req, rec), rec
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

// imageUploadRequest builds a multipart request carrying a JPEG of the given
// size under the "image" form field
func imageUploadRequest(t *testing.T, target string, width, height int) *http.Request {
	t.Helper()

	data, err := imagestore.EncodeJPEG(imaging.New(width, height, color.NRGBA{R: 200, G: 200, B: 200, A: 255}))
	require.NoError(t, err)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("image", "upload.jpg")
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set(echo.HeaderContentType, writer.FormDataContentType())
	return req
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
}

func createProduct(t *testing.T, env *testEnv, name string) string {
	t.Helper()
	product := model.Product{Name: name}
	require.NoError(t, env.records.SaveProduct(&product))
	return product.ID
}

func createSupplier(t *testing.T, env *testEnv, name string) string {
	t.Helper()
	supplier := model.Supplier{Name: name}
	require.NoError(t, env.records.SaveSupplier(&supplier))
	return supplier.ID
}

func createContact(t *testing.T, env *testEnv, supplierID, name string) string {
	t.Helper()
	contact := model.ContactPerson{Name: name, SupplierID: supplierID}
	require.NoError(t, env.records.SaveContact(&contact))
	return contact.ID
}
