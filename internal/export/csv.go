package export

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"inventory-service/internal/model"
)

const dateFormat = "2006-01-02 15:04:05"

// Exporter serializes record snapshots to spreadsheet documents under the
// export directory. Documents are built fully in memory before writing; the
// catalog holds hundreds of records, not millions.
type Exporter struct {
	dir string
	log *zap.Logger
}

// NewExporter creates an exporter writing into the given directory
func NewExporter(dir string, log *zap.Logger) *Exporter {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.Error("Failed to create export directory",
			zap.String("dir", dir),
			zap.Error(err))
	}
	return &Exporter{dir: dir, log: log}
}

// ProductsCSV writes the product catalog as CSV and returns the file path
func (e *Exporter) ProductsCSV(products []model.Product) (string, error) {
	var b strings.Builder
	b.WriteString("Name,SKU,Category,Price,Currency,MOQ,Dimensions,Weight,Materials,Notes,Created,Updated\n")

	for _, product := range products {
		row := []string{
			csvEscape(product.Name),
			csvEscape(product.SKU),
			csvEscape(product.Category),
			formatDecimal(product.Price),
			csvEscape(product.Currency),
			strconv.Itoa(product.MOQ),
			csvEscape(product.Dimensions),
			formatDecimal(product.Weight),
			csvEscape(product.Materials),
			csvEscape(product.Notes),
			formatDate(product.CreatedAt),
			formatDate(product.UpdatedAt),
		}
		b.WriteString(strings.Join(row, ","))
		b.WriteString("\n")
	}

	return e.writeFile("products.csv", b.String())
}

// SuppliersCSV writes the supplier catalog as CSV and returns the file path
func (e *Exporter) SuppliersCSV(suppliers []model.Supplier) (string, error) {
	var b strings.Builder
	b.WriteString("Name,Contact Person,Email,Phone,Address,Website,Notes\n")

	for _, supplier := range suppliers {
		row := []string{
			csvEscape(supplier.Name),
			csvEscape(supplier.ContactPerson),
			csvEscape(supplier.Email),
			csvEscape(supplier.Phone),
			csvEscape(supplier.Address),
			csvEscape(supplier.Website),
			csvEscape(supplier.Notes),
		}
		b.WriteString(strings.Join(row, ","))
		b.WriteString("\n")
	}

	return e.writeFile("suppliers.csv", b.String())
}

func (e *Exporter) writeFile(filename, content string) (string, error) {
	path := filepath.Join(e.dir, filename)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		e.log.Error("Failed to write export file",
			zap.String("path", path),
			zap.Error(err))
		return "", err
	}
	return path, nil
}

// csvEscape renders a text field double-quoted with internal quotes doubled.
// Every text field is quoted, not only the ones that need it.
func csvEscape(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func formatDecimal(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateFormat)
}
