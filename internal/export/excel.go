package export

import (
	"fmt"
	"path/filepath"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"inventory-service/internal/model"
)

// ProductsXLSX writes the product catalog as a spreadsheet and returns the
// file path
func (e *Exporter) ProductsXLSX(products []model.Product) (string, error) {
	header := []interface{}{
		"Name", "SKU", "Category", "Price", "Currency", "MOQ",
		"Dimensions", "Weight", "Materials", "Notes", "Created", "Updated",
	}
	rows := make([][]interface{}, 0, len(products))
	for _, product := range products {
		rows = append(rows, []interface{}{
			product.Name,
			product.SKU,
			product.Category,
			product.Price,
			product.Currency,
			product.MOQ,
			product.Dimensions,
			product.Weight,
			product.Materials,
			product.Notes,
			formatDate(product.CreatedAt),
			formatDate(product.UpdatedAt),
		})
	}
	return e.writeSheet("products.xlsx", "Products", header, rows)
}

// SuppliersXLSX writes the supplier catalog as a spreadsheet and returns the
// file path
func (e *Exporter) SuppliersXLSX(suppliers []model.Supplier) (string, error) {
	header := []interface{}{
		"Name", "Contact Person", "Email", "Phone", "Address", "Website", "Notes",
	}
	rows := make([][]interface{}, 0, len(suppliers))
	for _, supplier := range suppliers {
		rows = append(rows, []interface{}{
			supplier.Name,
			supplier.ContactPerson,
			supplier.Email,
			supplier.Phone,
			supplier.Address,
			supplier.Website,
			supplier.Notes,
		})
	}
	return e.writeSheet("suppliers.xlsx", "Suppliers", header, rows)
}

func (e *Exporter) writeSheet(filename, sheet string, header []interface{}, rows [][]interface{}) (string, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return "", err
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return "", err
	}
	for i, row := range rows {
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return "", err
		}
	}

	path := filepath.Join(e.dir, filename)
	if err := f.SaveAs(path); err != nil {
		e.log.Error("Failed to write export file",
			zap.String("path", path),
			zap.Error(err))
		return "", err
	}
	return path, nil
}
