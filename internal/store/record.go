package store

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"inventory-service/internal/model"
)

// ErrNameRequired is returned by the save operations when the record's name
// is empty or whitespace-only. It is a validation failure, not a storage
// error, and must never be treated as fatal.
var ErrNameRequired = errors.New("name is required")

// ErrNotFound is returned when a record identity does not resolve
var ErrNotFound = errors.New("record not found")

// RecordStore provides durable storage for products, suppliers and contact
// persons. It is constructed explicitly and injected into its consumers; the
// store holds no global state.
//
// Deleting a record does NOT cascade to its attachments or side attributes.
// Callers own the symmetry between create and delete paths.
type RecordStore struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewRecordStore creates a record store on top of an opened database
func NewRecordStore(db *gorm.DB, log *zap.Logger) *RecordStore {
	return &RecordStore{db: db, log: log}
}

// DB exposes the underlying database handle for migrations and tests
func (s *RecordStore) DB() *gorm.DB {
	return s.db
}

// Columns each entity permits in sort keys and merge payloads. Anything not
// listed is ignored so arbitrary input can never reach the SQL layer.
var (
	productColumns = map[string]string{
		"name": "name", "sku": "sku", "category": "category", "price": "price",
		"currency": "currency", "moq": "moq", "dimensions": "dimensions",
		"weight": "weight", "materials": "materials", "notes": "notes",
		"supplier_id": "supplier_id", "created_at": "created_at", "updated_at": "updated_at",
	}
	supplierColumns = map[string]string{
		"name": "name", "contact_person": "contact_person", "email": "email",
		"phone": "phone", "address": "address", "website": "website", "notes": "notes",
		"created_at": "created_at", "updated_at": "updated_at",
	}
	contactColumns = map[string]string{
		"name": "name", "job_title": "job_title", "phone": "phone",
		"whatsapp": "whatsapp", "wechat_id": "wechat_id", "email": "email",
		"is_primary": "is_primary", "created_at": "created_at", "updated_at": "updated_at",
	}
)

// orderClause builds a deterministic ORDER BY from the requested sort keys.
// Unknown keys are dropped; the identity is always appended as a tiebreak so
// equal keys still order the same way on every fetch.
func orderClause(allowed map[string]string, sortKeys []string) string {
	var parts []string
	for _, key := range sortKeys {
		desc := false
		key = strings.TrimSpace(key)
		if strings.HasPrefix(key, "-") {
			desc = true
			key = key[1:]
		}
		column, ok := allowed[key]
		if !ok {
			continue
		}
		if desc {
			parts = append(parts, column+" desc")
		} else {
			parts = append(parts, column+" asc")
		}
	}
	parts = append(parts, "id asc")
	return strings.Join(parts, ", ")
}

// FetchProducts returns all products in a deterministic order. An empty
// result is valid, not an error.
func (s *RecordStore) FetchProducts(sortKeys ...string) ([]model.Product, error) {
	var products []model.Product
	result := s.db.Order(orderClause(productColumns, sortKeys)).Find(&products)
	if result.Error != nil {
		return nil, result.Error
	}
	return products, nil
}

// FetchSuppliers returns all suppliers in a deterministic order
func (s *RecordStore) FetchSuppliers(sortKeys ...string) ([]model.Supplier, error) {
	var suppliers []model.Supplier
	result := s.db.Order(orderClause(supplierColumns, sortKeys)).Find(&suppliers)
	if result.Error != nil {
		return nil, result.Error
	}
	return suppliers, nil
}

// FetchContacts returns the contact persons of a supplier in a deterministic
// order. An empty supplier id returns every contact.
func (s *RecordStore) FetchContacts(supplierID string, sortKeys ...string) ([]model.ContactPerson, error) {
	var contacts []model.ContactPerson
	query := s.db.Order(orderClause(contactColumns, sortKeys))
	if supplierID != "" {
		query = query.Where("supplier_id = ?", supplierID)
	}
	result := query.Find(&contacts)
	if result.Error != nil {
		return nil, result.Error
	}
	return contacts, nil
}

// GetProduct fetches a single product by identity
func (s *RecordStore) GetProduct(id string) (*model.Product, error) {
	var product model.Product
	result := s.db.First(&product, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, result.Error
	}
	return &product, nil
}

// GetSupplier fetches a single supplier by identity
func (s *RecordStore) GetSupplier(id string) (*model.Supplier, error) {
	var supplier model.Supplier
	result := s.db.First(&supplier, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, result.Error
	}
	return &supplier, nil
}

// GetContact fetches a single contact person by identity
func (s *RecordStore) GetContact(id string) (*model.ContactPerson, error) {
	var contact model.ContactPerson
	result := s.db.First(&contact, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, result.Error
	}
	return &contact, nil
}

// SaveProduct validates and persists a product. The save is all-or-nothing
// for the structured fields: on failure the underlying storage error is
// returned and nothing is written.
func (s *RecordStore) SaveProduct(product *model.Product) error {
	if strings.TrimSpace(product.Name) == "" {
		return ErrNameRequired
	}
	return s.db.Save(product).Error
}

// SaveSupplier validates and persists a supplier
func (s *RecordStore) SaveSupplier(supplier *model.Supplier) error {
	if strings.TrimSpace(supplier.Name) == "" {
		return ErrNameRequired
	}
	return s.db.Save(supplier).Error
}

// SaveContact validates and persists a contact person
func (s *RecordStore) SaveContact(contact *model.ContactPerson) error {
	if strings.TrimSpace(contact.Name) == "" {
		return ErrNameRequired
	}
	return s.db.Save(contact).Error
}

// DeleteProduct removes the structured product record. Attachments and side
// attributes are left for the caller to clean up.
func (s *RecordStore) DeleteProduct(id string) error {
	return s.deleteByID(&model.Product{}, id)
}

// DeleteSupplier removes the structured supplier record
func (s *RecordStore) DeleteSupplier(id string) error {
	return s.deleteByID(&model.Supplier{}, id)
}

// DeleteContact removes the structured contact record
func (s *RecordStore) DeleteContact(id string) error {
	return s.deleteByID(&model.ContactPerson{}, id)
}

func (s *RecordStore) deleteByID(entity interface{}, id string) error {
	result := s.db.Where("id = ?", id).Delete(entity)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CountProducts returns the number of products for summary displays. It
// never fails: storage errors are logged and reported as zero.
func (s *RecordStore) CountProducts() int64 {
	return s.count(&model.Product{}, "products")
}

// CountSuppliers returns the number of suppliers
func (s *RecordStore) CountSuppliers() int64 {
	return s.count(&model.Supplier{}, "suppliers")
}

// CountContacts returns the number of contact persons
func (s *RecordStore) CountContacts() int64 {
	return s.count(&model.ContactPerson{}, "contacts")
}

func (s *RecordStore) count(entity interface{}, name string) int64 {
	var count int64
	if err := s.db.Model(entity).Count(&count).Error; err != nil {
		s.log.Error("Failed to count records",
			zap.String("entity", name),
			zap.Error(err))
		return 0
	}
	return count
}

// MergeProductProperties applies a remote change notification to a product
// using the property-trumps policy: only the supplied scalar properties are
// overwritten, so concurrent edits to different properties of the same record
// both survive. Conflicting edits to the same property resolve by arrival
// order with no conflict surfaced.
func (s *RecordStore) MergeProductProperties(id string, props map[string]interface{}) error {
	return s.mergeProperties(&model.Product{}, productColumns, id, props)
}

// MergeSupplierProperties applies a remote change notification to a supplier
func (s *RecordStore) MergeSupplierProperties(id string, props map[string]interface{}) error {
	return s.mergeProperties(&model.Supplier{}, supplierColumns, id, props)
}

// MergeContactProperties applies a remote change notification to a contact
func (s *RecordStore) MergeContactProperties(id string, props map[string]interface{}) error {
	return s.mergeProperties(&model.ContactPerson{}, contactColumns, id, props)
}

func (s *RecordStore) mergeProperties(entity interface{}, allowed map[string]string, id string, props map[string]interface{}) error {
	updates := make(map[string]interface{}, len(props))
	for key, value := range props {
		column, ok := allowed[key]
		if !ok {
			s.log.Warn("Ignoring unknown property in merge",
				zap.String("record_id", id),
				zap.String("property", key))
			continue
		}
		if column == "name" {
			str, isString := value.(string)
			if !isString || strings.TrimSpace(str) == "" {
				return fmt.Errorf("merge for %s: %w", id, ErrNameRequired)
			}
		}
		updates[column] = value
	}
	if len(updates) == 0 {
		return nil
	}

	result := s.db.Model(entity).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
