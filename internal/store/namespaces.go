package store

// Side-attribute namespaces. Each concern owns a prefix; the full key is the
// prefix concatenated with the owning record's identity.
const (
	NamespacePackingType      = "packingType_"
	NamespaceQuantityPerBox   = "quantityPerBox_"
	NamespaceSupplierCategory = "supplier_category_"
	NamespaceProductSupplier  = "product_supplier_"
	NamespaceContactNotes     = "contactPerson_notes_"
	NamespaceContactPhoto     = "contactPerson_photo_"
)
