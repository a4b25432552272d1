package document

import (
	"strings"

	"github.com/logidocs/backend/internal/domain/shared"
)

// Type identifies the kind of trade document
type Type string

const (
	TypeBillOfLading  Type = "BILL_OF_LADING"
	TypeInvoice       Type = "INVOICE"
	TypePackingList   Type = "PACKING_LIST"
	TypeDeliveryOrder Type = "DELIVERY_ORDER"
)

var ErrInvalidType = shared.NewDomainError("INVALID_DOCUMENT_TYPE", "Unknown document type")

// AllTypes returns every document type in display order
func AllTypes() []Type {
	return []Type{TypeBillOfLading, TypeInvoice, TypePackingList, TypeDeliveryOrder}
}

// ParseType parses a document type, accepting common abbreviations
func ParseType(s string) (Type, error) {
	v := strings.ToUpper(strings.TrimSpace(s))
	v = strings.ReplaceAll(v, "-", "_")
	v = strings.ReplaceAll(v, " ", "_")
	switch v {
	case "BOL", "BL":
		return TypeBillOfLading, nil
	case "PL":
		return TypePackingList, nil
	case "DO":
		return TypeDeliveryOrder, nil
	}
	t := Type(v)
	if !t.IsValid() {
		return "", ErrInvalidType
	}
	return t, nil
}

// IsValid checks if the type is known
func (t Type) IsValid() bool {
	switch t {
	case TypeBillOfLading, TypeInvoice, TypePackingList, TypeDeliveryOrder:
		return true
	}
	return false
}

// Label returns the human readable name
func (t Type) Label() string {
	switch t {
	case TypeBillOfLading:
		return "Bill of Lading"
	case TypeInvoice:
		return "Invoice"
	case TypePackingList:
		return "Packing List"
	case TypeDeliveryOrder:
		return "Delivery Order"
	}
	return string(t)
}

// PathSegment returns the lower-case form used in storage keys
func (t Type) PathSegment() string {
	return strings.ToLower(string(t))
}

// OwningDepartment is the department allowed to create and edit documents of t
func (t Type) OwningDepartment() shared.Department {
	switch t {
	case TypeInvoice:
		return shared.DepartmentFinance
	case TypeDeliveryOrder:
		return shared.DepartmentTrucking
	default:
		return shared.DepartmentShipment
	}
}

// AllowsItems reports whether documents of t carry line items
func (t Type) AllowsItems() bool {
	return t == TypeInvoice || t == TypePackingList
}

// Schema returns the field definitions of t
func (t Type) Schema() []FieldSpec {
	return schemas[t]
}

// Spec looks up a field definition by key
func (t Type) Spec(key string) (FieldSpec, bool) {
	for _, s := range schemas[t] {
		if s.Key == key {
			return s, true
		}
	}
	return FieldSpec{}, false
}
