package document

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/logidocs/backend/internal/domain/shared"
	"github.com/logidocs/backend/internal/domain/shipment"
	"github.com/shopspring/decimal"
)

const (
	maxTextLength        = 500
	maxProductNameLength = 200
)

// Field error codes
const (
	CodeRequired         = "REQUIRED"
	CodeUnknownField     = "UNKNOWN_FIELD"
	CodeDuplicateField   = "DUPLICATE_FIELD"
	CodeTooLong          = "TOO_LONG"
	CodeInvalidDate      = "INVALID_DATE"
	CodeInvalidAmount    = "INVALID_AMOUNT"
	CodeInvalidNumber    = "INVALID_NUMBER"
	CodeInvalidInteger   = "INVALID_INTEGER"
	CodeInvalidCurrency  = "INVALID_CURRENCY"
	CodeInvalidContainer = "INVALID_CONTAINER_NUMBER"
	CodeNegative         = "NEGATIVE"
	CodeItemsNotAllowed  = "ITEMS_NOT_ALLOWED"
)

var errEmptyNumber = errors.New("empty number")

// Field is one captured value of a document form. Position is zero for
// single-valued fields and 1-based for repeatable ones, so a BOL's
// container_number and seal_number with the same position form a pair.
type Field struct {
	Key      string `json:"key"`
	Value    string `json:"value"`
	Position int    `json:"position"`
}

// Item is a normalised product line of an invoice or packing list
type Item struct {
	ID          uuid.UUID
	LineNo      int
	ProductName string
	Description string
	Quantity    decimal.Decimal
	Unit        string
	UnitPrice   decimal.Decimal
	Amount      decimal.Decimal
	Packages    decimal.Decimal
	NetWeight   decimal.Decimal
	GrossWeight decimal.Decimal
	Measurement decimal.Decimal
}

// ItemInput is a product line as typed or imported, before parsing
type ItemInput struct {
	ProductName string `json:"product_name"`
	Description string `json:"description"`
	Quantity    string `json:"quantity"`
	Unit        string `json:"unit"`
	UnitPrice   string `json:"unit_price"`
	Amount      string `json:"amount"`
	Packages    string `json:"packages"`
	NetWeight   string `json:"net_weight"`
	GrossWeight string `json:"gross_weight"`
	Measurement string `json:"measurement"`
}

// Content is the validated form data of a document
type Content struct {
	Fields []Field
	Items  []Item
}

// Value returns the single value of key, or "" when absent
func (c Content) Value(key string) string {
	for _, f := range c.Fields {
		if f.Key == key {
			return f.Value
		}
	}
	return ""
}

// Values returns every value of a repeatable key ordered by position
func (c Content) Values(key string) []Field {
	var out []Field
	for _, f := range c.Fields {
		if f.Key == key {
			out = append(out, f)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out
}

// ValidateContent validates and normalises submitted fields and items.
// Every problem is reported at once; on any problem the returned error is a
// validation DomainError whose Details list the offending fields.
func ValidateContent(t Type, fields []Field, items []ItemInput) (Content, error) {
	if !t.IsValid() {
		return Content{}, ErrInvalidType
	}
	var errs []shared.FieldError

	normalized, fieldErrs := normalizeFields(t, fields)
	errs = append(errs, fieldErrs...)

	var parsed []Item
	if len(items) > 0 && !t.AllowsItems() {
		errs = append(errs, shared.FieldError{
			Field:   "items",
			Code:    CodeItemsNotAllowed,
			Message: fmt.Sprintf("%s does not have line items", t.Label()),
		})
	} else {
		var itemErrs []shared.FieldError
		parsed, itemErrs = ParseItems(items)
		errs = append(errs, itemErrs...)
	}

	if len(errs) > 0 {
		return Content{}, shared.NewValidationError(fmt.Sprintf("%s has %d invalid field(s)", t.Label(), len(errs)), errs)
	}
	return Content{Fields: normalized, Items: parsed}, nil
}

func normalizeFields(t Type, fields []Field) ([]Field, []shared.FieldError) {
	var errs []shared.FieldError
	out := make([]Field, 0, len(fields))
	seen := make(map[string]bool)
	nextPosition := make(map[string]int)

	for _, f := range fields {
		key := strings.TrimSpace(f.Key)
		spec, ok := t.Spec(key)
		if !ok {
			errs = append(errs, fieldError(key, CodeUnknownField, fmt.Sprintf("%s has no field %q", t.Label(), key)))
			continue
		}

		pos := 0
		if spec.Repeatable {
			pos = f.Position
			if pos <= 0 {
				pos = nextPosition[key] + 1
			}
			if pos > nextPosition[key] {
				nextPosition[key] = pos
			}
		}
		name := fieldName(key, pos)
		if seen[name] {
			errs = append(errs, fieldError(name, CodeDuplicateField, spec.Label+" is given more than once"))
			continue
		}
		seen[name] = true

		value := strings.TrimSpace(f.Value)
		if value == "" {
			if spec.Required {
				errs = append(errs, fieldError(name, CodeRequired, spec.Label+" is required"))
			}
			continue
		}

		normalized, fe := normalizeValue(spec, name, value)
		if fe != nil {
			errs = append(errs, *fe)
			continue
		}
		out = append(out, Field{Key: key, Value: normalized, Position: pos})
	}

	for _, spec := range t.Schema() {
		if spec.Required && !seen[fieldName(spec.Key, 0)] {
			errs = append(errs, fieldError(spec.Key, CodeRequired, spec.Label+" is required"))
		}
	}

	order := make(map[string]int)
	for i, spec := range t.Schema() {
		order[spec.Key] = i
	}
	sort.SliceStable(out, func(i, j int) bool {
		if order[out[i].Key] != order[out[j].Key] {
			return order[out[i].Key] < order[out[j].Key]
		}
		return out[i].Position < out[j].Position
	})
	return out, errs
}

func normalizeValue(spec FieldSpec, name, value string) (string, *shared.FieldError) {
	switch spec.Kind {
	case KindDate:
		d, err := ParseDate(value)
		if err != nil {
			return "", ptr(fieldError(name, CodeInvalidDate, spec.Label+" is not a valid date"))
		}
		return d.Format(DateLayout), nil
	case KindAmount, KindNumber:
		d, err := ParseAmount(value)
		if err != nil {
			code := CodeInvalidNumber
			if spec.Kind == KindAmount {
				code = CodeInvalidAmount
			}
			return "", ptr(fieldError(name, code, spec.Label+" is not a valid number"))
		}
		if d.IsNegative() {
			return "", ptr(fieldError(name, CodeNegative, spec.Label+" cannot be negative"))
		}
		if spec.Kind == KindAmount {
			return d.StringFixed(2), nil
		}
		return d.String(), nil
	case KindInteger:
		d, err := ParseAmount(value)
		if err != nil || !d.IsInteger() {
			return "", ptr(fieldError(name, CodeInvalidInteger, spec.Label+" must be a whole number"))
		}
		if d.IsNegative() {
			return "", ptr(fieldError(name, CodeNegative, spec.Label+" cannot be negative"))
		}
		return d.String(), nil
	case KindCurrency:
		c, err := NormalizeCurrency(value)
		if err != nil {
			return "", ptr(fieldError(name, CodeInvalidCurrency, spec.Label+" must be an ISO 4217 code"))
		}
		return c, nil
	case KindContainerNumber:
		n, err := shipment.NormalizeContainerNumber(value)
		if err != nil {
			return "", ptr(fieldError(name, CodeInvalidContainer, spec.Label+" is not a valid container number"))
		}
		return n, nil
	default:
		if utf8.RuneCountInString(value) > maxTextLength {
			return "", ptr(fieldError(name, CodeTooLong, fmt.Sprintf("%s cannot exceed %d characters", spec.Label, maxTextLength)))
		}
		return value, nil
	}
}

// ParseItems parses item inputs, numbering lines from 1. Amount is derived
// from quantity and unit price when left empty.
func ParseItems(inputs []ItemInput) ([]Item, []shared.FieldError) {
	var errs []shared.FieldError
	items := make([]Item, 0, len(inputs))

	for i, in := range inputs {
		prefix := fmt.Sprintf("items[%d].", i)
		item := Item{
			ID:          uuid.New(),
			LineNo:      i + 1,
			ProductName: strings.TrimSpace(in.ProductName),
			Description: strings.TrimSpace(in.Description),
			Unit:        strings.TrimSpace(in.Unit),
		}
		if item.ProductName == "" {
			errs = append(errs, fieldError(prefix+"product_name", CodeRequired, "Product name is required"))
		} else if utf8.RuneCountInString(item.ProductName) > maxProductNameLength {
			errs = append(errs, fieldError(prefix+"product_name", CodeTooLong, fmt.Sprintf("Product name cannot exceed %d characters", maxProductNameLength)))
		}
		if utf8.RuneCountInString(item.Description) > maxTextLength {
			errs = append(errs, fieldError(prefix+"description", CodeTooLong, fmt.Sprintf("Description cannot exceed %d characters", maxTextLength)))
		}

		columns := []struct {
			name   string
			raw    string
			target *decimal.Decimal
		}{
			{"quantity", in.Quantity, &item.Quantity},
			{"unit_price", in.UnitPrice, &item.UnitPrice},
			{"amount", in.Amount, &item.Amount},
			{"packages", in.Packages, &item.Packages},
			{"net_weight", in.NetWeight, &item.NetWeight},
			{"gross_weight", in.GrossWeight, &item.GrossWeight},
			{"measurement", in.Measurement, &item.Measurement},
		}
		for _, col := range columns {
			if strings.TrimSpace(col.raw) == "" {
				continue
			}
			d, err := ParseAmount(col.raw)
			if err != nil {
				errs = append(errs, fieldError(prefix+col.name, CodeInvalidNumber, col.name+" is not a valid number"))
				continue
			}
			if d.IsNegative() {
				errs = append(errs, fieldError(prefix+col.name, CodeNegative, col.name+" cannot be negative"))
				continue
			}
			*col.target = d
		}

		if item.Amount.IsZero() && !item.Quantity.IsZero() && !item.UnitPrice.IsZero() {
			item.Amount = item.Quantity.Mul(item.UnitPrice).Round(2)
		}
		items = append(items, item)
	}
	return items, errs
}

func fieldName(key string, position int) string {
	if position == 0 {
		return key
	}
	return fmt.Sprintf("%s[%d]", key, position)
}

func fieldError(field, code, message string) shared.FieldError {
	return shared.FieldError{Field: field, Code: code, Message: message}
}

func ptr(fe shared.FieldError) *shared.FieldError {
	return &fe
}
