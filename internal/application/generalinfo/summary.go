package generalinfo

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Discrepancy kinds
const (
	KindQuantityMismatch     = "QUANTITY_MISMATCH"
	KindMissingInInvoice     = "MISSING_IN_INVOICE"
	KindMissingInPackingList = "MISSING_IN_PACKING_LIST"
)

// Summary is the General Info of one PRO: the BOL, Invoice and Packing List
// read together
type Summary struct {
	ProNumber     string             `json:"pro_number"`
	Shipment      ShipmentInfo       `json:"shipment"`
	BillOfLading  *BOLHeader         `json:"bill_of_lading"`
	Invoice       *InvoiceHeader     `json:"invoice"`
	PackingList   *PackingListHeader `json:"packing_list"`
	Containers    []ContainerPair    `json:"containers"`
	Lines         []Line             `json:"lines"`
	Totals        Totals             `json:"totals"`
	Declared      DeclaredTotals     `json:"declared_totals"`
	Sources       []SourceDocument   `json:"sources"`
	Missing       []string           `json:"missing"`
	Discrepancies []Discrepancy      `json:"discrepancies"`
	GeneratedAt   time.Time          `json:"generated_at"`
}

// ShipmentInfo is the shipment header
type ShipmentInfo struct {
	CustomerName   string `json:"customer_name"`
	Origin         string `json:"origin"`
	Destination    string `json:"destination"`
	Status         string `json:"status"`
	TruckingStatus string `json:"trucking_status"`
}

// BOLHeader holds the Bill of Lading header fields
type BOLHeader struct {
	BLNumber        string `json:"bl_number"`
	Shipper         string `json:"shipper"`
	Consignee       string `json:"consignee"`
	NotifyParty     string `json:"notify_party"`
	Vessel          string `json:"vessel"`
	Voyage          string `json:"voyage"`
	PortOfLoading   string `json:"port_of_loading"`
	PortOfDischarge string `json:"port_of_discharge"`
	PlaceOfDelivery string `json:"place_of_delivery"`
	ETD             string `json:"etd"`
	ETA             string `json:"eta"`
	FreightTerms    string `json:"freight_terms"`
}

// InvoiceHeader holds the invoice header fields
type InvoiceHeader struct {
	InvoiceNumber string `json:"invoice_number"`
	InvoiceDate   string `json:"invoice_date"`
	Currency      string `json:"currency"`
	Seller        string `json:"seller"`
	Buyer         string `json:"buyer"`
	Incoterms     string `json:"incoterms"`
	PaymentTerms  string `json:"payment_terms"`
}

// PackingListHeader holds the packing list header fields
type PackingListHeader struct {
	PackingListNumber string `json:"packing_list_number"`
	PackingDate       string `json:"packing_date"`
}

// ContainerPair is a container with its seal
type ContainerPair struct {
	Position        int    `json:"position"`
	ContainerNumber string `json:"container_number"`
	SealNumber      string `json:"seal_number"`
	Size            string `json:"size,omitempty"`
}

// Line is one merged product line
type Line struct {
	Key         string          `json:"key"`
	ProductName string          `json:"product_name"`
	Description string          `json:"description"`
	Unit        string          `json:"unit"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Amount      decimal.Decimal `json:"amount"`
	Packages    decimal.Decimal `json:"packages"`
	NetWeight   decimal.Decimal `json:"net_weight"`
	GrossWeight decimal.Decimal `json:"gross_weight"`
	Measurement decimal.Decimal `json:"measurement"`
	Sources     []string        `json:"sources"`
}

// Totals are sums over the merged lines
type Totals struct {
	Quantity    decimal.Decimal `json:"quantity"`
	Amount      decimal.Decimal `json:"amount"`
	Packages    decimal.Decimal `json:"packages"`
	NetWeight   decimal.Decimal `json:"net_weight"`
	GrossWeight decimal.Decimal `json:"gross_weight"`
	Measurement decimal.Decimal `json:"measurement"`
}

// DeclaredTotals are the totals typed on the invoice and packing list
// headers; nil when not captured
type DeclaredTotals struct {
	Amount      *decimal.Decimal `json:"amount"`
	Packages    *decimal.Decimal `json:"packages"`
	NetWeight   *decimal.Decimal `json:"net_weight"`
	GrossWeight *decimal.Decimal `json:"gross_weight"`
	Measurement *decimal.Decimal `json:"measurement"`
}

// SourceDocument is a document of the PRO and its review state
type SourceDocument struct {
	DocumentID uuid.UUID `json:"document_id"`
	Type       string    `json:"type"`
	Label      string    `json:"label"`
	Status     string    `json:"status"`
	HasFile    bool      `json:"has_file"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Discrepancy is a product line the invoice and packing list disagree on
type Discrepancy struct {
	Key                 string          `json:"key"`
	ProductName         string          `json:"product_name"`
	Kind                string          `json:"kind"`
	InvoiceQuantity     decimal.Decimal `json:"invoice_quantity"`
	PackingListQuantity decimal.Decimal `json:"packing_list_quantity"`
}
