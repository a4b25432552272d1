package document

// FieldKind determines how a field value is validated and normalised
type FieldKind string

const (
	KindText            FieldKind = "TEXT"
	KindDate            FieldKind = "DATE"
	KindAmount          FieldKind = "AMOUNT"
	KindNumber          FieldKind = "NUMBER"
	KindInteger         FieldKind = "INTEGER"
	KindCurrency        FieldKind = "CURRENCY"
	KindContainerNumber FieldKind = "CONTAINER_NUMBER"
)

// FieldSpec describes one form field of a document type
type FieldSpec struct {
	Key        string    `json:"key"`
	Label      string    `json:"label"`
	Kind       FieldKind `json:"kind"`
	Required   bool      `json:"required"`
	Repeatable bool      `json:"repeatable"`
}

// Well-known field keys read by the General Info summary
const (
	FieldBLNumber          = "bl_number"
	FieldShipper           = "shipper"
	FieldConsignee         = "consignee"
	FieldNotifyParty       = "notify_party"
	FieldVesselName        = "vessel_name"
	FieldVoyageNumber      = "voyage_number"
	FieldPortOfLoading     = "port_of_loading"
	FieldPortOfDischarge   = "port_of_discharge"
	FieldPlaceOfDelivery   = "place_of_delivery"
	FieldETD               = "etd"
	FieldETA               = "eta"
	FieldContainerNumber   = "container_number"
	FieldSealNumber        = "seal_number"
	FieldFreightTerms      = "freight_terms"
	FieldInvoiceNumber     = "invoice_number"
	FieldInvoiceDate       = "invoice_date"
	FieldCurrency          = "currency"
	FieldSeller            = "seller"
	FieldBuyer             = "buyer"
	FieldPaymentTerms      = "payment_terms"
	FieldIncoterms         = "incoterms"
	FieldTotalAmount       = "total_amount"
	FieldPackingListNumber = "packing_list_number"
	FieldPackingDate       = "packing_date"
	FieldTotalPackages     = "total_packages"
	FieldTotalGrossWeight  = "total_gross_weight"
	FieldTotalNetWeight    = "total_net_weight"
	FieldTotalMeasurement  = "total_measurement"
	FieldDONumber          = "do_number"
	FieldDeliveryDate      = "delivery_date"
	FieldTruckingCompany   = "trucking_company"
	FieldTruckPlate        = "truck_plate"
	FieldDriverName        = "driver_name"
	FieldDriverPhone       = "driver_phone"
	FieldDeliveryAddress   = "delivery_address"
)

var schemas = map[Type][]FieldSpec{
	TypeBillOfLading: {
		{Key: FieldBLNumber, Label: "B/L Number", Kind: KindText, Required: true},
		{Key: FieldShipper, Label: "Shipper", Kind: KindText, Required: true},
		{Key: FieldConsignee, Label: "Consignee", Kind: KindText, Required: true},
		{Key: FieldNotifyParty, Label: "Notify Party", Kind: KindText},
		{Key: FieldVesselName, Label: "Vessel", Kind: KindText, Required: true},
		{Key: FieldVoyageNumber, Label: "Voyage No.", Kind: KindText},
		{Key: FieldPortOfLoading, Label: "Port of Loading", Kind: KindText, Required: true},
		{Key: FieldPortOfDischarge, Label: "Port of Discharge", Kind: KindText, Required: true},
		{Key: FieldPlaceOfDelivery, Label: "Place of Delivery", Kind: KindText},
		{Key: FieldETD, Label: "ETD", Kind: KindDate},
		{Key: FieldETA, Label: "ETA", Kind: KindDate},
		{Key: FieldContainerNumber, Label: "Container No.", Kind: KindContainerNumber, Repeatable: true},
		{Key: FieldSealNumber, Label: "Seal No.", Kind: KindText, Repeatable: true},
		{Key: FieldFreightTerms, Label: "Freight Terms", Kind: KindText},
	},
	TypeInvoice: {
		{Key: FieldInvoiceNumber, Label: "Invoice No.", Kind: KindText, Required: true},
		{Key: FieldInvoiceDate, Label: "Invoice Date", Kind: KindDate, Required: true},
		{Key: FieldCurrency, Label: "Currency", Kind: KindCurrency, Required: true},
		{Key: FieldSeller, Label: "Seller", Kind: KindText},
		{Key: FieldBuyer, Label: "Buyer", Kind: KindText},
		{Key: FieldPaymentTerms, Label: "Payment Terms", Kind: KindText},
		{Key: FieldIncoterms, Label: "Incoterms", Kind: KindText},
		{Key: FieldTotalAmount, Label: "Total Amount", Kind: KindAmount},
	},
	TypePackingList: {
		{Key: FieldPackingListNumber, Label: "Packing List No.", Kind: KindText, Required: true},
		{Key: FieldPackingDate, Label: "Packing Date", Kind: KindDate},
		{Key: FieldTotalPackages, Label: "Total Packages", Kind: KindInteger},
		{Key: FieldTotalGrossWeight, Label: "Total Gross Weight (kg)", Kind: KindNumber},
		{Key: FieldTotalNetWeight, Label: "Total Net Weight (kg)", Kind: KindNumber},
		{Key: FieldTotalMeasurement, Label: "Total Measurement (CBM)", Kind: KindNumber},
	},
	TypeDeliveryOrder: {
		{Key: FieldDONumber, Label: "D/O Number", Kind: KindText, Required: true},
		{Key: FieldDeliveryDate, Label: "Delivery Date", Kind: KindDate, Required: true},
		{Key: FieldTruckingCompany, Label: "Trucking Company", Kind: KindText},
		{Key: FieldTruckPlate, Label: "Truck Plate", Kind: KindText},
		{Key: FieldDriverName, Label: "Driver", Kind: KindText},
		{Key: FieldDriverPhone, Label: "Driver Phone", Kind: KindText},
		{Key: FieldDeliveryAddress, Label: "Delivery Address", Kind: KindText},
	},
}
