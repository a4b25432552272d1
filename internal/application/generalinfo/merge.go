package generalinfo

import (
	"sort"
	"strings"
	"time"

	"github.com/logidocs/backend/internal/domain/document"
	"github.com/logidocs/backend/internal/domain/shipment"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// summarisedTypes are the document types General Info reads
var summarisedTypes = []document.Type{
	document.TypeBillOfLading,
	document.TypeInvoice,
	document.TypePackingList,
}

// ProductKey is the merge key of a product name: trimmed, inner whitespace
// collapsed and upper-cased. Blank names give "".
func ProductKey(name string) string {
	collapsed := strings.Join(strings.Fields(name), " ")
	if collapsed == "" {
		return ""
	}
	return cases.Upper(language.Und).String(collapsed)
}

// Merge derives the General Info of a shipment from its documents. Any of
// the BOL, invoice and packing list may be missing.
func Merge(sh *shipment.Shipment, docs []*document.Document, now time.Time) *Summary {
	byType := make(map[document.Type]*document.Document, len(docs))
	for _, d := range docs {
		if _, seen := byType[d.Type]; !seen {
			byType[d.Type] = d
		}
	}
	bol := byType[document.TypeBillOfLading]
	inv := byType[document.TypeInvoice]
	pl := byType[document.TypePackingList]

	summary := &Summary{
		ProNumber: sh.ProNumber.String(),
		Shipment: ShipmentInfo{
			CustomerName:   sh.Details.CustomerName,
			Origin:         sh.Details.Origin,
			Destination:    sh.Details.Destination,
			Status:         string(sh.Status),
			TruckingStatus: string(sh.TruckingStatus),
		},
		Containers:    containerPairs(sh, bol),
		Sources:       []SourceDocument{},
		Missing:       []string{},
		Discrepancies: []Discrepancy{},
		GeneratedAt:   now,
	}

	if bol != nil {
		c := bol.Content()
		summary.BillOfLading = &BOLHeader{
			BLNumber:        c.Value(document.FieldBLNumber),
			Shipper:         c.Value(document.FieldShipper),
			Consignee:       c.Value(document.FieldConsignee),
			NotifyParty:     c.Value(document.FieldNotifyParty),
			Vessel:          c.Value(document.FieldVesselName),
			Voyage:          c.Value(document.FieldVoyageNumber),
			PortOfLoading:   c.Value(document.FieldPortOfLoading),
			PortOfDischarge: c.Value(document.FieldPortOfDischarge),
			PlaceOfDelivery: c.Value(document.FieldPlaceOfDelivery),
			ETD:             c.Value(document.FieldETD),
			ETA:             c.Value(document.FieldETA),
			FreightTerms:    c.Value(document.FieldFreightTerms),
		}
	}
	if inv != nil {
		c := inv.Content()
		summary.Invoice = &InvoiceHeader{
			InvoiceNumber: c.Value(document.FieldInvoiceNumber),
			InvoiceDate:   c.Value(document.FieldInvoiceDate),
			Currency:      c.Value(document.FieldCurrency),
			Seller:        c.Value(document.FieldSeller),
			Buyer:         c.Value(document.FieldBuyer),
			Incoterms:     c.Value(document.FieldIncoterms),
			PaymentTerms:  c.Value(document.FieldPaymentTerms),
		}
		summary.Declared.Amount = declared(c, document.FieldTotalAmount)
	}
	if pl != nil {
		c := pl.Content()
		summary.PackingList = &PackingListHeader{
			PackingListNumber: c.Value(document.FieldPackingListNumber),
			PackingDate:       c.Value(document.FieldPackingDate),
		}
		summary.Declared.Packages = declared(c, document.FieldTotalPackages)
		summary.Declared.NetWeight = declared(c, document.FieldTotalNetWeight)
		summary.Declared.GrossWeight = declared(c, document.FieldTotalGrossWeight)
		summary.Declared.Measurement = declared(c, document.FieldTotalMeasurement)
	}

	for _, t := range document.AllTypes() {
		if d, ok := byType[t]; ok {
			summary.Sources = append(summary.Sources, SourceDocument{
				DocumentID: d.ID,
				Type:       string(t),
				Label:      t.Label(),
				Status:     string(d.Status),
				HasFile:    d.HasFile(),
				UpdatedAt:  d.UpdatedAt,
			})
		}
	}
	for _, t := range summarisedTypes {
		if _, ok := byType[t]; !ok {
			summary.Missing = append(summary.Missing, string(t))
		}
	}

	summary.Lines, summary.Discrepancies = mergeLines(inv, pl)
	summary.Totals = totals(summary.Lines)
	return summary
}

// productGroup is the sum of one document's lines sharing a key
type productGroup struct {
	key         string
	name        string
	description string
	unit        string
	lines       int
	quantity    decimal.Decimal
	unitPrice   decimal.Decimal
	amount      decimal.Decimal
	packages    decimal.Decimal
	netWeight   decimal.Decimal
	grossWeight decimal.Decimal
	measurement decimal.Decimal
}

// groupItems sums the items of one document by product key, keeping the
// order in which keys first appear
func groupItems(d *document.Document) ([]*productGroup, map[string]*productGroup) {
	if d == nil {
		return nil, map[string]*productGroup{}
	}
	var order []*productGroup
	byKey := make(map[string]*productGroup)
	for _, it := range d.Items {
		key := ProductKey(it.ProductName)
		if key == "" {
			continue
		}
		g, ok := byKey[key]
		if !ok {
			g = &productGroup{key: key, name: strings.Join(strings.Fields(it.ProductName), " ")}
			byKey[key] = g
			order = append(order, g)
		}
		g.lines++
		if it.Description != "" {
			g.description = it.Description
		}
		if it.Unit != "" {
			g.unit = it.Unit
		}
		if g.unitPrice.IsZero() {
			g.unitPrice = it.UnitPrice
		}
		g.quantity = g.quantity.Add(it.Quantity)
		g.amount = g.amount.Add(it.Amount)
		g.packages = g.packages.Add(it.Packages)
		g.netWeight = g.netWeight.Add(it.NetWeight)
		g.grossWeight = g.grossWeight.Add(it.GrossWeight)
		g.measurement = g.measurement.Add(it.Measurement)
	}
	for _, g := range order {
		// Several priced lines of one product: report the average price
		if g.lines > 1 && !g.quantity.IsZero() && !g.amount.IsZero() {
			g.unitPrice = g.amount.DivRound(g.quantity, 4)
		}
	}
	return order, byKey
}

// mergeLines combines invoice and packing list lines. The invoice owns
// quantity and money, the packing list owns packages, weights and volume.
func mergeLines(inv, pl *document.Document) ([]Line, []Discrepancy) {
	invGroups, invByKey := groupItems(inv)
	plGroups, plByKey := groupItems(pl)

	lines := make([]Line, 0, len(invGroups)+len(plGroups))
	index := make(map[string]int)
	for _, g := range invGroups {
		index[g.key] = len(lines)
		lines = append(lines, Line{
			Key:         g.key,
			ProductName: g.name,
			Description: g.description,
			Unit:        g.unit,
			Quantity:    g.quantity,
			UnitPrice:   g.unitPrice,
			Amount:      g.amount,
			Sources:     []string{string(document.TypeInvoice)},
		})
	}
	for _, g := range plGroups {
		i, ok := index[g.key]
		if !ok {
			index[g.key] = len(lines)
			lines = append(lines, Line{
				Key:         g.key,
				ProductName: g.name,
				Quantity:    g.quantity,
				Sources:     []string{},
			})
			i = len(lines) - 1
		}
		line := &lines[i]
		line.Packages = g.packages
		line.NetWeight = g.netWeight
		line.GrossWeight = g.grossWeight
		line.Measurement = g.measurement
		if g.description != "" {
			line.Description = g.description
		}
		if g.unit != "" {
			line.Unit = g.unit
		}
		line.Sources = append(line.Sources, string(document.TypePackingList))
	}

	discrepancies := []Discrepancy{}
	if inv == nil || pl == nil {
		return lines, discrepancies
	}
	for _, line := range lines {
		invGroup, inInv := invByKey[line.Key]
		plGroup, inPL := plByKey[line.Key]
		switch {
		case inInv && inPL:
			if !invGroup.quantity.Equal(plGroup.quantity) {
				discrepancies = append(discrepancies, Discrepancy{
					Key:                 line.Key,
					ProductName:         line.ProductName,
					Kind:                KindQuantityMismatch,
					InvoiceQuantity:     invGroup.quantity,
					PackingListQuantity: plGroup.quantity,
				})
			}
		case inInv:
			discrepancies = append(discrepancies, Discrepancy{
				Key:             line.Key,
				ProductName:     line.ProductName,
				Kind:            KindMissingInPackingList,
				InvoiceQuantity: invGroup.quantity,
			})
		case inPL:
			discrepancies = append(discrepancies, Discrepancy{
				Key:                 line.Key,
				ProductName:         line.ProductName,
				Kind:                KindMissingInInvoice,
				PackingListQuantity: plGroup.quantity,
			})
		}
	}
	return lines, discrepancies
}

func totals(lines []Line) Totals {
	var t Totals
	for _, l := range lines {
		t.Quantity = t.Quantity.Add(l.Quantity)
		t.Amount = t.Amount.Add(l.Amount)
		t.Packages = t.Packages.Add(l.Packages)
		t.NetWeight = t.NetWeight.Add(l.NetWeight)
		t.GrossWeight = t.GrossWeight.Add(l.GrossWeight)
		t.Measurement = t.Measurement.Add(l.Measurement)
	}
	return t
}

// containerPairs pairs the BOL's container and seal numbers by position and
// falls back to the shipment's containers
func containerPairs(sh *shipment.Shipment, bol *document.Document) []ContainerPair {
	sizes := make(map[string]string, len(sh.Containers))
	for _, c := range sh.Containers {
		sizes[c.ContainerNumber] = string(c.Size)
	}

	pairs := []ContainerPair{}
	if bol != nil {
		c := bol.Content()
		byPosition := make(map[int]*ContainerPair)
		for _, f := range c.Values(document.FieldContainerNumber) {
			byPosition[f.Position] = &ContainerPair{Position: f.Position, ContainerNumber: f.Value, Size: sizes[f.Value]}
		}
		for _, f := range c.Values(document.FieldSealNumber) {
			p, ok := byPosition[f.Position]
			if !ok {
				p = &ContainerPair{Position: f.Position}
				byPosition[f.Position] = p
			}
			p.SealNumber = f.Value
		}
		for _, p := range byPosition {
			pairs = append(pairs, *p)
		}
		sort.Slice(pairs, func(i, j int) bool { return pairs[i].Position < pairs[j].Position })
	}
	if len(pairs) > 0 {
		return pairs
	}
	for i, c := range sh.Containers {
		pairs = append(pairs, ContainerPair{
			Position:        i + 1,
			ContainerNumber: c.ContainerNumber,
			SealNumber:      c.SealNumber,
			Size:            string(c.Size),
		})
	}
	return pairs
}

func declared(c document.Content, key string) *decimal.Decimal {
	v := c.Value(key)
	if v == "" {
		return nil
	}
	d, err := document.ParseAmount(v)
	if err != nil {
		return nil
	}
	return &d
}
