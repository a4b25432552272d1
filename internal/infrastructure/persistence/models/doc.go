// Package models contains GORM persistence models that map to database tables.
// They are separate from domain entities so the domain layer stays free of
// ORM tags; each model carries ToDomain and FromDomain mappers.
//
// Structure:
//   - base.go: BaseModel and AggregateModel
//   - identity.go: users
//   - shipment.go: shipments, shipment_containers, shipment_remarks
//   - document.go: documents, document_fields, document_items
//   - audit.go: action_logs
package models
