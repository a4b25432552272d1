package document

import (
	"testing"

	"github.com/google/uuid"
	"github.com/logidocs/backend/internal/domain/shared"
	"github.com/logidocs/backend/internal/domain/shipment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	shipmentClerk = shared.Actor{UserID: uuid.New(), Username: "ana", Department: shared.DepartmentShipment}
	financeClerk  = shared.Actor{UserID: uuid.New(), Username: "cy", Department: shared.DepartmentFinance}
	verifier      = shared.Actor{UserID: uuid.New(), Username: "vic", Department: shared.DepartmentVerifier}
	admin         = shared.Actor{UserID: uuid.New(), Username: "root", Department: shared.DepartmentVerifier, IsAdmin: true}
)

func newTestShipment(t *testing.T) *shipment.Shipment {
	t.Helper()
	pro, err := shipment.NewProNumber(2026, 7)
	require.NoError(t, err)
	s, err := shipment.NewShipment(pro, shipment.Details{CustomerName: "Acme"}, shipmentClerk)
	require.NoError(t, err)
	return s
}

func newTestBOL(t *testing.T) *Document {
	t.Helper()
	c, err := ValidateContent(TypeBillOfLading, validBOLFields(), nil)
	require.NoError(t, err)
	d, err := NewDocument(newTestShipment(t), TypeBillOfLading, c, shipmentClerk)
	require.NoError(t, err)
	d.ClearDomainEvents()
	return d
}

func TestNewDocument(t *testing.T) {
	s := newTestShipment(t)
	c, err := ValidateContent(TypeBillOfLading, validBOLFields(), nil)
	require.NoError(t, err)

	d, err := NewDocument(s, TypeBillOfLading, c, shipmentClerk)
	require.NoError(t, err)

	assert.Equal(t, s.ID, d.ShipmentID)
	assert.Equal(t, "2026007", d.ProNumber.String())
	assert.Equal(t, shared.DepartmentShipment, d.Department)
	assert.Equal(t, StatusPendingReview, d.Status)
	assert.False(t, d.HasFile())
	require.Len(t, d.GetDomainEvents(), 1)

	ev, ok := d.GetDomainEvents()[0].(*DocumentEvent)
	require.True(t, ok)
	assert.Equal(t, EventTypeDocumentCreated, ev.EventType())
	assert.Equal(t, "2026007", ev.ProNumber)
	assert.Equal(t, shipmentClerk.UserID, ev.EventActor().UserID)
}

func TestNewDocument_Rejections(t *testing.T) {
	s := newTestShipment(t)
	c, _ := ValidateContent(TypeBillOfLading, validBOLFields(), nil)

	_, err := NewDocument(s, TypeBillOfLading, c, financeClerk)
	assert.ErrorIs(t, err, ErrNotOwningDepartment)

	_, err = NewDocument(s, TypeBillOfLading, Content{Items: []Item{{ProductName: "x"}}}, shipmentClerk)
	assert.ErrorIs(t, err, ErrItemsNotAllowed)

	require.NoError(t, s.Cancel(shipmentClerk))
	_, err = NewDocument(s, TypeBillOfLading, c, shipmentClerk)
	assert.ErrorIs(t, err, shipment.ErrShipmentClosed)

	_, err = NewDocument(newTestShipment(t), TypeBillOfLading, c, admin)
	assert.NoError(t, err)
}

func TestDocument_AttachFile(t *testing.T) {
	d := newTestBOL(t)

	prev, err := d.AttachFile(File{Name: "bol.pdf", StorageKey: "shipment/2026/05/2026007/bol/a_bol.pdf", Size: 10}, shipmentClerk)
	require.NoError(t, err)
	assert.Nil(t, prev)
	assert.True(t, d.HasFile())

	prev, err = d.AttachFile(File{Name: "bol-v2.pdf", StorageKey: "k2"}, shipmentClerk)
	require.NoError(t, err)
	require.NotNil(t, prev)
	assert.Equal(t, "bol.pdf", prev.Name)
	assert.Len(t, d.GetDomainEvents(), 2)

	_, err = d.AttachFile(File{Name: "x.pdf"}, financeClerk)
	assert.ErrorIs(t, err, ErrNotOwningDepartment)
}

func TestDocument_VerifyAndReject(t *testing.T) {
	d := newTestBOL(t)

	assert.ErrorIs(t, d.Verify(shipmentClerk), ErrVerifierOnly)
	require.NoError(t, d.Verify(verifier))
	assert.Equal(t, StatusVerified, d.Status)
	require.NotNil(t, d.VerifiedBy)
	assert.Equal(t, verifier.UserID, *d.VerifiedBy)
	assert.ErrorIs(t, d.Verify(verifier), ErrAlreadyReviewed)

	d = newTestBOL(t)
	assert.ErrorIs(t, d.Reject("  ", verifier), ErrRejectionReason)
	require.NoError(t, d.Reject("Consignee name misspelt", verifier))
	assert.Equal(t, StatusRejected, d.Status)
	assert.Equal(t, "Consignee name misspelt", d.RejectionReason)
}

func TestDocument_EditReopensReview(t *testing.T) {
	d := newTestBOL(t)
	require.NoError(t, d.Reject("wrong vessel", verifier))

	c, err := ValidateContent(TypeBillOfLading, validBOLFields(), nil)
	require.NoError(t, err)
	require.NoError(t, d.UpdateContent(c, shipmentClerk))

	assert.Equal(t, StatusPendingReview, d.Status)
	assert.Nil(t, d.VerifiedBy)
	assert.Empty(t, d.RejectionReason)
	assert.ErrorIs(t, d.UpdateContent(c, financeClerk), ErrNotOwningDepartment)
}

func TestDocument_ReplaceItems(t *testing.T) {
	d := newTestBOL(t)
	assert.ErrorIs(t, d.ReplaceItems([]Item{{ProductName: "x"}}, shipmentClerk), ErrItemsNotAllowed)

	inv := &Document{Type: TypeInvoice, Status: StatusVerified}
	require.NoError(t, inv.ReplaceItems([]Item{{ProductName: "x"}}, financeClerk))
	assert.Len(t, inv.Items, 1)
	assert.Equal(t, StatusPendingReview, inv.Status)
}

func TestDocument_MarkDeleted(t *testing.T) {
	d := newTestBOL(t)
	assert.ErrorIs(t, d.MarkDeleted(verifier), ErrNotOwningDepartment)
	require.NoError(t, d.MarkDeleted(shipmentClerk))
	require.Len(t, d.GetDomainEvents(), 1)
	assert.Equal(t, EventTypeDocumentDeleted, d.GetDomainEvents()[0].EventType())
}
