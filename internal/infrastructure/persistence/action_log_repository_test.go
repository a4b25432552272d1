package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/logidocs/backend/internal/domain/audit"
	"github.com/logidocs/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var actionLogColumns = []string{"id", "seq", "pro_number", "action", "target_type", "target_label",
	"description", "department", "user_id", "username", "metadata", "created_at"}

func newMockActionLogRepository(t *testing.T) (*GormActionLogRepository, sqlmock.Sqlmock, *sql.DB) {
	db, mock, mockDB := newMockDatabase(t)
	return NewGormActionLogRepository(db.DB), mock, mockDB
}

func TestGormActionLogRepository_Append(t *testing.T) {
	repo, mock, mockDB := newMockActionLogRepository(t)
	defer mockDB.Close()

	actor := shared.Actor{UserID: uuid.New(), Username: "sam", Department: shared.DepartmentShipment}
	entry := audit.NewActionLog(audit.ActionUpload, audit.TargetDocument, actor).
		Describe("Bill of Lading", "Uploaded bol.pdf").
		With("file_name", "bol.pdf")

	mock.ExpectQuery(`INSERT INTO "action_logs" .* RETURNING "seq"`).
		WillReturnRows(sqlmock.NewRows([]string{"seq"}).AddRow(17))

	require.NoError(t, repo.Append(context.Background(), entry))
	assert.Equal(t, int64(17), entry.Seq)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormActionLogRepository_ListAfter(t *testing.T) {
	repo, mock, mockDB := newMockActionLogRepository(t)
	defer mockDB.Close()

	now := time.Now()
	mock.ExpectQuery(`SELECT \* FROM "action_logs" WHERE seq > \$1 ORDER BY seq ASC LIMIT \$2`).
		WithArgs(10, 50).
		WillReturnRows(sqlmock.NewRows(actionLogColumns).
			AddRow(uuid.NewString(), 11, "2026001", "CREATE", "SHIPMENT", "2026001", "Created shipment", "SHIPMENT",
				uuid.NewString(), "sam", `{"customer":"Acme"}`, now).
			AddRow(uuid.NewString(), 12, "2026001", "UPLOAD", "DOCUMENT", "Invoice", "Uploaded inv.pdf", "FINANCE",
				uuid.NewString(), "fiona", `{}`, now))

	logs, err := repo.ListAfter(context.Background(), 10, 0)

	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, int64(11), logs[0].Seq)
	assert.Equal(t, "Acme", logs[0].Metadata["customer"])
	assert.Equal(t, audit.ActionUpload, logs[1].Action)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormActionLogRepository_FindAll(t *testing.T) {
	repo, mock, mockDB := newMockActionLogRepository(t)
	defer mockDB.Close()

	dept := shared.DepartmentFinance
	mock.ExpectQuery(`SELECT count\(\*\) FROM "action_logs" WHERE pro_number = \$1 AND department = \$2`).
		WithArgs("2026001", dept).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`SELECT \* FROM "action_logs" WHERE pro_number = \$1 AND department = \$2 ORDER BY seq DESC LIMIT \$3`).
		WithArgs("2026001", dept, 20).
		WillReturnRows(sqlmock.NewRows(actionLogColumns))

	logs, total, err := repo.FindAll(context.Background(), audit.Filter{
		ProNumber:  "2026001",
		Department: &dept,
	})

	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, logs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, 50, clampLimit(0))
	assert.Equal(t, 25, clampLimit(25))
	assert.Equal(t, maxActionLogBatch, clampLimit(5000))
}
