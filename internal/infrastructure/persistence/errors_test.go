package persistence

import (
	"errors"
	"fmt"
	"testing"

	"github.com/logidocs/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestTranslate(t *testing.T) {
	specific := shared.NewDomainError("DOCUMENT_EXISTS", "exists")

	assert.NoError(t, translate(nil, nil, nil))
	assert.ErrorIs(t, translate(gorm.ErrRecordNotFound, nil, nil), shared.ErrNotFound)
	assert.ErrorIs(t, translate(fmt.Errorf("wrap: %w", gorm.ErrDuplicatedKey), nil, specific), specific)
	assert.ErrorIs(t, translate(gorm.ErrDuplicatedKey, nil, nil), shared.ErrAlreadyExists)

	other := errors.New("boom")
	assert.Equal(t, other, translate(other, nil, nil))
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, "ACME", escapeLike("ACME"))
	assert.Equal(t, `100\%`, escapeLike("100%"))
	assert.Equal(t, `a\_b`, escapeLike("a_b"))
	assert.Equal(t, `c:\\tmp`, escapeLike(`c:\tmp`))
}
