package persistence

import (
	"errors"
	"strings"

	"github.com/logidocs/backend/internal/domain/shared"
	"gorm.io/gorm"
)

var errConcurrentModification = shared.NewDomainError(shared.CodeConcurrentModified,
	"The record has been modified by another user, reload and try again")

// translate maps GORM errors to domain errors. notFound and duplicate replace
// the generic shared errors when the caller has a more specific one.
func translate(err error, notFound, duplicate error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		if notFound != nil {
			return notFound
		}
		return shared.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		if duplicate != nil {
			return duplicate
		}
		return shared.ErrAlreadyExists
	}
	return err
}

// paginate applies the filter's page window
func paginate(query *gorm.DB, filter shared.Filter) *gorm.DB {
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}
	if pageSize > 200 {
		pageSize = 200
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	return query.Offset((page - 1) * pageSize).Limit(pageSize)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike quotes the LIKE wildcards of user input so it matches literally
// under PostgreSQL's default backslash escape
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
