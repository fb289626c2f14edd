package queries

import (
	"errors"

	"tidebook/internal/infra"
)

// ErrViewNotFound hides both missing rows and rows the actor may not see.
var ErrViewNotFound = errors.New("not found")

func mapRepoErr(err error) error {
	if infra.IsKind(err, infra.KindNotFound) {
		return ErrViewNotFound
	}
	return err
}
