package response

import (
	"github.com/jinzhu/copier"

	"github.com/nekogravitycat/hotel-management-backend/internal/pkg/errs"
)

// Map copies the fields of src into a new T by name.
func Map[T any](src any) (T, error) {
	var dst T
	if err := copier.Copy(&dst, src); err != nil {
		return dst, errs.Wrap(err, "failed to map response")
	}
	return dst, nil
}

// MapAll applies Map to every element of src.
func MapAll[T, S any](src []S) ([]T, error) {
	out := make([]T, len(src))
	for i, s := range src {
		v, err := Map[T](s)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
