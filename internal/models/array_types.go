package models

import (
	"database/sql/driver"

	"github.com/lib/pq"
)

// StringArray is a TEXT[] column that marshals to an empty JSON array, never null
type StringArray []string

// Value implements the driver.Valuer interface
func (a StringArray) Value() (driver.Value, error) {
	if a == nil {
		return pq.Array([]string{}).Value()
	}
	return pq.Array([]string(a)).Value()
}

// Scan implements the sql.Scanner interface
func (a *StringArray) Scan(src interface{}) error {
	if src == nil {
		*a = StringArray{}
		return nil
	}
	slice := (*[]string)(a)
	if err := pq.Array(slice).Scan(src); err != nil {
		return err
	}
	if *a == nil {
		*a = StringArray{}
	}
	return nil
}
