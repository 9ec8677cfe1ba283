package domain

import (
	"database/sql/driver"
	"fmt"
)

// enum é a restrição comum dos tipos string persistidos como TEXT com CHECK.
type enum interface {
	~string
	IsValid() bool
}

// scanEnum implementa sql.Scanner para os enums do domínio. NULL vira def.
func scanEnum[T enum](dst *T, src interface{}, def T) error {
	if src == nil {
		*dst = def
		return nil
	}

	var str string
	switch v := src.(type) {
	case string:
		str = v
	case []byte:
		str = string(v)
	default:
		return fmt.Errorf("cannot scan %T into %T", src, *dst)
	}

	val := T(str)
	if !val.IsValid() {
		return fmt.Errorf("invalid %T value: %s", val, str)
	}
	*dst = val
	return nil
}

// enumValue implementa driver.Valuer recusando valores fora do conjunto.
func enumValue[T enum](v T) (driver.Value, error) {
	if !v.IsValid() {
		return nil, fmt.Errorf("invalid %T value: %s", v, string(v))
	}
	return string(v), nil
}
