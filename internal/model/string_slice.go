package model

import (
	"database/sql/driver"
	"fmt"
	"strings"
)

// StringSlice stores a list of short values (tags, categories, post IDs)
// in a single text column. Good enough for lists that are only ever read
// and written whole.

type StringSlice []string

// Value implements driver.Valuer. Elements may not contain the comma
// separator.
func (s StringSlice) Value() (driver.Value, error) {
	if len(s) == 0 {
		return "", nil
	}

	for _, v := range s {
		if strings.Contains(v, ",") {
			return nil, fmt.Errorf("value %q contains the separator", v)
		}
	}

	return strings.Join(s, ","), nil
}

// Scan implements sql.Scanner.
func (s *StringSlice) Scan(value any) error {
	if value == nil {
		*s = StringSlice{}
		return nil
	}

	str, ok := value.(string)
	if !ok {
		b, ok := value.([]byte)
		if !ok {
			return fmt.Errorf("cannot scan %T into StringSlice", value)
		}

		str = string(b)
	}

	if str == "" {
		*s = StringSlice{}
	} else {
		*s = strings.Split(str, ",")
	}

	return nil
}
