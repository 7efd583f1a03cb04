package commands

import (
	"fmt"
	"strconv"
)

// optInt64 is a flag value that remembers whether it was set.
type optInt64 struct{ v *int64 }

func (o *optInt64) String() string {
	if o.v == nil {
		return ""
	}
	return strconv.FormatInt(*o.v, 10)
}

func (o *optInt64) Set(s string) error {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("not an integer: %s", s)
	}
	o.v = &n
	return nil
}

func (o *optInt64) Type() string { return "id" }

// optInt is optInt64 for plain ints.
type optInt struct{ v *int }

func (o *optInt) String() string {
	if o.v == nil {
		return ""
	}
	return strconv.Itoa(*o.v)
}

func (o *optInt) Set(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("not an integer: %s", s)
	}
	o.v = &n
	return nil
}

func (o *optInt) Type() string { return "int" }

// optString distinguishes --flag "" from an absent flag.
type optString struct{ v *string }

func (o *optString) String() string {
	if o.v == nil {
		return ""
	}
	return *o.v
}

func (o *optString) Set(s string) error {
	o.v = &s
	return nil
}

func (o *optString) Type() string { return "string" }
