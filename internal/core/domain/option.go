package domain

import (
	"fmt"
	"slices"
)

// Option is one selectable day of the weekly poll. The set of options is
// closed; raw tags coming from a transport must go through ParseOption.
type Option string

const (
	Monday    Option = "mon"
	Tuesday   Option = "tue"
	Wednesday Option = "wed"
	Thursday  Option = "thu"
	Friday    Option = "fri"
	Saturday  Option = "sat"
	Sunday    Option = "sun"
)

var options = []Option{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

var defaultLabels = map[Option]string{
	Monday:    "Monday",
	Tuesday:   "Tuesday",
	Wednesday: "Wednesday",
	Thursday:  "Thursday",
	Friday:    "Friday",
	Saturday:  "Saturday",
	Sunday:    "Sunday",
}

// Options returns every option in display order.
func Options() []Option {
	return slices.Clone(options)
}

// ParseOption validates a raw option tag.
func ParseOption(tag string) (Option, error) {
	o := Option(tag)
	if !o.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidOption, tag)
	}
	return o, nil
}

func (o Option) Valid() bool {
	return slices.Contains(options, o)
}

// Label returns the built-in display name of the option.
func (o Option) Label() string {
	if label, ok := defaultLabels[o]; ok {
		return label
	}
	return string(o)
}

func (o Option) String() string {
	return string(o)
}
