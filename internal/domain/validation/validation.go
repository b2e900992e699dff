package validation

import (
	"errors"
	"strings"
)

// Error reports every field that made an operation invalid. The operation
// that returned it left state unchanged.
type Error struct {
	Fields []string
}

func (e *Error) Error() string {
	if len(e.Fields) == 0 {
		return "invalid input"
	}
	return "missing or invalid fields: " + strings.Join(e.Fields, ", ")
}

// Collector accumulates offending fields, keeping first-seen order.
type Collector struct {
	fields []string
}

func (c *Collector) Add(field string) {
	for _, existing := range c.fields {
		if existing == field {
			return
		}
	}
	c.fields = append(c.fields, field)
}

func (c *Collector) Required(field, value string) {
	if strings.TrimSpace(value) == "" {
		c.Add(field)
	}
}

// Err returns nil when nothing was collected.
func (c *Collector) Err() error {
	if len(c.fields) == 0 {
		return nil
	}
	out := make([]string, len(c.fields))
	copy(out, c.fields)
	return &Error{Fields: out}
}

func New(fields ...string) error {
	var c Collector
	for _, field := range fields {
		c.Add(field)
	}
	return c.Err()
}

// Fields extracts the offending fields from err, or nil if err is not a
// validation error.
func Fields(err error) []string {
	var verr *Error
	if errors.As(err, &verr) {
		return verr.Fields
	}
	return nil
}

func Is(err error) bool {
	var verr *Error
	return errors.As(err, &verr)
}
