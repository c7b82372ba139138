package record

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/Devenc042/MyZeDeDup/lang"
)

// Property names exposed to scripts.
const (
	FirstName      = "firstName"
	LastName       = "lastName"
	Address        = "address"
	LastUpdateDate = "lastUpdateDate"
)

// Properties lists the property names of a [Patient] in declaration order.
var Properties = []string{FirstName, LastName, Address, LastUpdateDate}

// Patient is a demographic record. A master patient is the surviving record
// of a merge; a new record is a candidate whose fields may replace the
// master's.
//
// Patient implements [lang.Getter], [lang.Setter], and [lang.Invoker], so a
// *Patient can be bound directly into a [lang.Context].
type Patient struct {
	FirstName      string
	LastName       string
	Address        string
	LastUpdateDate time.Time
}

// New returns a Patient with the given fields.
func New(first, last, address string, updated time.Time) *Patient {
	return &Patient{
		FirstName:      first,
		LastName:       last,
		Address:        address,
		LastUpdateDate: updated,
	}
}

// Clone returns a copy of p.
func (p *Patient) Clone() *Patient {
	c := *p

	return &c
}

// FullName returns the first and last name separated by a space.
func (p *Patient) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// String returns the full name.
func (p *Patient) String() string { return p.FullName() }

// GetProperty implements [lang.Getter].
func (p *Patient) GetProperty(name string) (any, error) {
	switch name {
	case FirstName:
		return p.FirstName, nil
	case LastName:
		return p.LastName, nil
	case Address:
		return p.Address, nil
	case LastUpdateDate:
		return p.LastUpdateDate, nil
	default:
		return nil, lang.ErrNoSuchProperty
	}
}

// SetProperty implements [lang.Setter]. Name fields accept strings; the
// update date accepts a date or a string in [lang.DateLayout].
func (p *Patient) SetProperty(name string, value any) error {
	switch name {
	case FirstName, LastName, Address:
		s, ok := value.(string)
		if !ok {
			return typeMismatch(name, "string", value)
		}

		switch name {
		case FirstName:
			p.FirstName = s
		case LastName:
			p.LastName = s
		default:
			p.Address = s
		}

		return nil

	case LastUpdateDate:
		switch v := value.(type) {
		case time.Time:
			p.LastUpdateDate = v
		case string:
			t, err := lang.ParseDate(v, "")
			if err != nil {
				return typeMismatch(name, "date", value)
			}

			p.LastUpdateDate = t
		default:
			return typeMismatch(name, "date", value)
		}

		return nil

	default:
		return lang.ErrNoSuchProperty
	}
}

// Invoke implements [lang.Invoker]. Patients expose fullName() and
// newerThan(other).
func (p *Patient) Invoke(_ context.Context, method string, args []any) (any, error) {
	switch method {
	case "fullName":
		if len(args) != 0 {
			return nil, &lang.ExecutionError{
				Kind:    lang.ArityMismatch,
				Op:      method,
				Message: "fullName takes no arguments",
			}
		}

		return p.FullName(), nil

	case "newerThan":
		if len(args) != 1 {
			return nil, &lang.ExecutionError{
				Kind:    lang.ArityMismatch,
				Op:      method,
				Message: "newerThan takes one patient",
			}
		}

		other, ok := args[0].(*Patient)
		if !ok {
			return nil, typeMismatch(method, "patient", args[0])
		}

		return p.LastUpdateDate.After(other.LastUpdateDate), nil

	default:
		return nil, lang.ErrNoSuchProperty
	}
}

// Members lists the properties and methods of a Patient.
func (*Patient) Members() []string {
	return append(slices.Clone(Properties), "fullName", "newerThan")
}

// Map returns the properties of p as a map, for use as an expression
// environment.
func (p *Patient) Map() map[string]any {
	return map[string]any{
		FirstName:      p.FirstName,
		LastName:       p.LastName,
		Address:        p.Address,
		LastUpdateDate: p.LastUpdateDate,
	}
}

func typeMismatch(name, want string, got any) error {
	return &lang.ExecutionError{
		Kind:    lang.TypeMismatch,
		Op:      "set",
		Message: name + " requires " + want + ", found " + lang.TypeName(got),
	}
}
