package property

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Features is one Property Features record as submitted. Every field is a
// pointer so a missing key can be told apart from a zero value.
type Features struct {
	BathroomCount     *float64 `json:"BathroomCount" validate:"required,gte=0"`
	BedroomCount      *float64 `json:"BedroomCount" validate:"required,gte=0"`
	Fireplace         *Value   `json:"Fireplace" validate:"required"`
	Furnished         *Value   `json:"Furnished" validate:"required"`
	Garden            *Value   `json:"Garden" validate:"required"`
	GardenArea        *float64 `json:"GardenArea" validate:"required,gte=0"`
	LivingArea        *float64 `json:"LivingArea" validate:"required,gte=0"`
	NumberOfFacades   *float64 `json:"NumberOfFacades" validate:"required,gte=0"`
	SwimmingPool      *Value   `json:"SwimmingPool" validate:"required"`
	Terrace           *Value   `json:"Terrace" validate:"required"`
	PostalCode        *float64 `json:"PostalCode" validate:"required,gte=0"`
	TypeOfProperty    *Value   `json:"TypeOfProperty" validate:"required"`
	Kitchen           *Value   `json:"Kitchen" validate:"required"`
	PEB               *Value   `json:"PEB" validate:"required"`
	StateOfBuilding   *Value   `json:"StateOfBuilding" validate:"required"`
	SubtypeOfProperty *Value   `json:"SubtypeOfProperty" validate:"required"`
	TypeOfSale        *Value   `json:"TypeOfSale" validate:"required"`
	ConstructionYear  *float64 `json:"ConstructionYear" validate:"required,gte=0"`
	District          *Value   `json:"District" validate:"required"`
}

// Record is a flat view of a Features record keyed by column name.
type Record map[string]Value

// refs maps every column to the address of its field.
func (f *Features) refs() map[string]any {
	return map[string]any{
		BathroomCount:     &f.BathroomCount,
		BedroomCount:      &f.BedroomCount,
		Fireplace:         &f.Fireplace,
		Furnished:         &f.Furnished,
		Garden:            &f.Garden,
		GardenArea:        &f.GardenArea,
		LivingArea:        &f.LivingArea,
		NumberOfFacades:   &f.NumberOfFacades,
		SwimmingPool:      &f.SwimmingPool,
		Terrace:           &f.Terrace,
		PostalCode:        &f.PostalCode,
		TypeOfProperty:    &f.TypeOfProperty,
		Kitchen:           &f.Kitchen,
		PEB:               &f.PEB,
		StateOfBuilding:   &f.StateOfBuilding,
		SubtypeOfProperty: &f.SubtypeOfProperty,
		TypeOfSale:        &f.TypeOfSale,
		ConstructionYear:  &f.ConstructionYear,
		District:          &f.District,
	}
}

// Set assigns column name. Numeric columns accept numbers or numeric text.
func (f *Features) Set(name string, v Value) error {
	ref, ok := f.refs()[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownColumn, name)
	}
	switch p := ref.(type) {
	case **float64:
		n, ok := v.Float()
		if !ok {
			parsed, err := strconv.ParseFloat(strings.TrimSpace(v.String()), 64)
			if err != nil {
				return fmt.Errorf("%w: %s: %q is not a number", ErrInvalidRecord, name, v.String())
			}
			n = parsed
		}
		*p = &n
	case **Value:
		val := v
		*p = &val
	}
	return nil
}

// Get returns the value of column name and whether it is present.
func (f *Features) Get(name string) (Value, bool) {
	ref, ok := f.refs()[name]
	if !ok {
		return Value{}, false
	}
	switch p := ref.(type) {
	case **float64:
		if *p == nil {
			return Value{}, false
		}
		return Number(**p), true
	case **Value:
		if *p == nil {
			return Value{}, false
		}
		return **p, true
	}
	return Value{}, false
}

// Record flattens the present fields.
func (f *Features) Record() Record {
	rec := make(Record, len(schema))
	for _, c := range schema {
		if v, ok := f.Get(c.Name); ok {
			rec[c.Name] = v
		}
	}
	return rec
}

// UnmarshalJSON decodes a record, accepting true/false as 1/0 on numeric
// columns the way Value does for the others.
func (f *Features) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		return nil
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	for key, msg := range raw {
		if !isNumericColumn(key) {
			continue
		}
		switch string(bytes.TrimSpace(msg)) {
		case "true":
			raw[key] = json.RawMessage("1")
		case "false":
			raw[key] = json.RawMessage("0")
		}
	}
	fixed, err := json.Marshal(raw)
	if err != nil {
		return err
	}
	type plain Features
	return json.Unmarshal(fixed, (*plain)(f))
}

// isNumericColumn matches key the way encoding/json matches field names.
func isNumericColumn(key string) bool {
	for _, c := range schema {
		if c.Kind == Numeric && strings.EqualFold(c.Name, key) {
			return true
		}
	}
	return false
}
