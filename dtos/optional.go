package dtos

import (
	"bytes"
	"encoding/json"

	"github.com/google/uuid"
)

// OptionalUUID distinguishes an absent field from an explicit JSON null in
// PATCH bodies. Set is true when the key appeared in the request; Value is
// nil when the client sent null.
type OptionalUUID struct {
	Value *uuid.UUID
	Set   bool
}

func (o *OptionalUUID) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(data, []byte("null")) {
		o.Value = nil
		return nil
	}
	var id uuid.UUID
	if err := json.Unmarshal(data, &id); err != nil {
		return err
	}
	o.Value = &id
	return nil
}

// OptionalString is the string counterpart of OptionalUUID.
type OptionalString struct {
	Value *string
	Set   bool
}

func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(data, []byte("null")) {
		o.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	o.Value = &s
	return nil
}
