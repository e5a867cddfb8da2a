package models

// ValueConverting is the persisted mapping table that translates values of
// one source application/type into the vocabulary of a destination
// application/type. FromApplicationID is the authorization partition key.
//
// The JSON form is the broker reply payload; the id is never serialized there.
type ValueConverting struct {
	ID                int64             `json:"-"`
	DisplayName       string            `json:"displayName"`
	FromApplicationID int64             `json:"fromApplicationId"`
	FromTypeID        string            `json:"fromTypeId"`
	ToApplicationID   string            `json:"toApplicationId"`
	ToTypeID          string            `json:"toTypeId"`
	ConvertingMap     map[string]string `json:"convertingMap"`
}

// ValueConvertingDto is the REST wire representation. Pointer fields
// distinguish "absent" from zero so validation can report missing values.
//
// ID is read-only: handlers discard it on input and the store assigns it.
// ConvertingMap uses omitzero so an excluded (nil) map is left out of the
// output entirely while an empty stored map is still emitted as {}.
type ValueConvertingDto struct {
	ID                *int64            `json:"id,omitempty"`
	DisplayName       *string           `json:"displayName"`
	FromApplicationID *int64            `json:"fromApplicationId"`
	FromTypeID        *string           `json:"fromTypeId"`
	ToApplicationID   *string           `json:"toApplicationId"`
	ToTypeID          *string           `json:"toTypeId"`
	ConvertingMap     map[string]string `json:"convertingMap,omitzero"`
}

// ListQuery describes one page request against the store. When Owners is
// non-nil only records whose FromApplicationID is listed are returned.
// SkipConvertingMaps lets the store avoid loading maps the caller will drop.
type ListQuery struct {
	Page               PageRequest
	Owners             []int64
	SkipConvertingMaps bool
}

// Filtered reports whether the query is restricted to an owner set.
func (q ListQuery) Filtered() bool {
	return q.Owners != nil
}
