// Package mapping converts between the wire and persisted forms of a
// ValueConverting record.
package mapping

import (
	"sort"
	"strings"

	"valueconverting/internal/valueconverting/models"
	dErrors "valueconverting/pkg/domain-errors"
)

// ToEntity builds an entity from dto. Keys and values of the converting map
// are trimmed; if two keys collide after trimming, the one that sorts last in
// its untrimmed form wins. The id is never taken from the dto.
//
// Scalar fields are expected to have been validated already; a nil scalar
// maps to its zero value.
func ToEntity(dto models.ValueConvertingDto) (models.ValueConverting, error) {
	if dto.ConvertingMap == nil {
		return models.ValueConverting{}, dErrors.New(dErrors.CodeValidation, "convertingMap must not be null")
	}
	return models.ValueConverting{
		DisplayName:       deref(dto.DisplayName),
		FromApplicationID: deref(dto.FromApplicationID),
		FromTypeID:        deref(dto.FromTypeID),
		ToApplicationID:   deref(dto.ToApplicationID),
		ToTypeID:          deref(dto.ToTypeID),
		ConvertingMap:     trimMap(dto.ConvertingMap),
	}, nil
}

// ToDto builds the wire form of entity. With excludeConvertingMap the map is
// left nil so it is omitted on the wire; otherwise the dto gets its own copy.
func ToDto(entity models.ValueConverting, excludeConvertingMap bool) models.ValueConvertingDto {
	id := entity.ID
	dto := models.ValueConvertingDto{
		ID:                &id,
		DisplayName:       ptr(entity.DisplayName),
		FromApplicationID: ptr(entity.FromApplicationID),
		FromTypeID:        ptr(entity.FromTypeID),
		ToApplicationID:   ptr(entity.ToApplicationID),
		ToTypeID:          ptr(entity.ToTypeID),
	}
	if !excludeConvertingMap {
		dto.ConvertingMap = copyMap(entity.ConvertingMap)
	}
	return dto
}

func trimMap(in map[string]string) map[string]string {
	keys := make([]string, 0, len(in))
	for k := range in {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make(map[string]string, len(in))
	for _, k := range keys {
		out[strings.TrimSpace(k)] = strings.TrimSpace(in[k])
	}
	return out
}

func copyMap(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

func ptr[T any](v T) *T {
	return &v
}
