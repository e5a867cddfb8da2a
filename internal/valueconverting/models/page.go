package models

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	dErrors "valueconverting/pkg/domain-errors"
)

// Direction is a sort direction.
type Direction string

const (
	Asc  Direction = "ASC"
	Desc Direction = "DESC"
)

// ParseDirection accepts ASC/DESC in any case.
func ParseDirection(raw string) (Direction, error) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case string(Asc):
		return Asc, nil
	case string(Desc):
		return Desc, nil
	default:
		return "", dErrors.New(dErrors.CodeBadRequest,
			fmt.Sprintf("Invalid value '%s' for orders given; Has to be either 'desc' or 'asc' (case insensitive)", raw))
	}
}

// SortProperty names a sortable ValueConverting attribute in its wire spelling.
type SortProperty string

const (
	SortByID                SortProperty = "id"
	SortByDisplayName       SortProperty = "displayName"
	SortByFromApplicationID SortProperty = "fromApplicationId"
	SortByFromTypeID        SortProperty = "fromTypeId"
	SortByToApplicationID   SortProperty = "toApplicationId"
	SortByToTypeID          SortProperty = "toTypeId"
)

var sortProperties = map[SortProperty]struct{}{
	SortByID:                {},
	SortByDisplayName:       {},
	SortByFromApplicationID: {},
	SortByFromTypeID:        {},
	SortByToApplicationID:   {},
	SortByToTypeID:          {},
}

// PageRequest is an explicit (page, size, sort) request value.
type PageRequest struct {
	Page      int
	Size      int
	Property  SortProperty
	Direction Direction
}

// NewPageRequest validates the paging primitive. An unknown sort property is
// a validation failure; an out-of-range index or size is a bad request.
func NewPageRequest(page, size int, property string, direction Direction) (PageRequest, error) {
	if page < 0 {
		return PageRequest{}, dErrors.New(dErrors.CodeBadRequest, "Page index must not be less than zero")
	}
	if size < 1 {
		return PageRequest{}, dErrors.New(dErrors.CodeBadRequest, "Page size must not be less than one")
	}
	prop := SortProperty(property)
	if _, ok := sortProperties[prop]; !ok {
		return PageRequest{}, dErrors.New(dErrors.CodeValidation,
			fmt.Sprintf("No property '%s' found for type 'ValueConverting'", property))
	}
	if direction != Asc && direction != Desc {
		direction = Asc
	}
	return PageRequest{Page: page, Size: size, Property: prop, Direction: direction}, nil
}

// Offset is the number of rows skipped before this page. It saturates at
// math.MaxInt64 instead of wrapping.
func (p PageRequest) Offset() int64 {
	page, size := int64(p.Page), int64(p.Size)
	if page <= 0 || size <= 0 {
		return 0
	}
	if page > math.MaxInt64/size {
		return math.MaxInt64
	}
	return page * size
}

// Page is one page of results plus the size of the whole (filtered) set.
type Page[T any] struct {
	Content       []T
	TotalElements int64
	Number        int
	Size          int
}

// NewPage assembles a page for req.
func NewPage[T any](content []T, total int64, req PageRequest) Page[T] {
	if content == nil {
		content = []T{}
	}
	return Page[T]{Content: content, TotalElements: total, Number: req.Page, Size: req.Size}
}

// TotalPages is ceil(total/size).
func (p Page[T]) TotalPages() int {
	if p.Size <= 0 {
		return 1
	}
	size := int64(p.Size)
	pages := p.TotalElements / size
	if p.TotalElements%size != 0 {
		pages++
	}
	return int(pages)
}

// MapPage converts the content of a page, keeping its metadata.
func MapPage[T, U any](p Page[T], fn func(T) U) Page[U] {
	out := make([]U, len(p.Content))
	for i, item := range p.Content {
		out[i] = fn(item)
	}
	return Page[U]{Content: out, TotalElements: p.TotalElements, Number: p.Number, Size: p.Size}
}

type pageJSON[T any] struct {
	Content          []T   `json:"content"`
	TotalElements    int64 `json:"totalElements"`
	TotalPages       int   `json:"totalPages"`
	Size             int   `json:"size"`
	Number           int   `json:"number"`
	NumberOfElements int   `json:"numberOfElements"`
	First            bool  `json:"first"`
	Last             bool  `json:"last"`
	Empty            bool  `json:"empty"`
}

// MarshalJSON renders the page with derived metadata.
func (p Page[T]) MarshalJSON() ([]byte, error) {
	content := p.Content
	if content == nil {
		content = []T{}
	}
	totalPages := p.TotalPages()
	return json.Marshal(pageJSON[T]{
		Content:          content,
		TotalElements:    p.TotalElements,
		TotalPages:       totalPages,
		Size:             p.Size,
		Number:           p.Number,
		NumberOfElements: len(content),
		First:            p.Number == 0,
		Last:             p.Number >= totalPages-1,
		Empty:            len(content) == 0,
	})
}
