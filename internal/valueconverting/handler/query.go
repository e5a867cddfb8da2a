package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"valueconverting/internal/valueconverting/models"
	dErrors "valueconverting/pkg/domain-errors"
)

func parseListQuery(r *http.Request) (models.PageRequest, bool, error) {
	q := r.URL.Query()

	page, err := requiredInt(q.Get("page"), q.Has("page"), "page")
	if err != nil {
		return models.PageRequest{}, false, err
	}
	size, err := requiredInt(q.Get("size"), q.Has("size"), "size")
	if err != nil {
		return models.PageRequest{}, false, err
	}
	if !q.Has("sortProperty") {
		return models.PageRequest{}, false, missingParam("sortProperty", "String")
	}
	if !q.Has("sortDirection") {
		return models.PageRequest{}, false, missingParam("sortDirection", "Direction")
	}
	direction, err := models.ParseDirection(q.Get("sortDirection"))
	if err != nil {
		return models.PageRequest{}, false, err
	}

	exclude := false
	if raw := q.Get("excludeConvertingMap"); raw != "" {
		exclude, err = strconv.ParseBool(raw)
		if err != nil {
			return models.PageRequest{}, false, dErrors.New(dErrors.CodeBadRequest,
				fmt.Sprintf("Failed to convert value '%s' to required type 'Boolean'", raw))
		}
	}

	req, err := models.NewPageRequest(page, size, q.Get("sortProperty"), direction)
	if err != nil {
		return models.PageRequest{}, false, err
	}
	return req, exclude, nil
}

func requiredInt(raw string, present bool, name string) (int, error) {
	if !present {
		return 0, missingParam(name, "int")
	}
	v, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		return 0, dErrors.New(dErrors.CodeBadRequest,
			fmt.Sprintf("Failed to convert value '%s' to required type 'int' for parameter '%s'", raw, name))
	}
	return int(v), nil
}

func missingParam(name, typ string) error {
	return dErrors.New(dErrors.CodeBadRequest,
		fmt.Sprintf("Required request parameter '%s' for method parameter type %s is not present", name, typ))
}
