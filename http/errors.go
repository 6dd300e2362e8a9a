package http

import (
	"errors"
	"net/http"

	"payment-allocator/service"
)

// statusForError traduce los errores del motor a códigos HTTP.
func statusForError(err error) int {
	switch {
	case errors.Is(err, service.ErrUnknownAccount):
		return http.StatusNotFound
	case errors.Is(err, service.ErrInsufficientFunds):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadRequest
	}
}
