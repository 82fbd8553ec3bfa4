package httperr

import (
	"errors"
	"fmt"

	"github.com/VitalisClinicas/clinic-scheduler/internal/models"
)

// ===============================
// Erros de negócio do motor
// ===============================

// ValidationError: campo obrigatório ausente na criação
type ValidationError struct {
	Field string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation: missing required field %q", e.Field)
}

func ErrValidation(field string) error {
	return ValidationError{Field: field}
}

func IsValidation(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve)
}

// NotFoundError: id referenciado não existe no momento da operação
type NotFoundError struct {
	Entity string
	ID     uint
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

func ErrNotFound(entity string, id uint) error {
	return NotFoundError{Entity: entity, ID: id}
}

func IsNotFound(err error) bool {
	var nf NotFoundError
	return errors.As(err, &nf)
}

// ConflictError: slot ocupado. Recuperável: o chamador confirma o
// encaixe e repete a operação com a flag de override.
type ConflictError struct {
	Conflicting []models.Appointment
}

func (e ConflictError) Error() string {
	return fmt.Sprintf("slot occupied by %d appointment(s)", len(e.Conflicting))
}

func ErrConflict(conflicting []models.Appointment) error {
	return ConflictError{Conflicting: conflicting}
}

func AsConflict(err error) (ConflictError, bool) {
	var ce ConflictError
	ok := errors.As(err, &ce)
	return ce, ok
}

// ConsistencyError: o ledger não está no estado que a operação esperava
type ConsistencyError struct {
	Reason string
}

func (e ConsistencyError) Error() string {
	return "consistency: " + e.Reason
}

func ErrConsistency(reason string) error {
	return ConsistencyError{Reason: reason}
}

func IsConsistency(err error) bool {
	var ce ConsistencyError
	return errors.As(err, &ce)
}

// BusinessError genérico por código (estado inválido de transição etc.)
type BusinessError struct {
	Code string
}

func (e BusinessError) Error() string {
	return e.Code
}

func ErrBusiness(code string) error {
	return BusinessError{Code: code}
}

func IsBusiness(err error, code string) bool {
	var be BusinessError
	if errors.As(err, &be) {
		return be.Code == code
	}
	return false
}
