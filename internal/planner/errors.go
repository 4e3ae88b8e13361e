package planner

import (
	"errors"
	"fmt"
)

var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("record not found")
)

// ValidationError rejects form input. Message is user-facing (Russian);
// nothing is committed when it is returned.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Kind names a collection in NotFoundError.
type Kind string

const (
	KindTask  Kind = "task"
	KindEvent Kind = "event"
	KindNote  Kind = "note"
)

var kindMessages = map[Kind]string{
	KindTask:  "Задача не найдена",
	KindEvent: "Событие не найдено",
	KindNote:  "Заметка не найдена",
}

type NotFoundError struct {
	Kind Kind
	ID   int
}

func (e *NotFoundError) Error() string {
	if msg, ok := kindMessages[e.Kind]; ok {
		return fmt.Sprintf("%s (id %d)", msg, e.ID)
	}
	return fmt.Sprintf("%s %d not found", e.Kind, e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

func invalid(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}
