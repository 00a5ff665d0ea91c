package usecase

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	maxTitleLen       = 100
	maxDescriptionLen = 1000
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError aggregates every violated rule so a client can fix all
// of them in one round trip.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = fmt.Sprintf("%s: %s", f.Field, f.Message)
	}
	return "invalid post payload: " + strings.Join(msgs, "; ")
}

func (e *ValidationError) add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

func validateCreateInput(in CreatePostInput) error {
	ve := &ValidationError{}
	if in.Title == "" {
		ve.add("title", "title is required")
	} else if utf8.RuneCountInString(in.Title) > maxTitleLen {
		ve.add("title", fmt.Sprintf("title must not exceed %d characters", maxTitleLen))
	}
	if in.Description == "" {
		ve.add("description", "description is required")
	} else if utf8.RuneCountInString(in.Description) > maxDescriptionLen {
		ve.add("description", fmt.Sprintf("description must not exceed %d characters", maxDescriptionLen))
	}
	if in.Price < 0 {
		ve.add("price", "price must not be negative")
	}
	if strings.TrimSpace(in.Location) == "" {
		ve.add("location", "location must not be empty")
	}
	if in.Area < 0 {
		ve.add("area", "area must not be negative")
	}
	validateCategoryID(ve, in.CategoryID, true)
	return ve.orNil()
}

// validateUpdateInput only checks fields that are present; absent fields
// keep their stored value and are not validated.
func validateUpdateInput(in UpdatePostInput) error {
	ve := &ValidationError{}
	if in.Title != nil {
		if *in.Title == "" {
			ve.add("title", "title must not be empty")
		} else if utf8.RuneCountInString(*in.Title) > maxTitleLen {
			ve.add("title", fmt.Sprintf("title must not exceed %d characters", maxTitleLen))
		}
	}
	if in.Description != nil {
		if *in.Description == "" {
			ve.add("description", "description must not be empty")
		} else if utf8.RuneCountInString(*in.Description) > maxDescriptionLen {
			ve.add("description", fmt.Sprintf("description must not exceed %d characters", maxDescriptionLen))
		}
	}
	if in.Price != nil && *in.Price < 0 {
		ve.add("price", "price must not be negative")
	}
	if in.Location != nil && strings.TrimSpace(*in.Location) == "" {
		ve.add("location", "location must not be empty")
	}
	if in.Area != nil && *in.Area < 0 {
		ve.add("area", "area must not be negative")
	}
	if in.CategoryID != nil {
		validateCategoryID(ve, *in.CategoryID, true)
	}
	return ve.orNil()
}

func validateCategoryID(ve *ValidationError, id string, required bool) {
	if id == "" {
		if required {
			ve.add("categoryId", "categoryId is required")
		}
		return
	}
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		ve.add("categoryId", "categoryId is not a valid id")
	}
}
