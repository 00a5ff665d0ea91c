package usecase

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateCreateInput(t *testing.T) {
	t.Run("ValidInputPasses", func(t *testing.T) {
		err := validateCreateInput(validCreateInput())
		assert.NoError(t, err)
	})

	t.Run("AllViolationsReportedAtOnce", func(t *testing.T) {
		input := CreatePostInput{
			Title:       strings.Repeat("x", maxTitleLen+1),
			Description: strings.Repeat("y", maxDescriptionLen+1),
			Price:       -1,
			Location:    "   ",
			Area:        -10,
			CategoryID:  "",
		}
		err := validateCreateInput(input)

		var ve *ValidationError
		assert.ErrorAs(t, err, &ve)
		assert.Len(t, ve.Fields, 6)
	})

	t.Run("CategoryIDMustBeObjectID", func(t *testing.T) {
		input := validCreateInput()
		input.CategoryID = "definitely-not-hex"
		err := validateCreateInput(input)

		var ve *ValidationError
		assert.ErrorAs(t, err, &ve)
		assert.Equal(t, "categoryId", ve.Fields[0].Field)
	})

	t.Run("BoundsCountCharactersNotBytes", func(t *testing.T) {
		input := validCreateInput()
		// 60 characters but 120 bytes; well inside the 100-character bound
		input.Title = strings.Repeat("ă", 60)
		input.Description = strings.Repeat("ê", maxDescriptionLen)
		assert.NoError(t, validateCreateInput(input))

		input.Title = strings.Repeat("ă", maxTitleLen+1)
		err := validateCreateInput(input)
		var ve *ValidationError
		assert.ErrorAs(t, err, &ve)
		assert.Equal(t, "title", ve.Fields[0].Field)
	})

	t.Run("ZeroPriceAndAreaAreValid", func(t *testing.T) {
		input := validCreateInput()
		input.Price = 0
		input.Area = 0
		assert.NoError(t, validateCreateInput(input))
	})
}

func TestValidateUpdateInput(t *testing.T) {
	strPtr := func(s string) *string { return &s }
	floatPtr := func(f float64) *float64 { return &f }

	t.Run("EmptyInputIsValid", func(t *testing.T) {
		assert.NoError(t, validateUpdateInput(UpdatePostInput{}))
	})

	t.Run("OnlyPresentFieldsAreValidated", func(t *testing.T) {
		err := validateUpdateInput(UpdatePostInput{Price: floatPtr(200)})
		assert.NoError(t, err)
	})

	t.Run("PresentFieldsMustBeValid", func(t *testing.T) {
		err := validateUpdateInput(UpdatePostInput{
			Title:      strPtr(""),
			Price:      floatPtr(-3),
			CategoryID: strPtr("bad-id"),
		})

		var ve *ValidationError
		assert.ErrorAs(t, err, &ve)
		assert.Len(t, ve.Fields, 3)
	})

	t.Run("TitleOverLimitRejected", func(t *testing.T) {
		err := validateUpdateInput(UpdatePostInput{Title: strPtr(strings.Repeat("a", maxTitleLen+1))})

		var ve *ValidationError
		assert.ErrorAs(t, err, &ve)
		assert.Equal(t, "title", ve.Fields[0].Field)
	})

	t.Run("MultibyteTitleInsideLimitAccepted", func(t *testing.T) {
		err := validateUpdateInput(UpdatePostInput{Title: strPtr(strings.Repeat("ă", maxTitleLen))})
		assert.NoError(t, err)
	})
}
