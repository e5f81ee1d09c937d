package source

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nhle/mailtasks/internal/model"
)

func TestPaginate(t *testing.T) {
	msgs := []model.Message{{ID: "1"}, {ID: "2"}, {ID: "3"}}

	all := Paginate(msgs, FetchOptions{})
	assert.Len(t, all.Messages, 3)
	assert.False(t, all.HasMore)

	first := Paginate(msgs, FetchOptions{Page: 0, PageSize: 2})
	assert.Equal(t, []model.Message{{ID: "1"}, {ID: "2"}}, first.Messages)
	assert.True(t, first.HasMore)
	assert.Equal(t, 3, first.Total)

	last := Paginate(msgs, FetchOptions{Page: 2, PageSize: 2})
	assert.Equal(t, []model.Message{{ID: "3"}}, last.Messages)
	assert.False(t, last.HasMore)

	beyond := Paginate(msgs, FetchOptions{Page: 5, PageSize: 2})
	assert.Empty(t, beyond.Messages)
	assert.Equal(t, 3, beyond.Total)
}

func TestValidate(t *testing.T) {
	ok := model.Message{ID: "1", Date: "d", From: "a@x"}
	assert.NoError(t, Validate(ok, "r"))

	err := Validate(model.Message{ID: "1", From: "a@x"}, "r")
	var mfErr *model.MissingFieldError
	assert.ErrorAs(t, err, &mfErr)
	assert.Equal(t, "date", mfErr.Field)
}

func TestDecodeError(t *testing.T) {
	inner := &model.MissingFieldError{Record: "f.eml", Field: "id"}
	err := fmt.Errorf("syncing: %w", &DecodeError{SourceType: SourceTypeEmail, Path: "f.eml", Err: inner})

	assert.True(t, IsDecodeError(err))
	assert.True(t, model.IsMissingField(err))
	assert.False(t, IsDecodeError(errors.New("other")))
	assert.Contains(t, err.Error(), "decode error (email) f.eml")
}
