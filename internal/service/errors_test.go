package service

import (
	"errors"
	"fmt"
	"testing"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
)

func TestWrap_PassesDomainErrorsThrough(t *testing.T) {
	assert.Nil(t, wrap("x", nil, "msg"))
	assert.Same(t, ErrNotOwner, wrap("x", ErrNotOwner, "msg"))

	v := invalid("nickname", "bad nickname")
	assert.Same(t, v, wrap("x", v, "msg"))
}

func TestWrap_AddsContext(t *testing.T) {
	cause := errors.New("connection refused")
	err := wrap("inventory", cause, "购买物品失败", "character_id", int64(3))

	assert.ErrorIs(t, err, cause)
	oopsErr, ok := oops.AsOops(err)
	assert.True(t, ok)
	assert.Equal(t, "inventory", oopsErr.Domain())
	assert.Equal(t, int64(3), oopsErr.Context()["character_id"])
}

func TestValidationError_IsInvalidArgument(t *testing.T) {
	err := fmt.Errorf("outer: %w", invalid("quantity", "quantity 必须在 1-999 之间"))
	assert.ErrorIs(t, err, ErrInvalidArgument)

	var ve *ValidationError
	assert.True(t, errors.As(err, &ve))
	assert.Equal(t, "quantity", ve.Field)
	assert.ErrorIs(t, ErrPriceImmutable, ErrInvalidArgument)
}
