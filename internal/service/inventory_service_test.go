package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSellRefund(t *testing.T) {
	cases := []struct {
		price, quantity, rate, want int64
	}{
		{100, 1, 60, 60},
		{100, 3, 60, 180},
		{15, 1, 60, 9},
		{7, 1, 60, 4},     // 4.2 向下取整
		{333, 3, 60, 599}, // 599.4
		{1, 1, 60, 0},
		{100, 2, 0, 0},
		{100, 2, 100, 200},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, SellRefund(tc.price, tc.quantity, tc.rate), "%+v", tc)
	}
}

func TestPurchaseThenSellBalance(t *testing.T) {
	const price, n, before = int64(333), int64(3), int64(10000)
	after := before - price*n + SellRefund(price, n, 60)
	assert.Equal(t, int64(10000-999+599), after)
}

func TestNormalizeQuantity(t *testing.T) {
	q, err := NormalizeQuantity(0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), q)

	q, err = NormalizeQuantity(999)
	require.NoError(t, err)
	assert.Equal(t, int64(999), q)

	for _, bad := range []int64{-1, 1000} {
		_, err := NormalizeQuantity(bad)
		assert.ErrorIs(t, err, ErrInvalidArgument)
	}
}

func TestValidateNickname(t *testing.T) {
	assert.NoError(t, validateNickname("hero"))
	assert.NoError(t, validateNickname("용사용사용사용사용사용사용사용사용사용사"))
	assert.ErrorIs(t, validateNickname(""), ErrInvalidArgument)
	assert.ErrorIs(t, validateNickname("abcdefghijklmnopqrstu"), ErrInvalidArgument)
}

func TestNormalizePage(t *testing.T) {
	p, s := normalizePage(0, 0)
	assert.Equal(t, 1, p)
	assert.Equal(t, defaultPageSize, s)

	_, s = normalizePage(2, 1000)
	assert.Equal(t, maxPageSize, s)
}
