package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsValidID(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"AB12", true},
		{"b1", true},
		{"", false},
		{"AB 12", false},
		{"AB_12", false},
		{"é1", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidID(tt.in))
		})
	}
}

func TestIsValidISBN(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want bool
	}{
		{"isbn-10 with check x", "123456789X", true},
		{"isbn-10 digits", "1234567890", true},
		{"isbn-13", "9780306406157", true},
		{"lowercase x anywhere", "x23456789x", true},
		{"too short", "12345", false},
		{"fourteen chars", "12345678901234", false},
		{"letters", "12345abcde", false},
		{"hyphenated", "0-306-40615-2", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidISBN(tt.in))
		})
	}
}

func TestIsValidYear(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"1999", true},
		{"1000", true},
		{"2100", true},
		{"0999", false},
		{"999", false},
		{"2101", false},
		{"20a9", false},
		{"+999", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidYear(tt.in))
		})
	}
}

func TestNormalizeCategory(t *testing.T) {
	tests := []struct {
		in   string
		want Category
	}{
		{"fiction", CategoryFiction},
		{"FICTION", CategoryFiction},
		{" Fiction\t", CategoryFiction},
		{"non fiction", CategoryNonFiction},
		{"NONFICTION", CategoryNonFiction},
		{"Non-Fiction", CategoryNonFiction},
		{"non-fiction", CategoryNonFiction},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := NormalizeCategory(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeCategory_Unknown(t *testing.T) {
	for _, in := range []string{"Mystery", "", "fictionx", "non  fiction"} {
		_, err := NormalizeCategory(in)
		assert.ErrorIs(t, err, ErrUnknownCategory, in)
	}
}

func TestEqualFold(t *testing.T) {
	assert.True(t, EqualFold("AB12", "ab12"))
	assert.True(t, EqualFold("", ""))
	assert.False(t, EqualFold("AB12", "AB1"))
	assert.False(t, EqualFold("AB12", "AB13"))
}

func TestTrimBlanks(t *testing.T) {
	assert.Equal(t, "a b", TrimBlanks(" \ta b\t "))
	assert.Equal(t, "\na\n", TrimBlanks("\na\n"))
}

func TestCategoryNames(t *testing.T) {
	assert.Equal(t, "Fiction or Non-fiction", CategoryNames(" or "))
	assert.Equal(t, "Fiction/Non-fiction", CategoryNames("/"))
}
