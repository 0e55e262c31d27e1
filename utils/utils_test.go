package utils

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCreatePagination(t *testing.T) {
	p := CreatePagination(45, 2, 10)
	assert.Equal(t, 45, p.TotalItems)
	assert.Equal(t, 2, p.CurrentPage)
	assert.Equal(t, 10, p.PageSize)
	assert.Equal(t, 5, p.TotalPages)
}

func TestCreatePaginationDefaults(t *testing.T) {
	p := CreatePagination(5, 0, 0)
	assert.Equal(t, 1, p.CurrentPage)
	assert.Equal(t, 10, p.PageSize)
	assert.Equal(t, 1, p.TotalPages)
}

func TestNullStringToStringPtr(t *testing.T) {
	assert.Nil(t, NullStringToStringPtr(sql.NullString{}))

	got := NullStringToStringPtr(sql.NullString{String: "B-102", Valid: true})
	if assert.NotNil(t, got) {
		assert.Equal(t, "B-102", *got)
	}
}
