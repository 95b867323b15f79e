package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPagination(t *testing.T) {
	cases := []struct {
		page, limit, total int
		wantPages          int
	}{
		{1, 20, 0, 0},
		{1, 20, 1, 1},
		{1, 20, 20, 1},
		{1, 20, 21, 2},
		{3, 10, 95, 10},
		{1, 0, 50, 0},
	}

	for _, tc := range cases {
		p := NewPagination(tc.page, tc.limit, tc.total)
		assert.Equal(t, tc.wantPages, p.TotalPages, "total=%d limit=%d", tc.total, tc.limit)
		assert.Equal(t, tc.total, p.Total)
	}
}
