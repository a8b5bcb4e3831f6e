// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package pagination_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/yomira-drive/pkg/pagination"
)

func TestNewMeta(t *testing.T) {
	assert.Equal(t, pagination.Meta{Count: 3, HasMore: true}, pagination.NewMeta(3, true))
	assert.Equal(t, pagination.Meta{Count: 0, HasMore: false}, pagination.NewMeta(0, false))
}

func TestClampLimit(t *testing.T) {
	tests := []struct {
		name string
		in   int
		want int
	}{
		{"zero_uses_default", 0, pagination.DefaultLimit},
		{"negative_uses_default", -5, pagination.DefaultLimit},
		{"in_range", 20, 20},
		{"too_large", 5000, pagination.MaxLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, pagination.ClampLimit(tt.in))
		})
	}
}
