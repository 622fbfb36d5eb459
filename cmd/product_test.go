package cmd

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"

	commonErrors "github.com/Alturino/shop/internal/common/errors"
)

func TestProductCommand(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected error
	}{
		{name: "remove without id", args: []string{"remove"}},
		{name: "remove with invalid id", args: []string{"remove", "not-a-uuid"}, expected: commonErrors.ErrInvalidRequest},
		{name: "insert without flags", args: []string{"insert"}},
		{
			name:     "insert with invalid price",
			args:     []string{"insert", "--title", "Mug", "--price=-3"},
			expected: commonErrors.ErrInvalidRequest,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cmd := newProductCommand()
			cmd.SilenceUsage = true
			cmd.SetOut(io.Discard)
			cmd.SetErr(io.Discard)
			cmd.SetArgs(test.args)

			err := cmd.ExecuteContext(context.Background())
			assert.Error(t, err)
			if test.expected != nil {
				assert.ErrorIs(t, err, test.expected)
			}
		})
	}
}
