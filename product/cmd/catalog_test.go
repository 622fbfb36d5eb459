package cmd

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	commonErrors "github.com/Alturino/shop/internal/common/errors"
	"github.com/Alturino/shop/product/pkg/request"
)

func TestRunInsertProductRejectsInvalidProduct(t *testing.T) {
	tests := []struct {
		name  string
		param request.InsertProduct
	}{
		{name: "missing title", param: request.InsertProduct{Price: "10"}},
		{name: "negative price", param: request.InsertProduct{Title: "A", Price: "-1"}},
		{name: "price with three decimals", param: request.InsertProduct{Title: "A", Price: "1.005"}},
		{name: "invalid image", param: request.InsertProduct{Title: "A", Price: "1", Image: "not a url"}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := RunInsertProduct(context.Background(), test.param)
			assert.ErrorIs(t, err, commonErrors.ErrInvalidRequest)
		})
	}
}

func TestRunRemoveProductRejectsInvalidId(t *testing.T) {
	_, err := RunRemoveProduct(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, commonErrors.ErrInvalidRequest)
}
