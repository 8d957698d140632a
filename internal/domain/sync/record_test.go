package sync

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestRecord_Validate(t *testing.T) {
	valid := Record{
		ExternalID:   "EXT-1",
		Name:         "Amul Butter 500g",
		MRP:          decimal.NewFromInt(275),
		SellingPrice: decimal.NewFromInt(260),
		Quantity:     12,
	}
	assert.NoError(t, valid.Validate())

	cases := []struct {
		name   string
		mutate func(*Record)
	}{
		{"empty external ID", func(r *Record) { r.ExternalID = "" }},
		{"overlong external ID", func(r *Record) { r.ExternalID = strings.Repeat("x", 101) }},
		{"empty name", func(r *Record) { r.Name = "" }},
		{"negative MRP", func(r *Record) { r.MRP = decimal.NewFromInt(-1) }},
		{"negative selling price", func(r *Record) { r.SellingPrice = decimal.NewFromInt(-1) }},
		{"negative quantity", func(r *Record) { r.Quantity = -1 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := valid
			tc.mutate(&r)
			assert.Error(t, r.Validate())
		})
	}
}
