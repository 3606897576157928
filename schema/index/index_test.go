package index_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/syssam/graphom/schema/index"
)

// TestField tests index field naming for both rule kinds.
func TestField(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		desc *index.Descriptor
		want string
	}{
		{
			name: "property_rule_uses_property_name",
			desc: index.Property("name").Descriptor(),
			want: "name",
		},
		{
			name: "relationship_rule_namespaced_by_relationship",
			desc: index.Relationship("orders", "total").Descriptor(),
			want: "orders.total",
		},
		{
			name: "explicit_namespace",
			desc: index.Relationship("orders", "total").Namespace("customer").Descriptor(),
			want: "customer.total",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.desc.Field())
		})
	}
}
