package graphom_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/graphom"
	"github.com/syssam/graphom/schema/prop"
	"github.com/syssam/graphom/schema/rel"
	"github.com/syssam/graphom/search/memindex"
	"github.com/syssam/graphom/store/memstore"
)

// newTestGraph returns a graph over fresh in-memory backends.
func newTestGraph() *graphom.Graph {
	return graphom.New(memstore.New(), memindex.New())
}

// TestNewModel tests model definition and catalog lookups.
func TestNewModel(t *testing.T) {
	m := graphom.NewModel("InvoiceLine")

	assert.Equal(t, "InvoiceLine", m.Name())
	assert.Equal(t, "invoice_line", m.Label())
	assert.Nil(t, m.Parent())
	assert.Equal(t, m, m.Root())

	t.Run("lookup_by_name", func(t *testing.T) {
		got, err := graphom.ModelByName("InvoiceLine")
		require.NoError(t, err)
		assert.Equal(t, m, got)
	})

	t.Run("lookup_by_label", func(t *testing.T) {
		got, err := graphom.ModelByLabel("invoice_line")
		require.NoError(t, err)
		assert.Equal(t, m, got)
	})

	t.Run("unknown_name", func(t *testing.T) {
		_, err := graphom.ModelByName("NoSuchModel")
		assert.True(t, graphom.IsUnknownModel(err))
	})

	t.Run("duplicate_name_panics", func(t *testing.T) {
		assert.Panics(t, func() { graphom.NewModel("InvoiceLine") })
	})
}

// TestDerive tests subclass trees and the shared registry.
func TestDerive(t *testing.T) {
	vehicle := graphom.NewModel("Vehicle")
	car := vehicle.Derive("Car")
	sportsCar := car.Derive("SportsCar")
	truck := vehicle.Derive("Truck")

	assert.Equal(t, vehicle, car.Root())
	assert.Equal(t, vehicle, sportsCar.Root())
	assert.Equal(t, car, sportsCar.Parent())

	t.Run("is_a_walks_ancestors", func(t *testing.T) {
		assert.True(t, sportsCar.IsA(sportsCar))
		assert.True(t, sportsCar.IsA(car))
		assert.True(t, sportsCar.IsA(vehicle))
		assert.False(t, car.IsA(sportsCar))
		assert.False(t, truck.IsA(car))
	})

	t.Run("declarations_are_tree_wide", func(t *testing.T) {
		require.NoError(t, car.Relationships(rel.NewOne("garage").To("Truck")))

		// Visible from anywhere in the tree.
		_, err := vehicle.Registry().Relationship("garage")
		assert.NoError(t, err)
		_, err = sportsCar.Registry().Relationship("garage")
		assert.NoError(t, err)
	})

	t.Run("duplicate_relationship_rejected", func(t *testing.T) {
		err := truck.Relationships(rel.NewOne("garage").To("Truck"))
		assert.True(t, graphom.IsDuplicateRelationship(err))
	})
}

// TestRegistryProperties tests tree-wide property declarations.
func TestRegistryProperties(t *testing.T) {
	m := graphom.NewModel("Ledger")
	require.NoError(t, m.Properties(
		prop.String("title"),
		prop.Any("payload").Marshaled(),
	))

	p, ok := m.Registry().Property("payload")
	require.True(t, ok)
	assert.True(t, p.Marshaled)
	assert.Equal(t, prop.TypeAny, p.Type)

	_, ok = m.Registry().Property("undeclared")
	assert.False(t, ok)
}

// TestOnCreate tests the custom initializer and constructor arguments.
func TestOnCreate(t *testing.T) {
	widget := graphom.NewModel("Widget")
	widget.OnCreate(func(n *graphom.Node, args ...any) error {
		if len(args) > 0 {
			return n.Set("size", args[0])
		}
		return nil
	})
	gadget := widget.Derive("Gadget")

	g := newTestGraph()
	n, err := g.Create(widget, int64(7))
	require.NoError(t, err)

	v, ok, err := n.Get("size")
	require.NoError(t, err)
	require.True(t, ok)
	assert.EqualValues(t, 7, v)

	t.Run("initializer_inherited_by_subclass", func(t *testing.T) {
		n, err := g.Create(gadget, int64(9))
		require.NoError(t, err)
		v, ok, err := n.Get("size")
		require.NoError(t, err)
		require.True(t, ok)
		assert.EqualValues(t, 9, v)
	})
}
