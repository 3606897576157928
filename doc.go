// Package graphom maps an application object model onto a generic graph
// store. Classes are defined as models, relationships and properties are
// declared once per class tree through fluent builders, and nodes are
// accessed through lazy views that re-query the store on every
// traversal.
//
// Defining a model and its relationships:
//
//	customer := graphom.NewModel("Customer")
//	customer.Relationships(
//		rel.NewOne("company"),
//		rel.NewList("orders").Counter(),
//	)
//
// Binding models to a store and working with nodes:
//
//	g := graphom.New(memstore.New(), memindex.New())
//	c, _ := g.Create(customer)
//	orders, _ := c.List("orders")
//	_ = orders.PushFront(o)
//
// All mutations run synchronously on the caller's goroutine; index
// maintenance completes before the mutating call returns.
package graphom
