/**
 * Copyright (c) 2019, The Artemis Authors.
 *
 * Permission to use, copy, modify, and/or distribute this software for any
 * purpose with or without fee is hereby granted, provided that the above
 * copyright notice and this permission notice appear in all copies.
 *
 * THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES
 * WITH REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF
 * MERCHANTABILITY AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR
 * ANY SPECIAL, DIRECT, INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES
 * WHATSOEVER RESULTING FROM LOSS OF USE, DATA OR PROFITS, WHETHER IN AN
 * ACTION OF CONTRACT, NEGLIGENCE OR OTHER TORTIOUS ACTION, ARISING OUT OF
 * OR IN CONNECTION WITH THE USE OR PERFORMANCE OF THIS SOFTWARE.
 */

package cache

import (
	"github.com/botobag/graphcache/graphql/ast"
)

// BeginOptimistic writes the guessed result of a mutation into an optimistic layer named after the
// operation key, then runs the mutation's updaters in that layer. The guess is computed by the
// optimistic resolvers registered for the mutation's root fields; fields without one are left out.
// When no root field has an optimistic resolver nothing is written and the outcome is empty.
func (c *Cache) BeginOptimistic(op Operation) (*Outcome, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	doc := op.Request.Document
	if doc.OperationType() != ast.OperationTypeMutation || len(c.config.Optimistic) == 0 {
		return &Outcome{}, nil
	}

	layerID := op.key()
	o := c.newOperation(opBeginOptimistic, doc, op.Request.Variables)
	o.layerID = layerID
	o.optimistic = true

	c.store.CreateOptimisticLayer(layerID)
	data, err := o.optimisticData(doc)
	if err != nil {
		c.store.DiscardLayer(layerID)
		return nil, err
	}
	if len(data) == 0 {
		c.store.DiscardLayer(layerID)
		return &Outcome{}, nil
	}

	outcome, err := c.processResult(o, op, data)
	if err != nil {
		c.store.DiscardLayer(layerID)
		return nil, err
	}
	return outcome, nil
}

// optimisticData calls the optimistic resolvers for the root fields of a mutation.
func (o *operation) optimisticData(doc *Document) (map[string]interface{}, error) {
	typename := o.cache.rootTypenames[rootKeyOf(doc.OperationType())]
	data := map[string]interface{}{}

	matchAll := func(string, ast.SelectionSet) bool { return true }
	err := o.eachField(doc.Operation().SelectionSet, matchAll, false, func(field *ast.Field, optional bool) error {
		fieldName := field.Name.Value
		resolver := o.cache.config.Optimistic[fieldName]
		if resolver == nil {
			return nil
		}

		args := ast.ArgumentValues(field.Arguments, o.variables)
		info := o.info(typename, rootKeyOf(doc.OperationType()), o.KeyOfField(fieldName, args), fieldName)
		value, err := resolver(args, o, info)
		if err != nil {
			return o.callbackError(err, "Optimistic resolver", typename, fieldName)
		}
		data[field.ResponseKey()] = value
		return nil
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

// ConfirmOptimistic replaces the optimistic layer of the operation with the real result. Discarding
// the layer and writing the result happen under one lock so readers never observe the data from
// before the mutation in between. Dependents include the queries that read the optimistic writes.
func (c *Cache) ConfirmOptimistic(op Operation, data map[string]interface{}) (*Outcome, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	layerID := op.key()
	layerDeps := c.store.LayerDependencies(layerID)
	c.store.DiscardLayer(layerID)

	o := c.newOperation(opConfirmOptimistic, op.Request.Document, op.Request.Variables)
	outcome, err := c.processResult(o, op, data)
	if err != nil {
		return nil, err
	}
	outcome.Dependents = mergeSorted(outcome.Dependents, c.dependents(layerDeps, op.Request.Key))
	return outcome, nil
}

// RollbackOptimistic discards the optimistic layer of a failed or aborted mutation and returns the
// queries that read the optimistic writes. Rolling back an operation without a layer does nothing.
func (c *Cache) RollbackOptimistic(op Operation) []string {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	layerID := op.key()
	if !c.store.HasLayer(layerID) {
		return nil
	}
	layerDeps := c.store.LayerDependencies(layerID)
	c.store.DiscardLayer(layerID)
	return c.dependents(layerDeps, op.Request.Key)
}

// HasOptimisticLayer returns true while the operation has an optimistic layer.
func (c *Cache) HasOptimisticLayer(op Operation) bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.store.HasLayer(op.key())
}

// mergeSorted unions two sorted lists of keys.
func mergeSorted(a []string, b []string) []string {
	result := make([]string, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) || j < len(b) {
		switch {
		case j == len(b) || (i < len(a) && a[i] < b[j]):
			result = append(result, a[i])
			i++
		case i == len(a) || b[j] < a[i]:
			result = append(result, b[j])
			j++
		default:
			result = append(result, a[i])
			i++
			j++
		}
	}
	if len(result) == 0 {
		return nil
	}
	return result
}
