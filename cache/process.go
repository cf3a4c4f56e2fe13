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
	"github.com/botobag/graphcache/cache/deps"
	"github.com/botobag/graphcache/graphql"
	"github.com/botobag/graphcache/graphql/ast"
)

// Outcome reports the effects of processing an operation result.
type Outcome struct {
	// For queries, the data read back from the cache after the write.
	Data     map[string]interface{}
	Complete bool

	// Keys of queries whose data may have changed, sorted. The query that produced the result is
	// never included.
	Dependents []string

	// Typenames of every object in the result, sorted
	AffectedTypenames []string

	// Keys of the entities written, sorted
	Touched []string

	Warnings graphql.Errors
}

// ReadQuery reads a query from the cache and records what it read under the request key.
func (c *Cache) ReadQuery(req Request) (*Result, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.checkDocument(req.Document)
	o := c.newOperation(opReadQuery, req.Document, req.Variables)
	result, err := o.readOperation(req.Document)
	if err != nil {
		return nil, err
	}
	c.store.SetDependencies(req.Key, result.Dependencies)
	return result, nil
}

// WriteQuery writes data for a request into the base layer. Unlike ProcessResult it runs no
// updaters.
func (c *Cache) WriteQuery(req Request, data map[string]interface{}) (*WriteResult, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.checkDocument(req.Document)
	o := c.newOperation(opWriteQuery, req.Document, req.Variables)
	if err := o.writeOperation(req.Document, data); err != nil {
		return nil, err
	}
	return o.writeResult(), nil
}

// ReadFragment reads a fragment of an entity.
func (c *Cache) ReadFragment(doc *Document, entity interface{}, variables map[string]interface{}, fragmentName string) (*Result, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	return c.newOperation(opReadFragment, doc, variables).readFragment(doc, entity, fragmentName)
}

// WriteFragment writes data through a fragment into the base layer and returns the queries that
// depend on the written fields.
func (c *Cache) WriteFragment(doc *Document, data map[string]interface{}, variables map[string]interface{}, fragmentName string) ([]string, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	o := c.newOperation(opWriteFragment, doc, variables)
	if err := o.writeFragment(doc, data, fragmentName); err != nil {
		return nil, err
	}
	return c.dependents(o.state.written, ""), nil
}

// UpdateQuery reads the query, transforms the data with fn and writes the result back as one step.
// It returns the queries that depend on the written fields.
func (c *Cache) UpdateQuery(req Request, fn func(data map[string]interface{}) (map[string]interface{}, error)) ([]string, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	o := c.newOperation(opUpdateQuery, req.Document, req.Variables)
	if err := o.UpdateQuery(req, fn); err != nil {
		return nil, err
	}
	return c.dependents(o.state.written, ""), nil
}

// Invalidate removes a field of an entity (or the whole entity when fieldName is empty) from the
// base layer and returns the queries that read it.
func (c *Cache) Invalidate(entity interface{}, fieldName string, args map[string]interface{}) []string {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	o := c.newOperation(opInvalidate, nil, nil)
	o.Invalidate(entity, fieldName, args)
	return c.dependents(o.state.written, "")
}

// InspectFields lists the fields stored on an entity.
func (c *Cache) InspectFields(entity interface{}) []FieldInfo {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	return c.newOperation(opReadQuery, nil, nil).InspectFields(entity)
}

// Resolve reads one field of an entity.
func (c *Cache) Resolve(entity interface{}, fieldName string, args map[string]interface{}) (interface{}, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	return c.newOperation(opReadQuery, nil, nil).Resolve(entity, fieldName, args)
}

// Link writes a link into the base layer and returns the queries that read the field.
func (c *Cache) Link(entity interface{}, fieldName string, args map[string]interface{}, link interface{}) ([]string, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	o := c.newOperation(opLink, nil, nil)
	if err := o.Link(entity, fieldName, args, link); err != nil {
		return nil, err
	}
	return c.dependents(o.state.written, ""), nil
}

// KeyOfEntity computes the key of an entity given as an object with __typename or as a key.
func (c *Cache) KeyOfEntity(entity interface{}) (string, bool) {
	return c.newOperation(opReadQuery, nil, nil).KeyOfEntity(entity)
}

// KeyOfField computes a field key.
func (c *Cache) KeyOfField(fieldName string, args map[string]interface{}) string {
	return fieldKeyOf(fieldName, args)
}

// dependents returns the queries affected by a write, except the one named by exclude.
func (c *Cache) dependents(written *deps.Set, exclude string) []string {
	all := c.store.Dependents(written, c.config.ExactInvalidation)
	result := all[:0]
	for _, queryKey := range all {
		if queryKey != exclude {
			result = append(result, queryKey)
		}
	}
	if len(result) == 0 {
		return nil
	}
	return result
}

// ProcessResult writes the result of an operation and reports the queries it affects.
//
// For a mutation or a subscription event, the updaters registered for its root fields run in
// document order after the write, each observing the changes of the previous one. Queries that read
// an entity of a type present in the result are reported along with queries that read a written
// field. For a query, the result is read back and its dependencies are recorded.
func (c *Cache) ProcessResult(op Operation, data map[string]interface{}) (*Outcome, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	o := c.newOperation(opProcessResult, op.Request.Document, op.Request.Variables)
	return c.processResult(o, op, data)
}

func (c *Cache) processResult(o *operation, op Operation, data map[string]interface{}) (*Outcome, error) {
	doc := op.Request.Document
	c.checkDocument(doc)

	if err := o.writeOperation(doc, data); err != nil {
		return nil, err
	}

	operationType := doc.OperationType()
	if operationType != ast.OperationTypeQuery {
		if err := o.runUpdaters(doc, data); err != nil {
			return nil, err
		}
	}

	written := o.state.written.Clone()
	if operationType != ast.OperationTypeQuery {
		for typename := range o.state.typenames {
			written.Add(deps.Typename(typename))
		}
	}

	outcome := &Outcome{
		Dependents:        c.dependents(written, op.Request.Key),
		AffectedTypenames: sortedKeys(o.state.typenames),
		Touched:           sortedKeys(o.state.touched),
	}

	if operationType == ast.OperationTypeQuery {
		reader := c.newOperation(o.op, doc, op.Request.Variables)
		reader.state = o.state
		result, err := reader.readOperation(doc)
		if err != nil {
			return nil, err
		}
		c.store.SetDependencies(op.Request.Key, result.Dependencies)
		outcome.Data = result.Data
		outcome.Complete = result.Complete
	} else {
		outcome.Data = data
		outcome.Complete = true
	}

	outcome.Warnings = o.state.warnings
	return outcome, nil
}

// runUpdaters calls the updaters registered for the root fields of a mutation or subscription.
func (o *operation) runUpdaters(doc *Document, data map[string]interface{}) error {
	rootKey := rootKeyOf(doc.OperationType())
	typename := o.cache.rootTypenames[rootKey]
	updaters := o.cache.config.Updaters[typename]
	if len(updaters) == 0 {
		return nil
	}

	return o.eachField(doc.Operation().SelectionSet, o.dataMatcher(typename, data), false, func(field *ast.Field, optional bool) error {
		fieldName := field.Name.Value
		updater := updaters[fieldName]
		if updater == nil {
			return nil
		}

		args := ast.ArgumentValues(field.Arguments, o.variables)
		info := o.info(typename, rootKey, o.KeyOfField(fieldName, args), fieldName)
		if err := updater(data, args, o, info); err != nil {
			return o.callbackError(err, "Updater", typename, fieldName)
		}
		return nil
	})
}
