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

package testutil

// TodoSchema is the introspection result of the schema used across tests:
//
//	type Query { todos: [Todo!]!, todo(id: ID!): Todo, node(id: ID!): Node, search(term: String): [SearchResult], author: Author }
//	type Mutation { toggleTodo(id: ID!): Todo!, addTodo(text: String!): Todo!, removeTodo(id: ID!): Boolean }
//	type Subscription { todoAdded: Todo! }
//	interface Node { id: ID! }
//	type Todo implements Node { id: ID!, text: String!, complete: Boolean, author: Author, tags: [String] }
//	type Author implements Node { id: ID!, name: String }
//	union SearchResult = Todo | Author
const TodoSchema = `{
  "__schema": {
    "queryType": { "name": "Query" },
    "mutationType": { "name": "Mutation" },
    "subscriptionType": { "name": "Subscription" },
    "types": [
      {
        "kind": "OBJECT",
        "name": "Query",
        "fields": [
          { "name": "todos", "args": [], "type": { "kind": "NON_NULL", "name": null, "ofType": { "kind": "LIST", "name": null, "ofType": { "kind": "NON_NULL", "name": null, "ofType": { "kind": "OBJECT", "name": "Todo", "ofType": null } } } } },
          { "name": "todo", "args": [{ "name": "id", "type": { "kind": "NON_NULL", "name": null, "ofType": { "kind": "SCALAR", "name": "ID", "ofType": null } }, "defaultValue": null }], "type": { "kind": "OBJECT", "name": "Todo", "ofType": null } },
          { "name": "node", "args": [{ "name": "id", "type": { "kind": "NON_NULL", "name": null, "ofType": { "kind": "SCALAR", "name": "ID", "ofType": null } }, "defaultValue": null }], "type": { "kind": "INTERFACE", "name": "Node", "ofType": null } },
          { "name": "search", "args": [{ "name": "term", "type": { "kind": "SCALAR", "name": "String", "ofType": null }, "defaultValue": null }], "type": { "kind": "LIST", "name": null, "ofType": { "kind": "UNION", "name": "SearchResult", "ofType": null } } },
          { "name": "author", "args": [], "type": { "kind": "OBJECT", "name": "Author", "ofType": null } }
        ],
        "interfaces": []
      },
      {
        "kind": "OBJECT",
        "name": "Mutation",
        "fields": [
          { "name": "toggleTodo", "args": [{ "name": "id", "type": { "kind": "NON_NULL", "name": null, "ofType": { "kind": "SCALAR", "name": "ID", "ofType": null } }, "defaultValue": null }], "type": { "kind": "NON_NULL", "name": null, "ofType": { "kind": "OBJECT", "name": "Todo", "ofType": null } } },
          { "name": "addTodo", "args": [{ "name": "text", "type": { "kind": "NON_NULL", "name": null, "ofType": { "kind": "SCALAR", "name": "String", "ofType": null } }, "defaultValue": null }], "type": { "kind": "NON_NULL", "name": null, "ofType": { "kind": "OBJECT", "name": "Todo", "ofType": null } } },
          { "name": "removeTodo", "args": [{ "name": "id", "type": { "kind": "NON_NULL", "name": null, "ofType": { "kind": "SCALAR", "name": "ID", "ofType": null } }, "defaultValue": null }], "type": { "kind": "SCALAR", "name": "Boolean", "ofType": null } }
        ],
        "interfaces": []
      },
      {
        "kind": "OBJECT",
        "name": "Subscription",
        "fields": [
          { "name": "todoAdded", "args": [], "type": { "kind": "NON_NULL", "name": null, "ofType": { "kind": "OBJECT", "name": "Todo", "ofType": null } } }
        ],
        "interfaces": []
      },
      {
        "kind": "INTERFACE",
        "name": "Node",
        "fields": [
          { "name": "id", "args": [], "type": { "kind": "NON_NULL", "name": null, "ofType": { "kind": "SCALAR", "name": "ID", "ofType": null } } }
        ],
        "possibleTypes": [{ "kind": "OBJECT", "name": "Todo", "ofType": null }, { "kind": "OBJECT", "name": "Author", "ofType": null }]
      },
      {
        "kind": "OBJECT",
        "name": "Todo",
        "fields": [
          { "name": "id", "args": [], "type": { "kind": "NON_NULL", "name": null, "ofType": { "kind": "SCALAR", "name": "ID", "ofType": null } } },
          { "name": "text", "args": [], "type": { "kind": "NON_NULL", "name": null, "ofType": { "kind": "SCALAR", "name": "String", "ofType": null } } },
          { "name": "complete", "args": [], "type": { "kind": "SCALAR", "name": "Boolean", "ofType": null } },
          { "name": "author", "args": [], "type": { "kind": "OBJECT", "name": "Author", "ofType": null } },
          { "name": "tags", "args": [], "type": { "kind": "LIST", "name": null, "ofType": { "kind": "SCALAR", "name": "String", "ofType": null } } }
        ],
        "interfaces": [{ "kind": "INTERFACE", "name": "Node", "ofType": null }]
      },
      {
        "kind": "OBJECT",
        "name": "Author",
        "fields": [
          { "name": "id", "args": [], "type": { "kind": "NON_NULL", "name": null, "ofType": { "kind": "SCALAR", "name": "ID", "ofType": null } } },
          { "name": "name", "args": [], "type": { "kind": "SCALAR", "name": "String", "ofType": null } }
        ],
        "interfaces": [{ "kind": "INTERFACE", "name": "Node", "ofType": null }]
      },
      {
        "kind": "UNION",
        "name": "SearchResult",
        "possibleTypes": [{ "kind": "OBJECT", "name": "Todo", "ofType": null }, { "kind": "OBJECT", "name": "Author", "ofType": null }]
      },
      { "kind": "SCALAR", "name": "ID" },
      { "kind": "SCALAR", "name": "String" },
      { "kind": "SCALAR", "name": "Boolean" }
    ]
  }
}`
