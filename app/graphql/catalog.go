// Package graphql exposes a read-only catalogue view over GraphQL.
//
// Mutations stay on the REST surface; this endpoint exists for clients
// that want to shape their own product and order reads.
package graphql

import (
	"encoding/json"
	"net/http"

	"github.com/graphql-go/graphql"

	"github.com/metrolabs/metro/app/repositories"
	"github.com/metrolabs/metro/pkg/logger"
)

var productType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Product",
	Fields: graphql.Fields{
		"id":          &graphql.Field{Type: graphql.Int},
		"productName": &graphql.Field{Type: graphql.String},
		"description": &graphql.Field{Type: graphql.String},
		"price":       &graphql.Field{Type: graphql.Float},
		"imageUrl":    &graphql.Field{Type: graphql.String},
		"category":    &graphql.Field{Type: graphql.String},
		"gender":      &graphql.Field{Type: graphql.String},
		"size":        &graphql.Field{Type: graphql.String},
		"stock":       &graphql.Field{Type: graphql.Int},
	},
})

var orderItemType = graphql.NewObject(graphql.ObjectConfig{
	Name: "OrderItem",
	Fields: graphql.Fields{
		"productId":   &graphql.Field{Type: graphql.Int},
		"productName": &graphql.Field{Type: graphql.String},
		"price":       &graphql.Field{Type: graphql.Float},
		"quantity":    &graphql.Field{Type: graphql.Int},
	},
})

var orderType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Order",
	Fields: graphql.Fields{
		"id":         &graphql.Field{Type: graphql.Int},
		"userId":     &graphql.Field{Type: graphql.Int},
		"status":     &graphql.Field{Type: graphql.String},
		"orderTotal": &graphql.Field{Type: graphql.Float},
		"items":      &graphql.Field{Type: graphql.NewList(orderItemType)},
	},
})

// NewSchema builds the catalogue schema over the given repositories.
func NewSchema(products repositories.ProductRepository, orders repositories.OrderRepository) (graphql.Schema, error) {
	rootQuery := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"products": &graphql.Field{
				Type: graphql.NewList(productType),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return products.All(p.Context)
				},
			},
			"product": &graphql.Field{
				Type: productType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id, _ := p.Args["id"].(int)
					product, err := products.FindByID(p.Context, id)
					if err == repositories.ErrNotFound {
						return nil, nil
					}
					if err != nil {
						return nil, err
					}
					return product, nil
				},
			},
			"ordersByUser": &graphql.Field{
				Type: graphql.NewList(orderType),
				Args: graphql.FieldConfigArgument{
					"userId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					userID, _ := p.Args["userId"].(int)
					return orders.FindByUser(p.Context, userID)
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{Query: rootQuery})
}

// Handler serves POST /graphql with the standard {query, variables}
// request shape.
func Handler(schema graphql.Schema) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Query     string                 `json:"query"`
			Variables map[string]interface{} `json:"variables"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  body.Query,
			VariableValues: body.Variables,
			Context:        r.Context(),
		})
		if len(result.Errors) > 0 {
			logger.WithCtx(r.Context()).Warn("graphql query failed", "errors", result.Errors)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(result) //nolint:errcheck
	})
}
