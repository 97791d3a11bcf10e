package graphql

import (
	"net/http"

	"github.com/graph-gophers/graphql-go/relay"
)

// Handler builds the schema and returns the HTTP handler serving POST /graphql.
func Handler(root *Resolver) (http.Handler, error) {
	schema, err := NewSchema(root)
	if err != nil {
		return nil, err
	}
	return &relay.Handler{Schema: schema}, nil
}
