package http

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/hotspotmap/internal/core/domain"
)

// buildSchema creates the GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	datasetType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Dataset",
		Fields: graphql.Fields{
			"type": &graphql.Field{Type: graphql.String},
			"slug": &graphql.Field{Type: graphql.String},
			"rows": &graphql.Field{Type: graphql.Int},
		},
	})

	groupCountType := graphql.NewObject(graphql.ObjectConfig{
		Name: "GroupCount",
		Fields: graphql.Fields{
			"key":   &graphql.Field{Type: graphql.String},
			"count": &graphql.Field{Type: graphql.Int},
		},
	})

	statsType := graphql.NewObject(graphql.ObjectConfig{
		Name: "DistributionStats",
		Fields: graphql.Fields{
			"boroughs":           &graphql.Field{Type: graphql.NewList(groupCountType)},
			"providers":          &graphql.Field{Type: graphql.NewList(groupCountType)},
			"max_borough_count":  &graphql.Field{Type: graphql.Int},
			"max_provider_count": &graphql.Field{Type: graphql.Int},
		},
	})

	chartType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Chart",
		Fields: graphql.Fields{
			"title": &graphql.Field{Type: graphql.String},
			"spec": &graphql.Field{
				Type:        graphql.String,
				Description: "Vega-Lite spec as a JSON string",
			},
			"stats": &graphql.Field{Type: statsType},
		},
	})

	categoryArg := graphql.FieldConfigArgument{
		"category": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
	}

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"datasets": &graphql.Field{
				Type:        graphql.NewList(datasetType),
				Description: "Row counts of the Free and Limited Free subsets",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					var result []map[string]interface{}
					for _, s := range deps.Charts.Summaries() {
						result = append(result, map[string]interface{}{
							"type": string(s.Type),
							"slug": s.Slug,
							"rows": s.Rows,
						})
					}
					return result, nil
				},
			},
			"stats": &graphql.Field{
				Type:        statsType,
				Description: "Borough and provider counts of a category",
				Args:        categoryArg,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					category, err := domain.ParseHotspotType(p.Args["category"].(string))
					if err != nil {
						return nil, err
					}
					stats, err := deps.Charts.Stats(category)
					if err != nil {
						return nil, err
					}
					return statsMap(stats), nil
				},
			},
			"chart": &graphql.Field{
				Type:        chartType,
				Description: "Composite hotspot chart of a category",
				Args: graphql.FieldConfigArgument{
					"category": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"name":     &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					category, err := domain.ParseHotspotType(p.Args["category"].(string))
					if err != nil {
						return nil, err
					}
					name, ok := p.Args["name"].(string)
					if !ok {
						name = string(category)
					}
					chart, err := deps.Charts.Build(p.Context, category, name)
					if err != nil {
						return nil, err
					}
					spec, err := json.Marshal(chart.Spec)
					if err != nil {
						return nil, err
					}
					return map[string]interface{}{
						"title": chart.Title,
						"spec":  string(spec),
						"stats": statsMap(chart.Stats),
					}, nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

// statsMap converts stats for the default resolvers, which match map keys
// to field names.
func statsMap(s *domain.DistributionStats) map[string]interface{} {
	groups := func(gs []domain.GroupCount) []map[string]interface{} {
		out := make([]map[string]interface{}, len(gs))
		for i, g := range gs {
			out[i] = map[string]interface{}{"key": g.Key, "count": g.Count}
		}
		return out
	}
	return map[string]interface{}{
		"boroughs":           groups(s.Boroughs),
		"providers":          groups(s.Providers),
		"max_borough_count":  s.MaxBoroughCount,
		"max_provider_count": s.MaxProviderCount,
	}
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.UserContext(),
		})

		return c.JSON(result)
	}
}
