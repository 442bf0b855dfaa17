package catalog

import (
	"context"
	"encoding/json"
	"log"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"
	"gorm.io/gorm"
)

// LookupToolName is the tool name the model sees.
const LookupToolName = "product_lookup"

// LookupInput is the model-facing argument shape for the lookup tool.
type LookupInput struct {
	Query string `json:"query,omitempty"`
}

// LookupProduct is one catalog entry in a lookup result.
type LookupProduct struct {
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
}

// LookupResult is the JSON payload returned to the model. Storage failures
// surface as success=false with an empty list, never as a tool error, so
// the model answers "no product data available" instead of failing the turn.
type LookupResult struct {
	Success  bool            `json:"success"`
	Products []LookupProduct `json:"products"`
}

// Lookup runs a catalog search and packages the result for the model.
func Lookup(db *gorm.DB, query string) LookupResult {
	products, err := Search(db, query)
	if err != nil {
		log.Printf("catalog: lookup failed: %v", err)
		return LookupResult{Success: false, Products: []LookupProduct{}}
	}
	out := make([]LookupProduct, len(products))
	for i, p := range products {
		out[i] = LookupProduct{Name: p.Name, Price: p.Price, Description: p.Description}
	}
	return LookupResult{Success: true, Products: out}
}

// NewLookupTool returns the product lookup as an invokable model tool.
func NewLookupTool(db *gorm.DB) tool.InvokableTool {
	return utils.NewTool(&schema.ToolInfo{
		Name: LookupToolName,
		Desc: "Look up products in the catalog. Pass a query to filter by name or description; omit it to list everything.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"query": {Type: schema.String, Required: false, Desc: "Case-insensitive substring to match against product name or description"},
		}),
	}, func(ctx context.Context, input *LookupInput) (string, error) {
		result := Lookup(db, input.Query)
		data, err := json.Marshal(result)
		if err != nil {
			// Marshal of a plain struct cannot realistically fail; keep the
			// no-data contract anyway.
			return `{"success":false,"products":[]}`, nil
		}
		return string(data), nil
	})
}
