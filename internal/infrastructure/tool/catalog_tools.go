// Package tool builds the fixed tool catalog the agent dispatches
// against. Every tool is a thin, schema-described wrapper over one
// Catalog API operation; the catalog is table-driven so each resource
// gets the same create/get/get_all/update/delete surface.
package tool

import (
	"context"
	"encoding/json"
	"fmt"

	domaintool "github.com/dharti/dharti/bridge/internal/domain/tool"
	"github.com/dharti/dharti/bridge/internal/infrastructure/catalog"
	pkgerrors "github.com/dharti/dharti/bridge/pkg/errors"
)

// fieldSpec describes one argument of a tool schema.
type fieldSpec struct {
	Name        string
	Type        string // JSON Schema type: "string", "number", "integer", "object"
	Description string
	Required    bool
	Enum        []string
}

// entitySpec describes one Catalog API resource and the payload fields
// its create/update operations accept. Required flags mirror the
// backing store: a create issued without them is rejected there, so
// the slot-filling gate asks the user first.
type entitySpec struct {
	Singular string // "product"
	Plural   string // "products"
	Resource string // path segment under /api/
	Fields   []fieldSpec
}

var entitySpecs = []entitySpec{
	{
		Singular: "product",
		Plural:   "products",
		Resource: catalog.ResourceProducts,
		Fields: []fieldSpec{
			{Name: "name", Type: "string", Description: "Product name", Required: true},
			{Name: "description", Type: "string", Description: "What the product is", Required: true},
			{Name: "category", Type: "string", Description: "Product category", Required: true},
			{Name: "price", Type: "number", Description: "Unit price", Required: true},
			{Name: "stock_qty", Type: "integer", Description: "Units currently in stock", Required: true},
			{Name: "user", Type: "integer", Description: "Owning user ID", Required: true},
			{Name: "image_url", Type: "string", Description: "Product image URL"},
			{Name: "qr_code_url", Type: "string", Description: "QR code URL"},
			{Name: "remarks", Type: "string", Description: "Free-form notes"},
		},
	},
	{
		Singular: "catalog",
		Plural:   "catalogs",
		Resource: catalog.ResourceCatalogs,
		Fields: []fieldSpec{
			{Name: "title", Type: "string", Description: "Catalog title", Required: true},
			{Name: "user", Type: "integer", Description: "Owning user ID", Required: true},
			{Name: "description", Type: "string", Description: "What the catalog contains"},
			{Name: "qr_code_url", Type: "string", Description: "QR code URL"},
		},
	},
	{
		Singular: "transaction",
		Plural:   "transactions",
		Resource: catalog.ResourceTransactions,
		Fields: []fieldSpec{
			{Name: "user", Type: "integer", Description: "Buying user ID", Required: true},
			{Name: "product", Type: "integer", Description: "Product ID", Required: true},
			{Name: "payment_link", Type: "string", Description: "Payment link URL", Required: true},
			{Name: "amount", Type: "number", Description: "Transaction amount", Required: true},
			{Name: "status", Type: "string", Description: "Transaction status", Enum: []string{"pending", "completed"}},
		},
	},
	{
		Singular: "user",
		Plural:   "users",
		Resource: catalog.ResourceUsers,
		Fields: []fieldSpec{
			{Name: "username", Type: "string", Description: "Login name", Required: true},
			{Name: "password", Type: "string", Description: "Password", Required: true},
			{Name: "phone", Type: "string", Description: "Phone number", Required: true},
			{Name: "role", Type: "string", Description: "Seller role", Required: true, Enum: []string{"kirana", "artisan", "farmer"}},
			{Name: "email", Type: "string", Description: "Email address"},
			{Name: "first_name", Type: "string", Description: "First name"},
			{Name: "last_name", Type: "string", Description: "Last name"},
		},
	},
	{
		Singular: "restock_reminder",
		Plural:   "restock_reminders",
		Resource: catalog.ResourceRestockReminders,
		Fields: []fieldSpec{
			{Name: "user", Type: "integer", Description: "Owning user ID", Required: true},
			{Name: "product", Type: "integer", Description: "Product ID to restock", Required: true},
			{Name: "suggested_qty", Type: "integer", Description: "Suggested restock quantity", Required: true},
			{Name: "season_note", Type: "string", Description: "Seasonal context for the reminder", Required: true},
		},
	},
	{
		Singular: "ai_log",
		Plural:   "ai_logs",
		Resource: catalog.ResourceAILogs,
		Fields: []fieldSpec{
			{Name: "user", Type: "integer", Description: "User ID the log belongs to", Required: true},
			{Name: "action_type", Type: "string", Description: "Logged action type", Required: true, Enum: []string{"image_detection", "voice", "stock_update"}},
			{Name: "input_data", Type: "object", Description: "Raw input payload", Required: true},
			{Name: "ai_output", Type: "object", Description: "Model output payload", Required: true},
		},
	},
}

// catalogTool is one generated tool backed by a Catalog API call.
type catalogTool struct {
	name        string
	description string
	kind        domaintool.Kind
	fields      []fieldSpec
	run         func(ctx context.Context, args map[string]interface{}) (interface{}, error)
}

var _ domaintool.Tool = (*catalogTool)(nil)

func (t *catalogTool) Name() string          { return t.name }
func (t *catalogTool) Description() string   { return t.description }
func (t *catalogTool) Kind() domaintool.Kind { return t.kind }

func (t *catalogTool) Schema() map[string]interface{} {
	properties := make(map[string]interface{}, len(t.fields))
	required := make([]string, 0, len(t.fields))
	for _, f := range t.fields {
		prop := map[string]interface{}{
			"type":        f.Type,
			"description": f.Description,
		}
		if len(f.Enum) > 0 {
			prop["enum"] = f.Enum
		}
		properties[f.Name] = prop
		if f.Required {
			required = append(required, f.Name)
		}
	}
	return map[string]interface{}{
		"type":       "object",
		"properties": properties,
		"required":   required,
	}
}

func (t *catalogTool) Required() []string {
	required := make([]string, 0, len(t.fields))
	for _, f := range t.fields {
		if f.Required {
			required = append(required, f.Name)
		}
	}
	return required
}

// Execute performs the remote operation and renders the outcome as a
// model-readable observation. Classified failures (non-2xx, network)
// come back as unsuccessful results rather than errors: the model can
// read them and recover, e.g. by telling the user a record is missing.
func (t *catalogTool) Execute(ctx context.Context, args map[string]interface{}) (*domaintool.Result, error) {
	out, err := t.run(ctx, args)
	if err != nil {
		if pkgerrors.IsRemoteOperation(err) || pkgerrors.IsTransport(err) || pkgerrors.IsValidation(err) {
			return &domaintool.Result{
				Success: false,
				Error:   err.Error(),
			}, nil
		}
		return nil, err
	}

	rendered, merr := json.Marshal(out)
	if merr != nil {
		return nil, pkgerrors.NewInternalError("encode tool output", merr)
	}
	return &domaintool.Result{
		Output:  string(rendered),
		Success: true,
	}, nil
}

// payload extracts the declared fields present in args. Unknown keys
// the model invented are dropped rather than forwarded.
func payload(fields []fieldSpec, args map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{})
	for _, f := range fields {
		if v, ok := args[f.Name]; ok && v != nil {
			out[f.Name] = v
		}
	}
	return out
}

func requireID(args map[string]interface{}) (interface{}, error) {
	id, ok := args["id"]
	if !ok || id == nil {
		return nil, pkgerrors.NewValidationError("missing required argument: id")
	}
	return id, nil
}

var idField = fieldSpec{Name: "id", Type: "integer", Description: "Record ID", Required: true}

// entityTools generates the five CRUD tools for one resource.
func entityTools(client *catalog.Client, spec entitySpec) []domaintool.Tool {
	return []domaintool.Tool{
		&catalogTool{
			name:        "create_" + spec.Singular,
			description: fmt.Sprintf("Create a new %s.", spec.Singular),
			kind:        domaintool.KindCreate,
			fields:      spec.Fields,
			run: func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
				return client.Create(ctx, spec.Resource, payload(spec.Fields, args))
			},
		},
		&catalogTool{
			name:        "get_" + spec.Singular,
			description: fmt.Sprintf("Get one %s by ID.", spec.Singular),
			kind:        domaintool.KindRead,
			fields:      []fieldSpec{idField},
			run: func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
				id, err := requireID(args)
				if err != nil {
					return nil, err
				}
				return client.Get(ctx, spec.Resource, id)
			},
		},
		&catalogTool{
			name:        "get_all_" + spec.Plural,
			description: fmt.Sprintf("List all %s.", spec.Plural),
			kind:        domaintool.KindRead,
			run: func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
				return client.List(ctx, spec.Resource)
			},
		},
		&catalogTool{
			name:        "update_" + spec.Singular,
			description: fmt.Sprintf("Update an existing %s by ID. All fields are replaced.", spec.Singular),
			kind:        domaintool.KindUpdate,
			fields:      append([]fieldSpec{idField}, spec.Fields...),
			run: func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
				id, err := requireID(args)
				if err != nil {
					return nil, err
				}
				return client.Update(ctx, spec.Resource, id, payload(spec.Fields, args))
			},
		},
		&catalogTool{
			name:        "delete_" + spec.Singular,
			description: fmt.Sprintf("Delete a %s by ID.", spec.Singular),
			kind:        domaintool.KindDelete,
			fields:      []fieldSpec{idField},
			run: func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
				id, err := requireID(args)
				if err != nil {
					return nil, err
				}
				return client.Delete(ctx, spec.Resource, id)
			},
		},
	}
}

// membershipTools generates the catalog↔product join tools. The join
// resource has its own IDs, but add/remove speak in catalog and
// product IDs, matching how users phrase the request.
func membershipTools(client *catalog.Client) []domaintool.Tool {
	memberFields := []fieldSpec{
		{Name: "catalog", Type: "integer", Description: "Catalog ID", Required: true},
		{Name: "product", Type: "integer", Description: "Product ID", Required: true},
	}

	return []domaintool.Tool{
		&catalogTool{
			name:        "add_product_to_catalog",
			description: "Add an existing product to a catalog.",
			kind:        domaintool.KindCreate,
			fields:      memberFields,
			run: func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
				return client.Create(ctx, catalog.ResourceCatalogProducts, payload(memberFields, args))
			},
		},
		&catalogTool{
			name:        "remove_product_from_catalog",
			description: "Remove a catalog membership entry by its entry ID. List catalog products first to find the entry ID.",
			kind:        domaintool.KindDelete,
			fields:      []fieldSpec{{Name: "id", Type: "integer", Description: "Catalog membership entry ID", Required: true}},
			run: func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
				id, err := requireID(args)
				if err != nil {
					return nil, err
				}
				return client.Delete(ctx, catalog.ResourceCatalogProducts, id)
			},
		},
		&catalogTool{
			name:        "get_all_catalog_products",
			description: "List all catalog membership entries (which products belong to which catalogs).",
			kind:        domaintool.KindRead,
			run: func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
				return client.List(ctx, catalog.ResourceCatalogProducts)
			},
		},
	}
}

// loginTool relays the login bypass: the catalog service looks the
// user up by name and answers with their ID. No password is read on
// either side.
func loginTool(client *catalog.Client) domaintool.Tool {
	fields := []fieldSpec{
		{Name: "username", Type: "string", Description: "Login name", Required: true},
	}
	return &catalogTool{
		name:        "login",
		description: "Look up a user by their login name and get their user ID.",
		kind:        domaintool.KindRead,
		fields:      fields,
		run: func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			username, _ := args["username"].(string)
			return client.Login(ctx, username)
		},
	}
}

// RegisterAll populates the registry with the full tool catalog. Order
// is stable: CRUD per resource in declaration order, then catalog
// membership, then login.
func RegisterAll(registry domaintool.Registry, client *catalog.Client) error {
	var all []domaintool.Tool
	for _, spec := range entitySpecs {
		all = append(all, entityTools(client, spec)...)
	}
	all = append(all, membershipTools(client)...)
	all = append(all, loginTool(client))

	for _, t := range all {
		if err := registry.Register(t); err != nil {
			return err
		}
	}
	return nil
}
