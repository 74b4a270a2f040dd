package prompt

import (
	"strings"
	"testing"

	domaintool "github.com/dharti/dharti/bridge/internal/domain/tool"
)

func TestBuildIncludesPersonaAndTools(t *testing.T) {
	b := NewBuilder()

	out := b.Build([]domaintool.Definition{
		{Name: "create_product", Description: "Create a new product."},
		{Name: "get_all_products", Description: "List all products."},
	})

	if !strings.Contains(out, "RFAI") {
		t.Error("prompt does not name the assistant")
	}
	if !strings.Contains(out, "create_product") || !strings.Contains(out, "get_all_products") {
		t.Error("prompt does not list the tools")
	}
	if !strings.Contains(out, "Current date:") {
		t.Error("prompt does not carry the date")
	}
}

func TestBuildWithoutTools(t *testing.T) {
	b := NewBuilder()
	out := b.Build(nil)

	if strings.Contains(out, "Available tools") {
		t.Error("empty catalog still rendered a tool list")
	}
	if !strings.Contains(out, "RFAI") {
		t.Error("prompt does not name the assistant")
	}
}
