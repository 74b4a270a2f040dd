package tool

import (
	"context"
	"net/http"
	"testing"

	pkgerrors "github.com/dharti/dharti/bridge/pkg/errors"
	"go.uber.org/zap"
)

func TestExecutorUnknownToolIsClassified(t *testing.T) {
	registry := newTestRegistry(t, noopHandler)
	executor := NewExecutor(registry, zap.NewNop())

	_, err := executor.Execute(context.Background(), "summon_unicorn", nil)
	if err == nil {
		t.Fatal("Execute on unregistered tool succeeded")
	}
	if !pkgerrors.IsToolNotFound(err) {
		t.Errorf("error is not tool-not-found: %v", err)
	}
}

func TestExecutorDispatchesRegisteredTool(t *testing.T) {
	registry := newTestRegistry(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"id":1,"name":"Rice"}]`))
	})
	executor := NewExecutor(registry, zap.NewNop())

	result, err := executor.Execute(context.Background(), "get_all_products", nil)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if !result.Success {
		t.Fatalf("Success = false: %s", result.Error)
	}

	if len(executor.Definitions()) != len(registry.List()) {
		t.Error("Definitions does not expose the full catalog")
	}
	if _, ok := executor.Lookup("get_all_products"); !ok {
		t.Error("Lookup missed a registered tool")
	}
}
