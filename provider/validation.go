package provider

import (
	"context"
	"fmt"
	"strings"

	"promptchat/config"
	"promptchat/ollama"
)

// CheckResult describes whether a backend can serve the configured model.
type CheckResult struct {
	Reachable  bool
	ModelFound bool
	Models     []ollama.ModelInfo
	Err        error
}

// CheckTransport pings the backend and looks for the current model in its
// model list. It is used at startup so a typo in the model name is reported
// before the first turn instead of as a failed generation.
func CheckTransport(ctx context.Context, t Transport) CheckResult {
	if err := t.Ping(ctx); err != nil {
		return CheckResult{Err: fmt.Errorf("connection failed: %w", err)}
	}

	models, err := t.ListModels(ctx)
	if err != nil {
		return CheckResult{Reachable: true, Err: fmt.Errorf("failed to list models: %w", err)}
	}

	result := CheckResult{Reachable: true, Models: models}
	result.ModelFound = HasModel(models, t.GetModel())
	if !result.ModelFound {
		result.Err = fmt.Errorf("model %q not found on server", t.GetModel())
	}

	config.DebugLog.Debug("transport check",
		"model", t.GetModel(),
		"models", len(models),
		"found", result.ModelFound)

	return result
}

// HasModel reports whether name is in models. Ollama omits the ":latest"
// tag in some responses, so "llama3.1" and "llama3.1:latest" match.
func HasModel(models []ollama.ModelInfo, name string) bool {
	want := normalizeModelName(name)
	for _, m := range models {
		if normalizeModelName(m.Name) == want {
			return true
		}
	}
	return false
}

func normalizeModelName(name string) string {
	return strings.TrimSuffix(strings.ToLower(name), ":latest")
}
