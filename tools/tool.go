// Package tools defines the tools the ask engine exposes to the model.
package tools

import (
	"context"
	"encoding/json"
)

// Definition describes a tool to the model.
type Definition struct {
	Name        string
	Description string
	InputSchema map[string]interface{}
}

// Tool is something the model can call. Execute returns the text sent back
// as the tool result; an error is reported to the model as a failed call.
type Tool interface {
	Definition() Definition
	Execute(ctx context.Context, input json.RawMessage) (string, error)
}

// Func adapts a function into a Tool.
type Func struct {
	Def Definition
	Fn  func(ctx context.Context, input json.RawMessage) (string, error)
}

func (f Func) Definition() Definition { return f.Def }

func (f Func) Execute(ctx context.Context, input json.RawMessage) (string, error) {
	return f.Fn(ctx, input)
}
