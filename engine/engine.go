// Package engine answers questions about pulled memory with Claude. The model
// gets a search_memory tool over the local short-term collection and loops
// until it stops calling tools or runs out of turns.
package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/rs/zerolog"

	"github.com/stitch-ai/stitch-go-sdk/memory"
	"github.com/stitch-ai/stitch-go-sdk/tools"
)

// Defaults applied when AskInput leaves a field zero.
const (
	DefaultModel     = "claude-sonnet-4-20250514"
	DefaultMaxTokens = 4096
	DefaultMaxTurns  = 8
)

// ErrMaxTurns is returned when the model is still calling tools after the
// turn limit.
var ErrMaxTurns = errors.New("exceeded maximum turns")

// Engine runs the ask loop.
type Engine struct {
	client   *anthropic.Client
	tools    map[string]tools.Tool
	apiTools []anthropic.ToolUnionParam
	prefetch tools.Searcher
	preN     int
	logger   zerolog.Logger
}

// Option configures the engine.
type Option func(*Engine)

// WithTools registers tools. Later registrations replace earlier ones with
// the same name.
func WithTools(ts ...tools.Tool) Option {
	return func(e *Engine) {
		for _, t := range ts {
			e.register(t)
		}
	}
}

// WithPrefetch retrieves n passages for the question before the first turn
// and appends them to the system prompt.
func WithPrefetch(s tools.Searcher, n int) Option {
	return func(e *Engine) {
		e.prefetch = s
		e.preN = n
	}
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger.With().Str("component", "engine").Logger()
	}
}

// New creates an engine on the given Anthropic client.
func New(client *anthropic.Client, opts ...Option) *Engine {
	e := &Engine{
		client: client,
		tools:  make(map[string]tools.Tool),
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) register(t tools.Tool) {
	def := t.Definition()
	if _, exists := e.tools[def.Name]; !exists {
		e.apiTools = append(e.apiTools, toAPITool(def))
	} else {
		for i, at := range e.apiTools {
			if at.OfTool != nil && at.OfTool.Name == def.Name {
				e.apiTools[i] = toAPITool(def)
			}
		}
	}
	e.tools[def.Name] = t
}

// AskInput is one question.
type AskInput struct {
	Question string

	// History is prior conversation, oldest first.
	History []anthropic.MessageParam

	SystemPrompt string
	Model        string
	MaxTokens    int64
	MaxTurns     int
}

// ToolCall records one tool invocation.
type ToolCall struct {
	Name     string          `json:"name"`
	Input    json.RawMessage `json:"input"`
	Output   string          `json:"output,omitempty"`
	Error    string          `json:"error,omitempty"`
	Duration time.Duration   `json:"duration"`
}

// AskOutput is the engine's answer.
type AskOutput struct {
	Text         string     `json:"text"`
	ToolCalls    []ToolCall `json:"tool_calls,omitempty"`
	Turns        int        `json:"turns"`
	InputTokens  int64      `json:"input_tokens"`
	OutputTokens int64      `json:"output_tokens"`
	StopReason   string     `json:"stop_reason"`
}

// Ask runs the loop. On error the partial AskOutput is still returned so
// callers can see tool calls and token usage.
func (e *Engine) Ask(ctx context.Context, in AskInput) (*AskOutput, error) {
	if strings.TrimSpace(in.Question) == "" {
		return nil, errors.New("question is empty")
	}

	model := in.Model
	if model == "" {
		model = DefaultModel
	}
	maxTokens := in.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	maxTurns := in.MaxTurns
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}
	system := in.SystemPrompt
	if system == "" {
		system = DefaultSystemPrompt
	}

	// Retrieve relevant memory into the system prompt
	if e.prefetch != nil && e.preN > 0 {
		matches, err := e.prefetch.Retrieve(ctx, in.Question, e.preN)
		if err != nil {
			// Non-fatal: the model can still search.
			e.logger.Warn().Err(err).Msg("prefetch failed")
		} else if len(matches) > 0 {
			system += "\n\n" + memory.Format(matches, memory.DefaultMaxChars)
			e.logger.Debug().Int("matches", len(matches)).Msg("prefetched memory")
		}
	}

	// Build conversation: history, then the question
	messages := append([]anthropic.MessageParam(nil), in.History...)
	messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(in.Question)))

	out := &AskOutput{}
	for turn := 1; turn <= maxTurns; turn++ {
		if err := ctx.Err(); err != nil {
			return out, err
		}

		params := anthropic.MessageNewParams{
			Model:     anthropic.Model(model),
			MaxTokens: maxTokens,
			Messages:  messages,
			System:    []anthropic.TextBlockParam{{Text: system}},
		}
		if len(e.apiTools) > 0 {
			params.Tools = e.apiTools
		}

		// Call Claude
		resp, err := e.client.Messages.New(ctx, params)
		if err != nil {
			return out, fmt.Errorf("claude api: %w", err)
		}
		out.Turns = turn
		out.InputTokens += resp.Usage.InputTokens
		out.OutputTokens += resp.Usage.OutputTokens
		out.StopReason = string(resp.StopReason)

		// Collect text and execute tool calls
		var text strings.Builder
		var results []anthropic.ContentBlockParamUnion
		for _, block := range resp.Content {
			switch block.Type {
			case "text":
				text.WriteString(block.Text)
			case "tool_use":
				call, result := e.runTool(ctx, block.ID, block.Name, block.Input)
				out.ToolCalls = append(out.ToolCalls, call)
				results = append(results, result)
			}
		}

		// No tool use means the model is done
		if len(results) == 0 || resp.StopReason != anthropic.StopReasonToolUse {
			out.Text = text.String()
			e.logger.Info().
				Int("turns", out.Turns).
				Int("tool_calls", len(out.ToolCalls)).
				Int64("input_tokens", out.InputTokens).
				Int64("output_tokens", out.OutputTokens).
				Msg("answered")
			return out, nil
		}

		// Continue the conversation with tool results
		messages = append(messages, resp.ToParam(), anthropic.NewUserMessage(results...))
	}

	return out, fmt.Errorf("%w (%d)", ErrMaxTurns, maxTurns)
}

// runTool executes one tool_use block and builds its result block.
func (e *Engine) runTool(ctx context.Context, id, name string, input json.RawMessage) (ToolCall, anthropic.ContentBlockParamUnion) {
	call := ToolCall{Name: name, Input: input}

	tool, ok := e.tools[name]
	if !ok {
		call.Error = "unknown tool: " + name
		return call, anthropic.NewToolResultBlock(id, call.Error, true)
	}

	var thought struct {
		Thought string `json:"thought"`
	}
	if err := json.Unmarshal(input, &thought); err != nil {
		e.logger.Debug().Err(err).Str("tool", name).Msg("tool input not decodable")
	}

	start := time.Now()
	output, err := tool.Execute(ctx, input)
	call.Duration = time.Since(start)

	ev := e.logger.Debug().Str("tool", name).Dur("elapsed", call.Duration)
	if t := strings.TrimSpace(thought.Thought); t != "" {
		ev = ev.Str("thought", t)
	}

	if err != nil {
		call.Error = err.Error()
		ev.Err(err).Msg("tool failed")
		return call, anthropic.NewToolResultBlock(id, call.Error, true)
	}
	call.Output = output
	ev.Msg("tool call")
	return call, anthropic.NewToolResultBlock(id, output, false)
}

func toAPITool(def tools.Definition) anthropic.ToolUnionParam {
	return anthropic.ToolUnionParam{
		OfTool: &anthropic.ToolParam{
			Name:        def.Name,
			Description: anthropic.String(def.Description),
			InputSchema: anthropic.ToolInputSchemaParam{
				Properties: tools.Properties(def.InputSchema),
				Required:   tools.Required(def.InputSchema),
			},
		},
	}
}

// DefaultSystemPrompt frames the model as a reader of the agent's memory.
const DefaultSystemPrompt = `You answer questions about an AI agent's memory.

The memory was pulled from a Stitch memory space and has two parts:
- episodic memory: what the agent saw, said and did, in order
- character memory: the agent's persona, style and background

Use the search_memory tool to find relevant passages before answering. Search
more than once with different wording when the first results are thin.

Answer only from what the memory says. If the memory does not contain the
answer, say so plainly. Quote short passages when they support the answer.`
