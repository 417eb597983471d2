// Package model wraps the language-model collaborators behind a single
// Generator interface: hosted providers through langchaingo, a remote
// generation endpoint for key-less deployments, and an offline demo
// model used when nothing is configured.
package model

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/bedrock"
	"github.com/tmc/langchaingo/llms/openai"
)

// FallbackReply is the apology shown to users when generation fails.
// The orchestrator synthesizes it whenever a generator errors out.
const FallbackReply = "Desculpe, ocorreu um erro ao processar sua mensagem. Por favor, tente novamente."

// systemPrompt frames every hosted-provider call.
const systemPrompt = "Você é um assistente de IA para o Solo in Public. Responda de forma objetiva e útil."

const (
	// DefaultMaxTokens is used when the caller does not set a budget.
	DefaultMaxTokens = 300
	minMaxTokens     = 50
	maxMaxTokens     = 400
)

// Options tune a single generation call.
type Options struct {
	// Locale of the end user, used by locale-aware generators.
	Locale string
	// MaxTokens is clamped to [50, 400]; zero selects the default.
	MaxTokens int
	// System replaces the default system framing when set.
	System string
}

// Generator produces a reply for a fully built prompt.
type Generator interface {
	Name() string
	Generate(ctx context.Context, prompt string, opts Options) (string, error)
}

// ClampMaxTokens enforces the token budget bounds.
func ClampMaxTokens(n int) int {
	if n == 0 {
		n = DefaultMaxTokens
	}
	if n < minMaxTokens {
		return minMaxTokens
	}
	if n > maxMaxTokens {
		return maxMaxTokens
	}
	return n
}

// Named wraps a generator so it reports under a stable public name
// instead of the provider model id (e.g. "claude-3.5-haiku" for
// "claude-3-5-haiku-latest").
func Named(g Generator, name string) Generator {
	if name == "" {
		return g
	}
	return &namedGenerator{Generator: g, name: name}
}

type namedGenerator struct {
	Generator
	name string
}

func (n *namedGenerator) Name() string { return n.name }

// HostedModel adapts a langchaingo model to the Generator interface.
type HostedModel struct {
	llm  llms.Model
	name string
}

var _ Generator = (*HostedModel)(nil)

// NewOpenAI creates a generator backed by the OpenAI chat API.
func NewOpenAI(apiKey, modelName string) (*HostedModel, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key required")
	}
	llm, err := openai.New(
		openai.WithToken(apiKey),
		openai.WithModel(modelName),
	)
	if err != nil {
		return nil, fmt.Errorf("create openai model: %w", err)
	}
	return &HostedModel{llm: llm, name: modelName}, nil
}

// NewAnthropic creates a generator backed by the Anthropic messages API.
func NewAnthropic(apiKey, modelName string) (*HostedModel, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Anthropic API key required")
	}
	llm, err := anthropic.New(
		anthropic.WithToken(apiKey),
		anthropic.WithModel(modelName),
	)
	if err != nil {
		return nil, fmt.Errorf("create anthropic model: %w", err)
	}
	return &HostedModel{llm: llm, name: modelName}, nil
}

// NewBedrock creates a generator backed by AWS Bedrock, using the
// ambient AWS credential chain.
func NewBedrock(ctx context.Context, modelID string) (*HostedModel, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := bedrockruntime.NewFromConfig(awsCfg)

	llm, err := bedrock.New(
		bedrock.WithClient(client),
		bedrock.WithModel(modelID),
	)
	if err != nil {
		return nil, fmt.Errorf("create bedrock model: %w", err)
	}
	return &HostedModel{llm: llm, name: modelID}, nil
}

// Name returns the provider model identifier used for reporting.
func (m *HostedModel) Name() string {
	return m.name
}

// Generate sends the prompt with the fixed system framing.
func (m *HostedModel) Generate(ctx context.Context, prompt string, opts Options) (string, error) {
	system := opts.System
	if system == "" {
		system = systemPrompt
	}
	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, system),
		llms.TextParts(llms.ChatMessageTypeHuman, prompt),
	}

	response, err := m.llm.GenerateContent(ctx, messages,
		llms.WithMaxTokens(ClampMaxTokens(opts.MaxTokens)),
		llms.WithTemperature(0.7),
	)
	if err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}
	if len(response.Choices) == 0 {
		return "", fmt.Errorf("no response choices")
	}
	return response.Choices[0].Content, nil
}
