// Package definition resolves learner definitions for lemmas through an
// external LLM service. Failures are expected and recoverable: callers
// degrade to a placeholder and retry on the next reveal.
package definition

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"
)

const instructions = "You are a concise bilingual dictionary for language learners. " +
	"Reply with a short learner-friendly definition of the given word: one or two plain sentences, no markup."

// OpenAIProvider fetches definitions from an OpenAI-compatible endpoint.
type OpenAIProvider struct {
	client openai.Client
	model  string
}

// NewOpenAIProvider builds a provider for the given API key and model.
// baseURL may be empty to use the default endpoint.
func NewOpenAIProvider(apiKey, model, baseURL string) (*OpenAIProvider, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("definition: api key is empty")
	}
	if strings.TrimSpace(model) == "" {
		return nil, errors.New("definition: model is empty")
	}
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &OpenAIProvider{client: openai.NewClient(opts...), model: model}, nil
}

// Fetch resolves a definition for the lemma. The language hint, when
// present, names the language the word was read in.
func (p *OpenAIProvider) Fetch(ctx context.Context, lemma, language string) (string, error) {
	if strings.TrimSpace(lemma) == "" {
		return "", errors.New("definition: lemma is empty")
	}

	params := responses.ResponseNewParams{
		Model:           p.model,
		MaxOutputTokens: openai.Int(200),
		Instructions:    openai.String(instructions),
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: []responses.ResponseInputItemUnionParam{
				responses.ResponseInputItemParamOfMessage(buildPrompt(lemma, language), responses.EasyInputMessageRoleUser),
			},
		},
	}

	resp, err := callWithRetry(ctx, &p.client, params)
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(resp.OutputText())
	if text == "" {
		return "", errors.New("definition: empty model output")
	}
	return text, nil
}

func buildPrompt(lemma, language string) string {
	if language == "" {
		return fmt.Sprintf("Define the word %q.", lemma)
	}
	return fmt.Sprintf("Define the %s word %q.", language, lemma)
}

func callWithRetry(ctx context.Context, client *openai.Client, params responses.ResponseNewParams) (*responses.Response, error) {
	const maxRetries = 3
	backoff := []time.Duration{time.Second, 3 * time.Second, 9 * time.Second}

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		resp, err := client.Responses.New(ctx, params)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if !isRetryable(err) || attempt == maxRetries-1 {
			return nil, err
		}
		select {
		case <-time.After(backoff[attempt]):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return nil, lastErr
}

func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "429") ||
		strings.Contains(s, "rate limit") ||
		strings.Contains(s, "too many requests") ||
		strings.Contains(s, "500") ||
		strings.Contains(s, "502") ||
		strings.Contains(s, "503") ||
		strings.Contains(s, "internal server error") ||
		strings.Contains(s, "server_error")
}
