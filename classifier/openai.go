package classifier

import (
	"context"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"outreachly/models"
)

// ReplyClassifier labels a single reply. Implementations may fail; the
// pipeline owns the retry and fallback policy.
type ReplyClassifier interface {
	Classify(ctx context.Context, subject, body string) (string, error)
}

const classifySystemPrompt = `You classify replies to cold outreach emails.
Answer with exactly one of these labels and nothing else:
interested, meeting_booked, not_interested, wrong_person, out_of_office, lost`

// OpenAIClassifier labels replies through the OpenAI chat completion API.
type OpenAIClassifier struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

func NewOpenAIClassifier(apiKey, model string, timeout time.Duration) *OpenAIClassifier {
	if model == "" {
		model = openai.GPT4oMini
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &OpenAIClassifier{
		client:  openai.NewClient(apiKey),
		model:   model,
		timeout: timeout,
	}
}

// Classify makes a single classification attempt with a per-attempt
// timeout. A malformed or unrecognized answer is an error, like any
// transport failure; callers decide whether to retry.
func (oc *OpenAIClassifier) Classify(ctx context.Context, subject, body string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, oc.timeout)
	defer cancel()

	resp, err := oc.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       oc.model,
		Temperature: 0,
		MaxTokens:   10,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: classifySystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf("Subject: %s\n\n%s", subject, body)},
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai classification failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from openai")
	}

	label := normalizeLabel(resp.Choices[0].Message.Content)
	if !isValidLabel(label) {
		return "", fmt.Errorf("unrecognized label %q from openai", label)
	}
	return label, nil
}

func normalizeLabel(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.Trim(s, `."'`)
	return strings.ReplaceAll(s, " ", "_")
}

func isValidLabel(label string) bool {
	for _, valid := range models.ValidAILabels() {
		if label == valid {
			return true
		}
	}
	return false
}
