package definition

import (
	"errors"
	"testing"
)

func TestNewOpenAIProviderValidation(t *testing.T) {
	if _, err := NewOpenAIProvider("", "gpt-5-mini", ""); err == nil {
		t.Error("expected error for empty api key")
	}
	if _, err := NewOpenAIProvider("sk-test", "", ""); err == nil {
		t.Error("expected error for empty model")
	}
	if _, err := NewOpenAIProvider("sk-test", "gpt-5-mini", "http://localhost:8080/v1"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestBuildPrompt(t *testing.T) {
	if got := buildPrompt("mouton", "French"); got != `Define the French word "mouton".` {
		t.Errorf("unexpected prompt %q", got)
	}
	if got := buildPrompt("mouton", ""); got != `Define the word "mouton".` {
		t.Errorf("unexpected prompt %q", got)
	}
}

func TestIsRetryable(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{errors.New("POST /responses: 429 Too Many Requests"), true},
		{errors.New("rate limit exceeded"), true},
		{errors.New("502 Bad Gateway"), true},
		{errors.New("server_error: transient upstream failure"), true},
		{errors.New("401 Unauthorized"), false},
		{errors.New("context canceled"), false},
	}
	for _, tc := range cases {
		if got := isRetryable(tc.err); got != tc.want {
			t.Errorf("isRetryable(%v) = %v, want %v", tc.err, got, tc.want)
		}
	}
}
