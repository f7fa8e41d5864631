package llm

import (
	"errors"
	"testing"
)

func TestFinishFreeText(t *testing.T) {
	raw := "\n  1. Do you cook at home?\n2. What did you eat yesterday?  \n"
	resp, err := finish(Request{}, raw, newUsage(12, 30), "m", StopEnd)
	if err != nil {
		t.Fatal(err)
	}
	if resp.Text != "1. Do you cook at home?\n2. What did you eat yesterday?" {
		t.Errorf("Text = %q", resp.Text)
	}
	if resp.JSON != nil {
		t.Errorf("JSON set for a free-text request: %s", resp.JSON)
	}
	if resp.Usage.TotalTokens != 42 || resp.Model != "m" || resp.StopReason != StopEnd {
		t.Errorf("metadata = %+v", resp)
	}
}

func TestFinishFreeTextTruncated(t *testing.T) {
	// A cut-off list is still usable; the generator pads it.
	resp, err := finish(Request{}, "1. Do you cook?\n2. What do", Usage{}, "m", StopMaxTokens)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StopReason != StopMaxTokens {
		t.Errorf("StopReason = %q", resp.StopReason)
	}
}

func TestFinishStructured(t *testing.T) {
	req := Request{Schema: questionSchema()}
	raw := "```json\n{\"questions\":[\"Do you cook?\"]}\n```"

	resp, err := finish(req, raw, Usage{}, "m", StopEnd)
	if err != nil {
		t.Fatal(err)
	}
	if string(resp.JSON) != `{"questions":["Do you cook?"]}` {
		t.Errorf("JSON = %s", resp.JSON)
	}
	if resp.Text != raw {
		t.Errorf("Text = %q, want the answer as written", resp.Text)
	}
}

func TestFinishStructuredTruncated(t *testing.T) {
	req := Request{Schema: questionSchema()}
	_, err := finish(req, `{"questions":["Do you co`, Usage{}, "m", StopMaxTokens)

	var maxTok *ErrMaxTokensExceeded
	if !errors.As(err, &maxTok) {
		t.Fatalf("expected ErrMaxTokensExceeded, got %T (%v)", err, err)
	}
	if maxTok.Partial != `{"questions":["Do you co` {
		t.Errorf("Partial = %q", maxTok.Partial)
	}
}

func TestFinishStructuredInvalid(t *testing.T) {
	req := Request{Schema: questionSchema()}
	_, err := finish(req, "1. Do you cook?", Usage{}, "m", StopEnd)

	var inv *ErrInvalidResponse
	if !errors.As(err, &inv) {
		t.Fatalf("expected ErrInvalidResponse, got %T (%v)", err, err)
	}
}

func TestStripFence(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"{\"a\":1}", "{\"a\":1}"},
		{"```json\n{\"a\":1}\n```", "{\"a\":1}"},
		{"```\n{\"a\":1}\n```", "{\"a\":1}"},
		{"```JSON {\"a\":1} ```", "{\"a\":1}"},
		{"Here you go:\n```json\n{}\n```", "Here you go:\n```json\n{}\n```"},
	}
	for _, tt := range tests {
		if got := stripFence(tt.in); got != tt.want {
			t.Errorf("stripFence(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
