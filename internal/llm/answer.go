package llm

import (
	"regexp"
	"strings"
)

var fenceRe = regexp.MustCompile("(?s)^```[A-Za-z]*\\s*(.*?)\\s*```$")

// finish builds the Response every adapter returns from the vendor's raw
// output. For schema requests the object is unwrapped from a code fence and
// validated; a structured answer cut off by the token limit is an
// ErrMaxTokensExceeded since it cannot be parsed.
func finish(req Request, raw string, usage Usage, model string, stop StopReason) (*Response, error) {
	resp := &Response{
		Text:       strings.TrimSpace(raw),
		Usage:      usage,
		Model:      model,
		StopReason: stop,
	}
	if req.Schema == nil {
		return resp, nil
	}
	if stop == StopMaxTokens {
		return nil, &ErrMaxTokensExceeded{Partial: resp.Text}
	}

	obj := []byte(stripFence(resp.Text))
	if err := validateResponse(req.Schema, obj); err != nil {
		return nil, err
	}
	resp.JSON = obj
	return resp, nil
}

func stripFence(s string) string {
	if m := fenceRe.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	return s
}
