package llm

import "context"

type purposeKey struct{}

// Unlabelled is the purpose recorded for calls made without WithPurpose.
const Unlabelled = "unlabelled"

// WithPurpose tags ctx with what a call is for (a full batch, a single
// rewrite, topic extraction) so stored events can be grouped by it.
func WithPurpose(ctx context.Context, purpose string) context.Context {
	if purpose == "" {
		return ctx
	}
	return context.WithValue(ctx, purposeKey{}, purpose)
}

func PurposeFrom(ctx context.Context) string {
	if p, ok := ctx.Value(purposeKey{}).(string); ok {
		return p
	}
	return Unlabelled
}
