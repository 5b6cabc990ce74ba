package llm

import "context"

type purposeKey struct{}

// DefaultPurpose labels requests made without WithPurpose.
const DefaultPurpose = "unknown"

// WithPurpose tags requests made with ctx, e.g. "root-cause", so recorded
// events can be grouped by what they were for.
func WithPurpose(ctx context.Context, purpose string) context.Context {
	return context.WithValue(ctx, purposeKey{}, purpose)
}

// PurposeFrom returns the tag set by WithPurpose.
func PurposeFrom(ctx context.Context) string {
	if v, ok := ctx.Value(purposeKey{}).(string); ok && v != "" {
		return v
	}
	return DefaultPurpose
}
