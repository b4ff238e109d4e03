package reasoning

import "context"

// Client is the single boundary behind which all non-determinism lives. The
// engine only depends on the output contract: prose, an optional structured
// object and the tool-invocation log.
type Client interface {
	Reason(ctx context.Context, req Request) (*Result, error)
}
