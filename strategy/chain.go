package strategy

import "context"

// Chain routes an error to Primary and, if Primary fails, routes Primary's
// failure to Fallback. A Chain is itself infallible.
type Chain struct {
	Primary  FallibleHandler
	Fallback Handler
}

// NewChain returns a Chain over primary and fallback.
func NewChain(primary FallibleHandler, fallback Handler) *Chain {
	return &Chain{Primary: primary, Fallback: fallback}
}

// Handle implements Handler.
func (c *Chain) Handle(ctx context.Context, err error) {
	if ferr := c.Primary.TryHandle(ctx, err); ferr != nil {
		c.Fallback.Handle(ctx, ferr)
	}
}
