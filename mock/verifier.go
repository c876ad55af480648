package mock

import (
	"context"

	"github.com/fwojciec/pageport"
)

var _ pageport.Verifier = (*Verifier)(nil)

// Verifier is a mock implementation of pageport.Verifier.
type Verifier struct {
	VerifyFn func(ctx context.Context, files []pageport.File, target pageport.BuilderID) (*pageport.VerificationReport, error)
}

func (v *Verifier) Verify(ctx context.Context, files []pageport.File, target pageport.BuilderID) (*pageport.VerificationReport, error) {
	return v.VerifyFn(ctx, files, target)
}
