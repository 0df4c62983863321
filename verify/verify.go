// Package verify compares device registers against expected values and
// records the outcome without stopping the test.
package verify

import (
	"context"
	"errors"
	"fmt"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/sarchlab/nftest/backend"
	"github.com/sarchlab/nftest/fault"
	"github.com/sarchlab/nftest/regmap"
	"github.com/sarchlab/nftest/result"
)

var errMismatch = errors.New("register mismatch")

// A Reader reads registers and tells how mismatches should be re-read.
type Reader interface {
	RegRead(ctx context.Context, addr regmap.Addr) (regmap.Value, error)
	VerifyPolicy() backend.RetryPolicy
}

// A Gate refuses verification while the device may still be busy.
type Gate interface {
	MustBeSettled(op string) error
}

// Check is one register expectation.
type Check struct {
	Addr     regmap.Addr
	Expected regmap.Value
}

// Verifier checks registers and records every check into a result set.
type Verifier struct {
	logger  *zap.Logger
	reader  Reader
	gate    Gate
	regs    *regmap.Map
	results *result.Set
	seq     int
}

// New creates a verifier. The gate and the register map are optional.
func New(
	reader Reader,
	gate Gate,
	regs *regmap.Map,
	results *result.Set,
	logger *zap.Logger,
) *Verifier {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Verifier{
		logger:  logger.Named("verify"),
		reader:  reader,
		gate:    gate,
		regs:    regs,
		results: results,
	}
}

// Verify reads a register and compares it with the expected value. A
// mismatching value is re-read according to the reader's policy, since
// hardware counters may lag. The final outcome is recorded and returned. Only
// fatal errors are returned as errors, a mismatch is not one.
func (v *Verifier) Verify(
	ctx context.Context,
	addr regmap.Addr,
	expected regmap.Value,
) (result.Result, error) {
	if v.gate != nil {
		if err := v.gate.MustBeSettled("verify"); err != nil {
			return result.Result{}, err
		}
	}

	actual, err := v.read(ctx, addr, expected)
	if err != nil && !errors.Is(err, errMismatch) {
		return result.Result{}, err
	}

	v.seq++

	r := result.Result{
		ID:          fmt.Sprintf("register-%04d", v.seq),
		Kind:        result.Register,
		Description: v.regs.Describe(addr),
		Expected:    expected.String(),
		Actual:      actual.String(),
		Pass:        actual == expected,
	}

	if !r.Pass {
		v.logger.Info("register mismatch",
			zap.String("register", r.Description),
			zap.Stringer("expected", expected),
			zap.Stringer("actual", actual))
	}

	if err := v.results.Add(r); err != nil {
		return r, err
	}

	return r, nil
}

func (v *Verifier) read(
	ctx context.Context,
	addr regmap.Addr,
	expected regmap.Value,
) (regmap.Value, error) {
	policy := v.reader.VerifyPolicy()

	var last regmap.Value

	b := backoff.WithContext(
		backoff.WithMaxRetries(
			backoff.NewConstantBackOff(policy.Interval),
			uint64(policy.Retries)),
		ctx)

	err := backoff.Retry(func() error {
		val, err := v.reader.RegRead(ctx, addr)
		if err != nil {
			return backoff.Permanent(err)
		}

		last = val

		if val != expected {
			return errMismatch
		}

		return nil
	}, b)

	if err != nil && !errors.Is(err, errMismatch) {
		return last, fault.Classify(fault.Transport, "verify", err)
	}

	return last, err
}

// VerifyAll runs every check in order. All checks run even when some
// mismatch. It stops at the first fatal error.
func (v *Verifier) VerifyAll(ctx context.Context, checks ...Check) ([]result.Result, error) {
	out := make([]result.Result, 0, len(checks))

	for _, c := range checks {
		r, err := v.Verify(ctx, c.Addr, c.Expected)
		if err != nil {
			return out, err
		}

		out = append(out, r)
	}

	return out, nil
}
