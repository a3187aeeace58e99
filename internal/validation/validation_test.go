package validation

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNormalize(t *testing.T) {
	strict := NormalizeOptions{StripDiacritics: false}
	lenient := DefaultNormalizeOptions()

	tests := []struct {
		name string
		in   string
		opts NormalizeOptions
		want string
	}{
		{
			name: "trims and lowercases",
			in:   "  Hello World  ",
			opts: lenient,
			want: "hello world",
		},
		{
			name: "collapses internal whitespace",
			in:   "dzień   \t dobry",
			opts: strict,
			want: "dzień dobry",
		},
		{
			name: "strips diacritics",
			in:   "żółw",
			opts: lenient,
			want: "zolw",
		},
		{
			name: "keeps diacritics when configured",
			in:   "żółw",
			opts: strict,
			want: "żółw",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in, tt.opts); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

// countingSemantic is a SemanticClient fake that records calls.
type countingSemantic struct {
	calls   int
	result  Result
	err     error
	perCall []error // when set, errors are consumed call by call
}

func (c *countingSemantic) Validate(ctx context.Context, userAnswer, correctAnswer string, wc WordContext) (Result, error) {
	c.calls++
	if len(c.perCall) > 0 {
		err := c.perCall[0]
		c.perCall = c.perCall[1:]
		if err != nil {
			return Result{}, err
		}
		return c.result, nil
	}
	if c.err != nil {
		return Result{}, c.err
	}
	return c.result, nil
}

func TestValidateFastPathSkipsRemote(t *testing.T) {
	sem := &countingSemantic{}
	v := NewValidator(sem, DefaultNormalizeOptions(), time.Second)

	variants := []string{"cześć", "czesc", "  CZESC ", "Cześć"}
	for _, variant := range variants {
		res := v.Validate(context.Background(), variant, "cześć", WordContext{})
		if !res.Accepted {
			t.Errorf("Validate(%q) not accepted", variant)
		}
	}
	if sem.calls != 0 {
		t.Errorf("remote called %d times on exact matches, want 0", sem.calls)
	}
}

func TestValidateUsesSemanticVerdict(t *testing.T) {
	sem := &countingSemantic{result: Result{Accepted: true, Explanation: "Valid synonym"}}
	v := NewValidator(sem, DefaultNormalizeOptions(), time.Second)

	res := v.Validate(context.Background(), "hi", "hello", WordContext{})
	if !res.Accepted || res.Explanation != "Valid synonym" {
		t.Errorf("Validate() = %+v, want semantic verdict", res)
	}
	if sem.calls != 1 {
		t.Errorf("remote calls = %d, want 1", sem.calls)
	}
}

func TestValidateRateLimitThenBasicOnly(t *testing.T) {
	// Attempts 1-2 use the remote result, attempt 3 hits the limit,
	// attempts 4+ after consent use exact match with zero remote calls.
	sem := &countingSemantic{
		result:  Result{Accepted: true, Explanation: "Close enough"},
		perCall: []error{nil, nil, ErrRateLimited},
	}
	v := NewValidator(sem, DefaultNormalizeOptions(), time.Second)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		res := v.Validate(ctx, "wrongish", "right", WordContext{})
		if !res.Accepted {
			t.Fatalf("attempt %d: want remote accept", i+1)
		}
	}

	res := v.Validate(ctx, "wrongish", "right", WordContext{})
	if !res.RateLimited {
		t.Fatalf("attempt 3: want RateLimited, got %+v", res)
	}

	// User opts into basic-only.
	v.UseBasicOnly()

	for i := 0; i < 3; i++ {
		res := v.Validate(ctx, "wrongish", "right", WordContext{})
		if res.Accepted || res.RateLimited {
			t.Errorf("basic-only attempt: got %+v, want plain rejection", res)
		}
	}
	if sem.calls != 3 {
		t.Errorf("remote calls = %d, want 3 (none after consent)", sem.calls)
	}
}

func TestValidateFailsOpenOnTransportError(t *testing.T) {
	sem := &countingSemantic{err: errors.New("connection refused")}
	v := NewValidator(sem, DefaultNormalizeOptions(), time.Second)

	res := v.Validate(context.Background(), "wrong", "right", WordContext{})
	if res.Accepted {
		t.Error("transport error must fall back to the exact-match verdict")
	}
	if res.RateLimited {
		t.Error("transport error is not a rate limit")
	}

	// The validator keeps trying the remote on later answers; only a
	// rate limit plus consent switches it off.
	v.Validate(context.Background(), "wrong", "right", WordContext{})
	if sem.calls != 2 {
		t.Errorf("remote calls = %d, want 2", sem.calls)
	}
}

func TestValidateNilSemanticClient(t *testing.T) {
	v := NewValidator(nil, DefaultNormalizeOptions(), time.Second)

	res := v.Validate(context.Background(), "hola", "hola", WordContext{})
	if !res.Accepted {
		t.Error("exact match should pass without a semantic client")
	}
	res = v.Validate(context.Background(), "hola", "adios", WordContext{})
	if res.Accepted {
		t.Error("mismatch should fail without a semantic client")
	}
}

// slowSemantic blocks until the context is done.
type slowSemantic struct{}

func (slowSemantic) Validate(ctx context.Context, _, _ string, _ WordContext) (Result, error) {
	<-ctx.Done()
	return Result{}, ctx.Err()
}

func TestValidateTimeoutFailsOpen(t *testing.T) {
	v := NewValidator(slowSemantic{}, DefaultNormalizeOptions(), 10*time.Millisecond)

	start := time.Now()
	res := v.Validate(context.Background(), "wrong", "right", WordContext{})
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("validation blocked for %s, timeout not enforced", elapsed)
	}
	if res.Accepted || res.RateLimited {
		t.Errorf("timeout should fail open to rejection, got %+v", res)
	}
}
