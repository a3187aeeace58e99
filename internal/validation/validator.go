package validation

import (
	"context"
	"errors"
	"log"
	"time"
)

// ErrRateLimited signals that the semantic service refused the call
// because the caller is over quota. Recoverable: the session can
// continue on exact-match only.
var ErrRateLimited = errors.New("semantic validation rate limited")

// Result is the verdict for one answer.
type Result struct {
	Accepted    bool   `json:"accepted"`
	Explanation string `json:"explanation,omitempty"`
	RateLimited bool   `json:"rateLimited,omitempty"`
}

// WordContext carries the surrounding information the semantic
// service uses to judge near-correct answers.
type WordContext struct {
	TargetWord     string `json:"targetWord,omitempty"`
	WordType       string `json:"wordType,omitempty"`
	TargetLanguage string `json:"targetLanguage,omitempty"`
	NativeLanguage string `json:"nativeLanguage,omitempty"`
}

// SemanticClient is the remote semantic-validation collaborator. It
// must honor the context deadline and return ErrRateLimited on a
// throttle response. No retry loops.
type SemanticClient interface {
	Validate(ctx context.Context, userAnswer, correctAnswer string, wc WordContext) (Result, error)
}

// Validator grades a learner's answer, preferring a free exact match
// and opportunistically deferring to the semantic service. It degrades
// to basic-only validation for the remainder of a session once the
// caller opts in after a rate limit.
type Validator struct {
	semantic  SemanticClient
	opts      NormalizeOptions
	timeout   time.Duration
	basicOnly bool
}

// NewValidator creates a validator. semantic may be nil, in which case
// every answer is graded by exact match only.
func NewValidator(semantic SemanticClient, opts NormalizeOptions, timeout time.Duration) *Validator {
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	return &Validator{semantic: semantic, opts: opts, timeout: timeout}
}

// UseBasicOnly permanently disables remote validation for this
// validator's lifetime. Called after the user consents to continuing
// on exact-match when the limit notice is shown.
func (v *Validator) UseBasicOnly() {
	v.basicOnly = true
}

// BasicOnly reports whether remote validation has been switched off.
func (v *Validator) BasicOnly() bool {
	return v.basicOnly
}

// Validate grades userAnswer against correctAnswer.
//
// The exact-match fast path costs nothing and short-circuits the
// remote call. When the strings differ and smart validation is still
// available, the semantic service gets one bounded attempt: a
// throttle response surfaces as RateLimited, any other failure fails
// open to the exact-match verdict already computed. The caller is
// never blocked past the configured timeout.
func (v *Validator) Validate(ctx context.Context, userAnswer, correctAnswer string, wc WordContext) Result {
	if Equivalent(userAnswer, correctAnswer, v.opts) {
		return Result{Accepted: true, Explanation: "Exact match"}
	}

	if v.semantic == nil || v.basicOnly {
		return Result{Accepted: false, Explanation: "No match"}
	}

	callCtx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	res, err := v.semantic.Validate(callCtx, userAnswer, correctAnswer, wc)
	if err != nil {
		if errors.Is(err, ErrRateLimited) {
			return Result{Accepted: false, RateLimited: true}
		}
		// Transport error or malformed response: fall back to the
		// exact-match verdict. Logged, not surfaced.
		log.Printf("semantic validation failed, using exact match: %v", err)
		return Result{Accepted: false, Explanation: "No match"}
	}
	return res
}
