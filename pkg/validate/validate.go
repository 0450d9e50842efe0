// Package validate gates extracted drafts and derives their dedup
// fingerprints.
package validate

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"

	"github.com/involex/involex/pkg/types"
)

const (
	// DefaultMinContentLength is the minimum body length when the config
	// does not override it.
	DefaultMinContentLength = 10

	// SubjectPlaceholder is substituted for an empty subject. A missing
	// subject does not invalidate a draft.
	SubjectPlaceholder = "(no subject)"

	// fingerprintBodyRunes is how much of the body participates in the
	// fingerprint.
	fingerprintBodyRunes = 50
)

// addressPattern is the accepted email-address grammar for both sender and
// recipient.
var addressPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Validator enforces minimum-quality rules on extracted drafts.
type Validator struct {
	minContentLength int
}

func NewValidator(minContentLength int) *Validator {
	if minContentLength <= 0 {
		minContentLength = DefaultMinContentLength
	}
	return &Validator{minContentLength: minContentLength}
}

// Validate checks the draft and returns it with its fingerprint. A nil error
// means the draft may be submitted. The returned draft carries the subject
// placeholder when the original subject was empty; the caller's draft is not
// mutated.
func (v *Validator) Validate(draft *types.EmailDraft) (*types.ValidatedDraft, error) {
	if draft == nil {
		return nil, types.ErrValidationFailed
	}
	if len(draft.Body) <= v.minContentLength {
		return nil, fmt.Errorf("%w: body too short (%d chars)", types.ErrValidationFailed, len(draft.Body))
	}
	if !addressPattern.MatchString(draft.RecipientAddress) {
		return nil, fmt.Errorf("%w: bad recipient %q", types.ErrValidationFailed, draft.RecipientAddress)
	}
	if !addressPattern.MatchString(draft.SenderAddress) {
		return nil, fmt.Errorf("%w: bad sender %q", types.ErrValidationFailed, draft.SenderAddress)
	}

	out := *draft
	if out.Subject == "" {
		out.Subject = SubjectPlaceholder
	}

	return &types.ValidatedDraft{
		EmailDraft:  out,
		Fingerprint: Fingerprint(&out),
	}, nil
}

// Fingerprint derives the dedup key: a pure function of the recipient, the
// subject, and the first 50 runes of the body. Equal inputs always produce
// equal fingerprints.
func Fingerprint(draft *types.EmailDraft) string {
	body := draft.Body
	if runes := []rune(body); len(runes) > fingerprintBodyRunes {
		body = string(runes[:fingerprintBodyRunes])
	}

	h := sha256.New()
	fmt.Fprintf(h, "%s\n%s\n%s", draft.RecipientAddress, draft.Subject, body)
	return hex.EncodeToString(h.Sum(nil))
}
