package validate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/involex/involex/pkg/types"
)

func sampleDraft() *types.EmailDraft {
	return &types.EmailDraft{
		Body:             "Please review the attached contract terms for the Smith deal",
		RecipientAddress: "client@example.com",
		SenderAddress:    "lawyer@example.com",
		Subject:          "Smith Contract",
	}
}

func TestValidate_AcceptsSampleDraft(t *testing.T) {
	v := NewValidator(0)

	vd, err := v.Validate(sampleDraft())
	require.NoError(t, err)
	assert.Equal(t, "Smith Contract", vd.Subject)
	assert.NotEmpty(t, vd.Fingerprint)
}

func TestValidate_RejectsShortBody(t *testing.T) {
	v := NewValidator(0)

	d := sampleDraft()
	d.Body = "abc"
	_, err := v.Validate(d)
	assert.ErrorIs(t, err, types.ErrValidationFailed)
}

func TestValidate_AddressGrammar(t *testing.T) {
	v := NewValidator(0)

	cases := []struct {
		name      string
		recipient string
		sender    string
		valid     bool
	}{
		{"plain", "a@b.com", "c@d.org", true},
		{"subaddress", "a+tag@b.co.uk", "c@d.org", true},
		{"no at", "nobody", "c@d.org", false},
		{"no tld", "a@b", "c@d.org", false},
		{"bad sender", "a@b.com", "not-an-address", false},
		{"empty recipient", "", "c@d.org", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := sampleDraft()
			d.RecipientAddress = tc.recipient
			d.SenderAddress = tc.sender
			_, err := v.Validate(d)
			if tc.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, types.ErrValidationFailed)
			}
		})
	}
}

func TestValidate_SubjectPlaceholder(t *testing.T) {
	v := NewValidator(0)

	d := sampleDraft()
	d.Subject = ""
	vd, err := v.Validate(d)
	require.NoError(t, err)
	assert.Equal(t, SubjectPlaceholder, vd.Subject)
	// caller's draft untouched
	assert.Equal(t, "", d.Subject)
}

func TestValidate_MinLengthConfigurable(t *testing.T) {
	v := NewValidator(100)

	_, err := v.Validate(sampleDraft())
	assert.ErrorIs(t, err, types.ErrValidationFailed)
}

func TestFingerprint_Deterministic(t *testing.T) {
	d1 := sampleDraft()
	d2 := sampleDraft()
	assert.Equal(t, Fingerprint(d1), Fingerprint(d2))
}

func TestFingerprint_OnlyFirst50RunesOfBody(t *testing.T) {
	prefix := strings.Repeat("x", 50)

	d1 := sampleDraft()
	d1.Body = prefix + " trailing content one"
	d2 := sampleDraft()
	d2.Body = prefix + " completely different tail"

	assert.Equal(t, Fingerprint(d1), Fingerprint(d2))

	d3 := sampleDraft()
	d3.Body = "y" + prefix
	assert.NotEqual(t, Fingerprint(d1), Fingerprint(d3))
}

func TestFingerprint_SensitiveToRecipientAndSubject(t *testing.T) {
	base := sampleDraft()

	d := sampleDraft()
	d.RecipientAddress = "other@example.com"
	assert.NotEqual(t, Fingerprint(base), Fingerprint(d))

	d = sampleDraft()
	d.Subject = "Other Subject"
	assert.NotEqual(t, Fingerprint(base), Fingerprint(d))
}

func TestFingerprint_MultibyteBoundary(t *testing.T) {
	d := sampleDraft()
	d.Body = strings.Repeat("é", 60)
	// must not slice mid-rune
	assert.NotPanics(t, func() { Fingerprint(d) })
}
