package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	err := NotFound("post %s not found", "p1")
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.Equal(t, "post p1 not found", err.Error())

	assert.Equal(t, KindUnknown, KindOf(errors.New("plain")))
	assert.Equal(t, KindUnknown, KindOf(nil))
}

func TestKindOf_Wrapped(t *testing.T) {
	err := fmt.Errorf("handler: %w", PolicyViolation("server daily post limit reached"))
	assert.True(t, Is(err, KindPolicyViolation))
	assert.False(t, Is(err, KindNotFound))
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "policy_violation", KindPolicyViolation.String())
	assert.Equal(t, "blocked", KindBlocked.String())
	assert.Equal(t, "unknown", KindUnknown.String())
}
