package providers

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError(t *testing.T) {
	t.Run("Message Formatting", func(t *testing.T) {
		err := NewError(ErrCodeConfig, "API key is required")
		assert.Equal(t, "[config_error] API key is required", err.Error())

		wrapped := WrapError(ErrCodeNetwork, "failed to reach API", errors.New("connection refused"))
		assert.Equal(t, "[network_error] failed to reach API: connection refused", wrapped.Error())
	})

	t.Run("Unwrap Preserves Cause", func(t *testing.T) {
		cause := errors.New("root cause")
		err := WrapError(ErrCodeAPI, "call failed", cause)
		assert.ErrorIs(t, err, cause)
	})

	t.Run("CodeOf Sees Through Wrapping", func(t *testing.T) {
		err := fmt.Errorf("outer layer: %w", NewError(ErrCodeTimeout, "took too long"))
		assert.Equal(t, ErrCodeTimeout, CodeOf(err))
		assert.True(t, IsTimeout(err))
		assert.False(t, IsUnavailable(err))
	})

	t.Run("CodeOf Foreign Error", func(t *testing.T) {
		assert.Equal(t, "", CodeOf(errors.New("plain")))
		assert.Equal(t, "", CodeOf(nil))
	})

	t.Run("Retryable Classification", func(t *testing.T) {
		assert.True(t, NewError(ErrCodeTimeout, "").IsRetryable())
		assert.True(t, NewError(ErrCodeNetwork, "").IsRetryable())
		assert.True(t, NewError(ErrCodeUnavailable, "").IsRetryable())
		assert.False(t, NewError(ErrCodeConfig, "").IsRetryable())
		assert.False(t, NewError(ErrCodeEmptyResult, "").IsRetryable())
		assert.False(t, NewError(ErrCodeAPI, "").IsRetryable())
	})
}

func TestArticleType(t *testing.T) {
	assert.True(t, ArticleTech.Valid())
	assert.True(t, ArticleInsurance.Valid())
	assert.False(t, ArticleType("news").Valid())
	assert.False(t, ArticleType("").Valid())
}
