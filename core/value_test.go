package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStr(t *testing.T) {
	assert.Equal(t, "", Str(nil))
	assert.Equal(t, "hi", Str("hi"))
	assert.Equal(t, "3", Str(float64(3)))
	assert.Equal(t, "3.5", Str(3.5))
	assert.Equal(t, "true", Str(true))
}

func TestTruthy(t *testing.T) {
	falsy := []any{nil, false, "", 0, int64(0), float64(0), []any{}, []string{}, map[string]any{}}
	for _, v := range falsy {
		assert.False(t, Truthy(v), "expected %#v to be falsy", v)
	}

	truthy := []any{true, "x", 1, int64(2), 0.1, []any{1}, []string{"a"}, map[string]any{"k": 1}, struct{}{}}
	for _, v := range truthy {
		assert.True(t, Truthy(v), "expected %#v to be truthy", v)
	}
}

func TestStrSlice(t *testing.T) {
	assert.Nil(t, StrSlice(nil))
	assert.Equal(t, []string{"a"}, StrSlice("a"))
	assert.Equal(t, []string{"a", "b"}, StrSlice([]string{"a", "b"}))
	assert.Equal(t, []string{"a", "2"}, StrSlice([]any{"a", float64(2)}))
	assert.Equal(t, []string{"7"}, StrSlice(7))
}

func TestCircuitError(t *testing.T) {
	base := errors.New("boom")
	err := NewCircuitError("engine.run", "n1", base)

	assert.Contains(t, err.Error(), "engine.run")
	assert.Contains(t, err.Error(), "n1")
	assert.True(t, errors.Is(err, base))

	withCtx := WithContext(err, "provider", "openai")
	assert.Equal(t, "openai", withCtx.Context["provider"])
}
