package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

type leakyErr struct{}

func (leakyErr) Error() string  { return "pq: relation orders does not exist" }
func (leakyErr) Kind() Kind     { return KindInternal }
func (leakyErr) Public() string { return "could not place order" }

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, KindInternal},
		{"plain", errors.New("boom"), KindInternal},
		{"validation", Validation("days must be positive"), KindValidation},
		{"wrapped forbidden", fmt.Errorf("promote: %w", ErrForbidden), KindForbidden},
		{"unauthorized", ErrUnauthorized, KindUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestPublicMessage(t *testing.T) {
	require.Equal(t, "internal server error", PublicMessage(errors.New("dial tcp: refused")))
	require.Equal(t, "could not place order", PublicMessage(fmt.Errorf("wrap: %w", leakyErr{})))
	require.Equal(t, "days must be positive", PublicMessage(Validation("days must be positive")))
}

type stockErr struct{}

func (stockErr) Error() string { return "not enough stock for \"Clay vase\"" }
func (stockErr) Kind() Kind    { return KindBusinessRule }

func TestPublicMessageDropsWrapContext(t *testing.T) {
	require.Equal(t, "you do not have access to this resource",
		PublicMessage(fmt.Errorf("promote: %w", ErrForbidden)))
	require.Equal(t, "resource not found",
		PublicMessage(fmt.Errorf("load product 42: %w", fmt.Errorf("query: %w", ErrNotFound))))
	require.Equal(t, `not enough stock for "Clay vase"`,
		PublicMessage(fmt.Errorf("place order: %w", stockErr{})))
}
