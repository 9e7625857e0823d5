package flow

import (
	"testing"

	"github.com/aretw0/lantern/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestSanitizeWish(t *testing.T) {
	tests := []struct {
		in   string
		want string
		err  error
	}{
		{in: "  Happy New Year \n", want: "Happy New Year"},
		{in: "Peace\x1b[31m and health\x00", want: "Peace[31m and health"},
		{in: "line one\nline two", want: "line one\nline two"},
		{in: "\x07\x07", want: ""},
		{in: "bad \xff byte", err: domain.ErrInvalidWishText},
	}
	for _, tt := range tests {
		got, err := sanitizeWish(tt.in)
		if tt.err != nil {
			assert.ErrorIs(t, err, tt.err)
			continue
		}
		assert.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}
