package taxid

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	cases := []struct {
		in    string
		valid bool
	}{
		{"11.222.333/0001-81", true},
		{"11222333000181", true},
		{"11.222.333/0001-82", false},
		{"529.982.247-25", true},
		{"52998224726", false},
		{"111.111.111-11", false},
		{"00000000000000", false},
		{"123", false},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			err := Validate(tc.in)
			if tc.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestFormatYNormalize(t *testing.T) {
	assert.Equal(t, "11222333000181", Normalize("11.222.333/0001-81"))
	assert.Equal(t, "11.222.333/0001-81", Format("11222333000181"))
	assert.Equal(t, "529.982.247-25", Format("52998224725"))
	assert.Equal(t, "abc", Format("abc"))
}
