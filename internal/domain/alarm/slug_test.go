package alarm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestSlugify verifies separator collapsing, trimming and lowercasing,
// including non-ASCII letters.
func TestSlugify(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"Andrzej":          "andrzej",
		"Anna Maria":       "anna_maria",
		"  John  Doe!  ":   "john_doe",
		"Łukasz":           "łukasz",
		"a--b..c":          "a_b_c",
		"***":              "",
		"already_a_slug":   "already_a_slug",
		"Numer 2 (gościa)": "numer_2_gościa",
	}
	for input, want := range cases {
		require.Equal(t, want, Slugify(input), input)
	}
}
