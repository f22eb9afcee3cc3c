package repo

import "testing"

func TestLikeEscaper(t *testing.T) {
	cases := []struct{ in, want string }{
		{"loft", "loft"},
		{"100%", "100!%"},
		{"a_b", "a!_b"},
		{"wow!", "wow!!"},
		{`back\slash`, `back\slash`},
	}
	for _, c := range cases {
		if got := likeEscaper.Replace(c.in); got != c.want {
			t.Errorf("likeEscaper(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
