package telegramutil

import "testing"

func TestEscapeMarkdownUnderscores(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   string
		want string
	}{
		{"no underscores", "hello world", "hello world"},
		{"plain underscore", "tx_hash", "tx\\_hash"},
		{"already escaped", "tx\\_hash", "tx\\_hash"},
		{"inline code preserved", "use `tx_hash` here_", "use `tx_hash` here\\_"},
		{"code block preserved", "```\nsnake_case\n```", "```\nsnake_case\n```"},
		{"multiple", "a_b_c", "a\\_b\\_c"},
	}
	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()
			if got := EscapeMarkdownUnderscores(c.in); got != c.want {
				t.Fatalf("EscapeMarkdownUnderscores(%q) = %q, want %q", c.in, got, c.want)
			}
		})
	}
}
