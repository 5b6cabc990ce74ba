package markup

import "testing"

func TestToText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "no markup here", "no markup here"},
		{"entities", "can&#39;t mount &amp; fsck", "can't mount & fsck"},
		{"inline", "<p>use <code>df -h</code> first</p>", "use df -h first"},
		{"paragraphs", "<p>one</p><p>two</p>", "one\ntwo"},
		{"script dropped", "<p>keep</p><script>alert(1)</script>", "keep"},
		{"list", "<ul><li>a</li><li>b</li></ul>", "a\nb"},
		{"pre keeps lines", "<pre><code>line1\nline2\n</code></pre>", "line1\nline2"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ToText(tt.in); got != tt.want {
				t.Errorf("ToText(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
