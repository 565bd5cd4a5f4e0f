package widget

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRenderHTML(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "hello", "hello"},
		{"bold", "📧 **Email:** a@b.co", "📧 <strong>Email:</strong> a@b.co"},
		{"newlines", "one\ntwo\r\nthree", "one<br>two<br>three"},
		{"escapes markup", "<script>alert(1)</script>", "&lt;script&gt;alert(1)&lt;/script&gt;"},
		{"escapes inside bold", "**<b>x</b>**", "<strong>&lt;b&gt;x&lt;/b&gt;</strong>"},
		{"unmatched bold", "**open", "**open"},
		{"quotes", `say "hi" & 'bye'`, "say &#34;hi&#34; &amp; &#39;bye&#39;"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, RenderHTML(tc.in))
		})
	}
}

func TestIcon(t *testing.T) {
	require.Equal(t, "code", Icon("technical"))
	require.Equal(t, "zap", Icon("projects"))
	require.Equal(t, "mail", Icon("contact"))
	require.Equal(t, "message-circle", Icon("other"))
}
