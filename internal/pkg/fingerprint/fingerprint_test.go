package fingerprint

import "testing"

func TestFromUserAgent(t *testing.T) {
	tests := []struct {
		name string
		ua   string
		want string
	}{
		{
			name: "firefox on windows",
			ua:   "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:121.0) Gecko/20100101 Firefox/121.0",
			want: "windows-firefox",
		},
		{
			name: "safari on mac",
			ua:   "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.1 Safari/605.1.15",
			want: "macos-safari",
		},
		{
			name: "chrome on android",
			ua:   "Mozilla/5.0 (Linux; Android 10; K) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Mobile Safari/537.36",
			want: "android-chrome",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FromUserAgent(tt.ua); got != tt.want {
				t.Fatalf("FromUserAgent() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFromUserAgent_IgnoresVersion(t *testing.T) {
	a := FromUserAgent("Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:121.0) Gecko/20100101 Firefox/121.0")
	b := FromUserAgent("Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:122.0) Gecko/20100101 Firefox/122.0")
	if a != b {
		t.Fatalf("browser update changed fingerprint: %q != %q", a, b)
	}
}
