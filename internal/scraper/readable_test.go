package scraper

import (
	"strings"
	"testing"
)

func TestExtractReadableText(t *testing.T) {
	tests := []struct {
		name     string
		html     string
		want     []string // lines expected in order
		excluded []string
	}{
		{
			name: "blocks become lines",
			html: `<div><h2>Progol   Jornada 15</h2><p>Bolsa: <b>$50,000,000</b></p></div>`,
			want: []string{"Progol Jornada 15", "Bolsa: $50,000,000"},
		},
		{
			name:     "scripts and styles are dropped",
			html:     `<head><title>Ignored</title><style>p{}</style></head><body><script>var a = "Ajax vs PSV";</script><p>Visible</p></body>`,
			want:     []string{"Visible"},
			excluded: []string{"Ajax", "Ignored", "p{}"},
		},
		{
			name: "table cells share a line",
			html: `<table><tr><td>1</td><td>América</td><td>vs</td><td>Chivas</td></tr></table>`,
			want: []string{"1 América vs Chivas"},
		},
		{
			name: "entities are decoded",
			html: `<p>Premio &amp; bolsa&nbsp;acumulada</p>`,
			want: []string{"Premio & bolsa acumulada"},
		},
		{
			name:     "head without an end tag",
			html:     "<html><head><title>Progol</title>\n<body><p>Bolsa: $50,000,000</p><p>Jornada 2301</p><p>Domingo 19 de Octubre</p>",
			want:     []string{"Bolsa: $50,000,000", "Jornada 2301", "Domingo 19 de Octubre"},
			excluded: []string{"Progol"},
		},
		{
			name: "plain text passes through",
			html: "Domingo 19 de Octubre\n\n  Bolsa: $1,000  ",
			want: []string{"Domingo 19 de Octubre", "Bolsa: $1,000"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractReadableText(tt.html)
			lines := strings.Split(got, "\n")

			if len(lines) != len(tt.want) {
				t.Fatalf("ExtractReadableText() = %q, want lines %q", got, tt.want)
			}
			for i := range tt.want {
				if lines[i] != tt.want[i] {
					t.Errorf("line %d = %q, want %q", i, lines[i], tt.want[i])
				}
			}
			for _, ex := range tt.excluded {
				if strings.Contains(got, ex) {
					t.Errorf("ExtractReadableText() = %q, should not contain %q", got, ex)
				}
			}
		})
	}
}
