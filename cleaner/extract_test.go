package cleaner

import (
	"testing"

	"github.com/use-agent/pricetag/models"
)

func TestExtractProduct(t *testing.T) {
	tests := []struct {
		name      string
		html      string
		wantTitle string
		wantPrice string
	}{
		{
			name:      "title and generic price",
			html:      `<span id="productTitle">Wireless Mouse</span><span class="a-offscreen">$19.99</span>`,
			wantTitle: "Wireless Mouse",
			wantPrice: "$19.99",
		},
		{
			name:      "title without price",
			html:      `<html><body><h1><span id="productTitle">  USB-C Hub  </span></h1></body></html>`,
			wantTitle: "USB-C Hub",
			wantPrice: "",
		},
		{
			name: "core price preferred over earlier generic price",
			html: `<span id="productTitle">Desk Lamp</span>
				<div id="sims"><span class="a-offscreen">$5.00</span></div>
				<div id="corePrice_feature_div"><span class="a-offscreen">$42.50</span></div>`,
			wantTitle: "Desk Lamp",
			wantPrice: "$42.50",
		},
		{
			name: "whitespace collapsed",
			html: `<span id="productTitle">
					Noise   Cancelling
					Headphones&nbsp;&nbsp;Black
				</span><span class="a-offscreen"> $ 199.00 </span>`,
			wantTitle: "Noise Cancelling Headphones Black",
			wantPrice: "$ 199.00",
		},
		{
			name: "empty generic price skipped",
			html: `<span id="productTitle">Cable</span>
				<span class="a-offscreen"> </span><span class="a-offscreen">$3.49</span>`,
			wantTitle: "Cable",
			wantPrice: "$3.49",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractProduct(tt.html)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Title != tt.wantTitle {
				t.Errorf("Title = %q, want %q", got.Title, tt.wantTitle)
			}
			if got.Price != tt.wantPrice {
				t.Errorf("Price = %q, want %q", got.Price, tt.wantPrice)
			}
		})
	}
}

func TestExtractProduct_NoTitle(t *testing.T) {
	inputs := map[string]string{
		"missing element": `<html><body><span class="a-offscreen">$19.99</span></body></html>`,
		"blank element":   `<span id="productTitle">   </span>`,
		"empty document":  ``,
		"captcha page":    `<form action="/errors/validateCaptcha"><input id="captchacharacters"></form>`,
	}

	for name, html := range inputs {
		t.Run(name, func(t *testing.T) {
			got, err := ExtractProduct(html)
			if err == nil {
				t.Fatalf("expected error, got %+v", got)
			}
			if kind := models.KindOf(err); kind != models.KindNoTitle {
				t.Errorf("kind = %q, want %q", kind, models.KindNoTitle)
			}
		})
	}
}

func TestNormalizeSpace(t *testing.T) {
	tests := []struct{ in, want string }{
		{"", ""},
		{"   ", ""},
		{"a  b\t\nc", "a b c"},
		{" x  y ", "x y"},
	}
	for _, tt := range tests {
		if got := NormalizeSpace(tt.in); got != tt.want {
			t.Errorf("NormalizeSpace(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
