package fincaraiz

import (
	"fmt"
	"strings"
)

type testCard struct {
	Href        string
	Heading     string
	Price       string
	Features    string
	Image       string
	Description string
}

func cardHTML(c testCard) string {
	var b strings.Builder
	b.WriteString(`<div class="listingCard">`)
	if c.Image != "" {
		fmt.Fprintf(&b, `<div class="lc-cardCover"><img class="card-image-gallery--img" src="%s"></div>`, c.Image)
	}
	fmt.Fprintf(&b, `<a class="lc-data" href="%s">`, c.Href)
	if c.Price != "" {
		fmt.Fprintf(&b, `<div class="lc-price"><strong>%s</strong></div>`, c.Price)
	}
	if c.Features != "" {
		fmt.Fprintf(&b, `<div class="lc-typologyTag"><span>%s</span></div>`, c.Features)
	}
	if c.Heading != "" {
		fmt.Fprintf(&b, `<h2 class="lc-title">%s</h2>`, c.Heading)
	}
	if c.Description != "" {
		fmt.Fprintf(&b, `<div class="lc-description">%s</div>`, c.Description)
	}
	b.WriteString(`</a></div>`)
	return b.String()
}

func pageHTML(cards ...testCard) string {
	var b strings.Builder
	b.WriteString(`<html><body><div id="listingContainer">`)
	for _, c := range cards {
		b.WriteString(cardHTML(c))
	}
	b.WriteString(`</div></body></html>`)
	return b.String()
}
