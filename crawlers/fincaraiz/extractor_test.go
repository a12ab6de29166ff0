package fincaraiz

import (
	"net/url"
	"strings"
	"testing"

	"github.com/LexiconIndonesia/property-scraper-service/common/models"
	"github.com/PuerkitoBio/goquery"
	"github.com/samber/mo"
)

func TestExtractPrice(t *testing.T) {
	tests := []struct {
		name string
		text string
		want mo.Option[float64]
	}{
		{"thousands separators", "$ 350.000.000 COP", mo.Some(350000000.0)},
		{"no space", "$1.250.000", mo.Some(1250000.0)},
		{"trailing period", "$ 350.000.", mo.Some(350000.0)},
		{"comma separator", "$ 1,500", mo.None[float64]()},
		{"decimal comma", "$ 1.500,5", mo.None[float64]()},
		{"embedded", "Precio: $ 420.000.000 negociable", mo.Some(420000000.0)},
		{"no marker", "350.000.000", mo.None[float64]()},
		{"empty", "", mo.None[float64]()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractPrice(tt.text); got != tt.want {
				t.Errorf("ExtractPrice(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestExtractRoomsAndBathrooms(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		rooms     mo.Option[int32]
		bathrooms mo.Option[int32]
	}{
		{"both", "3 Habs | 2 Baños", mo.Some[int32](3), mo.Some[int32](2)},
		{"singular", "1 Hab 1 Baño", mo.Some[int32](1), mo.Some[int32](1)},
		{"case insensitive", "4 HABS 3 baños", mo.Some[int32](4), mo.Some[int32](3)},
		{"rooms only", "2 Habs", mo.Some[int32](2), mo.None[int32]()},
		{"none", "Lote de terreno", mo.None[int32](), mo.None[int32]()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractRooms(tt.text); got != tt.rooms {
				t.Errorf("ExtractRooms(%q) = %v, want %v", tt.text, got, tt.rooms)
			}
			if got := ExtractBathrooms(tt.text); got != tt.bathrooms {
				t.Errorf("ExtractBathrooms(%q) = %v, want %v", tt.text, got, tt.bathrooms)
			}
		})
	}
}

func TestExtractSurface(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		surface mo.Option[float64]
		unit    mo.Option[string]
	}{
		{"integer", "85 m²", mo.Some(85.0), mo.Some("m²")},
		{"decimal comma", "85,5 m²", mo.Some(85.5), mo.Some("m²")},
		{"decimal point", "120.75m²", mo.Some(120.75), mo.Some("m²")},
		{"missing", "sin información", mo.None[float64](), mo.None[string]()},
		{"other unit", "85 ha", mo.None[float64](), mo.None[string]()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			surface, unit := ExtractSurface(tt.text)
			if surface != tt.surface || unit != tt.unit {
				t.Errorf("ExtractSurface(%q) = (%v, %v), want (%v, %v)", tt.text, surface, unit, tt.surface, tt.unit)
			}
		})
	}
}

func TestExtractPropertyType(t *testing.T) {
	tests := []struct {
		heading string
		want    mo.Option[string]
	}{
		{"Casa en Venta en Bogota", mo.Some("Casa")},
		{"Apartamento en Chapinero", mo.Some("Apartamento")},
		{" en Venta", mo.None[string]()},
		{"Casa", mo.None[string]()},
		{"", mo.None[string]()},
	}

	for _, tt := range tests {
		t.Run(tt.heading, func(t *testing.T) {
			if got := ExtractPropertyType(tt.heading); got != tt.want {
				t.Errorf("ExtractPropertyType(%q) = %v, want %v", tt.heading, got, tt.want)
			}
		})
	}
}

func TestBuildTitle(t *testing.T) {
	tests := []struct {
		name         string
		propertyType mo.Option[string]
		city         string
		surface      mo.Option[float64]
		unit         mo.Option[string]
		want         string
	}{
		{"full", mo.Some("Casa"), "bogota", mo.Some(85.0), mo.Some("m²"), "Casa en Bogota - 85 m²"},
		{"decimal surface", mo.Some("Apartamento"), "Medellin", mo.Some(72.5), mo.Some("m²"), "Apartamento en Medellin - 72.5 m²"},
		{"no type", mo.None[string](), "BOGOTA", mo.None[float64](), mo.None[string](), "Bogota en Bogota"},
		{"no unit", mo.Some("Lote"), "cali", mo.Some(300.0), mo.None[string](), "Lote en Cali - 300 m²"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BuildTitle(tt.propertyType, tt.city, tt.surface, tt.unit); got != tt.want {
				t.Errorf("BuildTitle() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolveURL(t *testing.T) {
	base, _ := url.Parse("https://www.fincaraiz.com.co")

	tests := []struct {
		href string
		want string
		ok   bool
	}{
		{"/inmueble/casa-123", "https://www.fincaraiz.com.co/inmueble/casa-123", true},
		{"https://www.fincaraiz.com.co/inmueble/apto-9", "https://www.fincaraiz.com.co/inmueble/apto-9", true},
		{"https://cdn.example.com/img.jpg", "https://cdn.example.com/img.jpg", true},
		{"", "", false},
		{"   ", "", false},
		{"#", "", false},
		{"/", "", false},
		{"https://www.fincaraiz.com.co", "", false},
		{"https://www.fincaraiz.com.co/", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.href, func(t *testing.T) {
			got, ok := ResolveURL(base, tt.href)
			if got != tt.want || ok != tt.ok {
				t.Errorf("ResolveURL(%q) = (%q, %v), want (%q, %v)", tt.href, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestCapitalize(t *testing.T) {
	tests := map[string]string{
		"bogota":    "Bogota",
		"CHAPINERO": "Chapinero",
		"":          "",
		"ñuñoa":     "Ñuñoa",
	}
	for in, want := range tests {
		if got := Capitalize(in); got != want {
			t.Errorf("Capitalize(%q) = %q, want %q", in, got, want)
		}
	}
}

func parse(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parse html: %v", err)
	}
	return doc
}

func TestExtractListings(t *testing.T) {
	e, err := NewExtractor("https://www.fincaraiz.com.co")
	if err != nil {
		t.Fatalf("NewExtractor() error = %v", err)
	}

	doc := parse(t, pageHTML(
		testCard{
			Href:        "/inmueble/casa-en-venta/chapinero/bogota/101",
			Heading:     "Casa en Venta en Bogota",
			Price:       "$ 350.000.000",
			Features:    "3 Habs | 2 Baños | 85 m²",
			Image:       "https://images.fincaraiz.com.co/101.jpg",
			Description: "<p>Casa <strong>amplia</strong> con patio</p>",
		},
		testCard{Href: "https://www.fincaraiz.com.co/"},
		testCard{
			Href:     "/inmueble/apartamento/202",
			Features: "sin información",
			Image:    "data:image/gif;base64,R0lGOD",
		},
	))

	listings := e.ExtractListings(doc, "bogota", "chapinero")
	if len(listings) != 2 {
		t.Fatalf("ExtractListings() returned %d listings, want 2", len(listings))
	}

	first := listings[0]
	if first.URL != "https://www.fincaraiz.com.co/inmueble/casa-en-venta/chapinero/bogota/101" {
		t.Errorf("URL = %q", first.URL)
	}
	if first.Title != "Casa en Bogota - 85 m²" {
		t.Errorf("Title = %q", first.Title)
	}
	if first.Price != mo.Some(350000000.0) {
		t.Errorf("Price = %v", first.Price)
	}
	if first.Rooms != mo.Some[int32](3) || first.Bathrooms != mo.Some[int32](2) {
		t.Errorf("Rooms/Bathrooms = %v/%v", first.Rooms, first.Bathrooms)
	}
	if first.SurfaceUnit != mo.Some(models.DefaultSurfaceUnit) {
		t.Errorf("SurfaceUnit = %v", first.SurfaceUnit)
	}
	if first.City != "Bogota" || first.Region != "Chapinero" {
		t.Errorf("City/Region = %q/%q", first.City, first.Region)
	}
	if first.PropertyType != mo.Some("Casa") {
		t.Errorf("PropertyType = %v", first.PropertyType)
	}
	if d, ok := first.Description.Get(); !ok || !strings.Contains(d, "**amplia**") {
		t.Errorf("Description = %v, want markdown with bold text", first.Description)
	}
	if len(first.ImageURLs) != 1 || first.ImageURLs[0] != "https://images.fincaraiz.com.co/101.jpg" {
		t.Errorf("ImageURLs = %v", first.ImageURLs)
	}

	second := listings[1]
	if second.Title != "Bogota en Bogota" {
		t.Errorf("Title = %q", second.Title)
	}
	if second.Price.IsPresent() || second.Surface.IsPresent() || second.Rooms.IsPresent() {
		t.Errorf("expected absent fields, got price=%v surface=%v rooms=%v", second.Price, second.Surface, second.Rooms)
	}
	if len(second.ImageURLs) != 0 {
		t.Errorf("ImageURLs = %v, want none", second.ImageURLs)
	}
	if second.Description.IsPresent() {
		t.Errorf("Description = %v, want none", second.Description)
	}
}

func TestNewExtractorRejectsRelativeBase(t *testing.T) {
	if _, err := NewExtractor("/relative"); err == nil {
		t.Fatal("NewExtractor() expected error for relative base url")
	}
}
