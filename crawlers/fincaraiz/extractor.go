package fincaraiz

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	md "github.com/JohannesKaufmann/html-to-markdown"
	mdp "github.com/JohannesKaufmann/html-to-markdown/plugin"
	"github.com/LexiconIndonesia/property-scraper-service/common/models"
	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"github.com/samber/mo"
)

// Markup markers of the results page.
const (
	CardSelector        = "div.listingCard"
	linkSelector        = "a.lc-data"
	imageSelector       = "img.card-image-gallery--img, .lc-cardCover img"
	descriptionSelector = ".lc-description"
	titleCandidates     = ".lc-title, h1, h2, h3, span, div, p"
)

var (
	priceRe     = regexp.MustCompile(`\$\s*([\d.,]+)`)
	roomsRe     = regexp.MustCompile(`(?i)(\d+)\s*Hab`)
	bathroomsRe = regexp.MustCompile(`(?i)(\d+)\s*Baño`)
	surfaceRe   = regexp.MustCompile(`(\d+(?:[.,]\d+)?)\s*m²`)
)

// ExtractPrice reads "$ 350.000.000" style amounts. Periods are thousands
// separators; any other punctuation makes the amount unreadable.
func ExtractPrice(text string) mo.Option[float64] {
	m := priceRe.FindStringSubmatch(text)
	if m == nil {
		return mo.None[float64]()
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ".", ""), 64)
	if err != nil {
		return mo.None[float64]()
	}
	return mo.Some(v)
}

func ExtractRooms(text string) mo.Option[int32] {
	return leadingInt(roomsRe, text)
}

func ExtractBathrooms(text string) mo.Option[int32] {
	return leadingInt(bathroomsRe, text)
}

func leadingInt(re *regexp.Regexp, text string) mo.Option[int32] {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return mo.None[int32]()
	}
	n, err := strconv.ParseInt(m[1], 10, 32)
	if err != nil {
		return mo.None[int32]()
	}
	return mo.Some(int32(n))
}

// ExtractSurface reads "85 m²" or "85,5 m²". Both values are absent when nothing matches.
func ExtractSurface(text string) (mo.Option[float64], mo.Option[string]) {
	m := surfaceRe.FindStringSubmatch(text)
	if m == nil {
		return mo.None[float64](), mo.None[string]()
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", "."), 64)
	if err != nil {
		return mo.None[float64](), mo.None[string]()
	}
	return mo.Some(v), mo.Some(models.DefaultSurfaceUnit)
}

// ExtractPropertyType returns the text before " en " in a heading such as
// "Casa en Venta en Bogota".
func ExtractPropertyType(heading string) mo.Option[string] {
	before, _, found := strings.Cut(heading, " en ")
	before = strings.TrimSpace(before)
	if !found || before == "" {
		return mo.None[string]()
	}
	return mo.Some(before)
}

// Capitalize upper-cases the first letter and lower-cases the rest.
func Capitalize(s string) string {
	s = strings.TrimSpace(s)
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}

// BuildTitle formats "{type or city} en {city}[ - {surface} {unit}]".
func BuildTitle(propertyType mo.Option[string], city string, surface mo.Option[float64], unit mo.Option[string]) string {
	city = Capitalize(city)
	title := fmt.Sprintf("%s en %s", propertyType.OrElse(city), city)
	if s, ok := surface.Get(); ok {
		title += fmt.Sprintf(" - %s %s", strconv.FormatFloat(s, 'f', -1, 64), unit.OrElse(models.DefaultSurfaceUnit))
	}
	return title
}

// ResolveURL makes href absolute against base. It reports false for hrefs
// that do not point at a listing.
func ResolveURL(base *url.URL, href string) (string, bool) {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(href, "javascript:") {
		return "", false
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	resolved := base.ResolveReference(ref).String()

	root := strings.TrimRight(base.String(), "/")
	if resolved == root || resolved == root+"/" {
		return "", false
	}
	return resolved, true
}

// Extractor turns result page markup into listings.
type Extractor struct {
	base      *url.URL
	converter *md.Converter
}

func NewExtractor(baseURL string) (*Extractor, error) {
	base, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base url %q: %w", baseURL, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", baseURL)
	}

	converter := md.NewConverter("", true, nil)
	converter.Use(mdp.GitHubFlavored())

	return &Extractor{base: base, converter: converter}, nil
}

func (e *Extractor) BaseURL() string {
	return e.base.String()
}

// Cards returns the listing cards of a page.
func Cards(doc *goquery.Document) *goquery.Selection {
	return doc.Find(CardSelector)
}

// ExtractListings extracts every card of doc. Cards that fail or have no
// usable URL are logged and skipped.
func (e *Extractor) ExtractListings(doc *goquery.Document, city, region string) []models.Listing {
	var listings []models.Listing
	Cards(doc).Each(func(i int, card *goquery.Selection) {
		l, ok, err := e.ExtractCard(card, city, region)
		if err != nil {
			log.Error().Err(err).Int("card", i).Msg("Error extracting listing data")
			return
		}
		if !ok {
			return
		}
		listings = append(listings, l)
	})
	return listings
}

// ExtractCard extracts a single card. ok is false when the card has no
// listing URL.
func (e *Extractor) ExtractCard(card *goquery.Selection, city, region string) (l models.Listing, ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("card extraction panicked: %v", r)
			ok = false
		}
	}()

	href, _ := card.Find(linkSelector).First().Attr("href")
	link, valid := ResolveURL(e.base, href)
	if !valid {
		log.Warn().Str("href", href).Msg("Skipping card without listing URL")
		return models.Listing{}, false, nil
	}

	text := strings.Join(strings.Fields(card.Text()), " ")
	surface, unit := ExtractSurface(text)
	propertyType := ExtractPropertyType(e.heading(card, city))

	return models.Listing{
		URL:          link,
		Title:        BuildTitle(propertyType, city, surface, unit),
		Price:        ExtractPrice(text),
		Rooms:        ExtractRooms(text),
		Bathrooms:    ExtractBathrooms(text),
		Surface:      surface,
		SurfaceUnit:  unit,
		City:         Capitalize(city),
		Region:       Capitalize(region),
		PropertyType: propertyType,
		Description:  e.description(card),
		ImageURLs:    e.imageURLs(card),
	}, true, nil
}

// heading finds the shortest element text mentioning " en <city>" or " en venta".
func (e *Extractor) heading(card *goquery.Selection, city string) string {
	markers := []string{" en " + strings.ToLower(strings.TrimSpace(city)), " en venta"}

	var best string
	card.Find(titleCandidates).Each(func(_ int, s *goquery.Selection) {
		text := strings.Join(strings.Fields(s.Text()), " ")
		lower := strings.ToLower(text)
		if !lo.SomeBy(markers, func(m string) bool { return strings.Contains(lower, m) }) {
			return
		}
		if best == "" || len(text) < len(best) {
			best = text
		}
	})
	return best
}

func (e *Extractor) imageURLs(card *goquery.Selection) []string {
	var urls []string
	card.Find(imageSelector).Each(func(_ int, img *goquery.Selection) {
		src, ok := img.Attr("src")
		if !ok || strings.TrimSpace(src) == "" {
			src, _ = img.Attr("data-src")
		}
		if strings.HasPrefix(strings.TrimSpace(src), "data:") {
			return
		}
		if u, ok := ResolveURL(e.base, src); ok {
			urls = append(urls, u)
		}
	})
	return lo.Uniq(urls)
}

func (e *Extractor) description(card *goquery.Selection) mo.Option[string] {
	sel := card.Find(descriptionSelector).First()
	if sel.Length() == 0 {
		return mo.None[string]()
	}
	html, err := sel.Html()
	if err != nil {
		return mo.None[string]()
	}
	markdown, err := e.converter.ConvertString(html)
	if err != nil {
		log.Debug().Err(err).Msg("Error converting description")
		return mo.None[string]()
	}
	markdown = strings.TrimSpace(markdown)
	if markdown == "" {
		return mo.None[string]()
	}
	return mo.Some(markdown)
}
