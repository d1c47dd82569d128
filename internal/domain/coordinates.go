package domain

import (
	"context"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/couchcryptid/climate-graph/internal/wikitext"
)

const settlementTemplate = "Infobox settlement"

var (
	coordTemplates = []string{"Coord", "coord"}
	elevationKeys  = []string{"elevation_m", "elevation_max_m", "elevation_min_m"}
)

// Coordinates fetches the article for place and extracts its position.
// It reports false when the page is missing or carries no usable coordinates.
func (e *Extractor) Coordinates(ctx context.Context, place string) (Coordinates, bool) {
	page, ok := e.fetch(ctx, place)
	if !ok {
		return Coordinates{}, false
	}
	return ParseCoordinates(page.Body)
}

// ParseCoordinates extracts a position from article wikitext. The settlement
// infobox degree fields are preferred; a Coord template is used only when they
// yield no position.
func ParseCoordinates(body string) (Coordinates, bool) {
	box := wikitext.ParseInfobox(wikitext.FindTemplate(body, settlementTemplate))

	var c Coordinates
	lat, lng, ok := ParseSettlementCoordinates(box)
	if !ok || (lat == 0 && lng == 0) {
		ok = false
		for _, name := range coordTemplates {
			if lat, lng, ok = ParseCoordTemplate(wikitext.FindTemplate(body, name)); ok {
				break
			}
		}
	}
	if !ok {
		return Coordinates{}, false
	}
	c.Lat = roundTo(lat, 4)
	c.Lng = roundTo(lng, 4)

	for _, key := range elevationKeys {
		v, present := box.Get(key)
		if !present {
			continue
		}
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Elevation = f
			c.HasElevation = true
		}
		break
	}
	return c, true
}

// ParseSettlementCoordinates reads the latd/latm/lats/latNS and
// longd/longm/longs/longEW fields of a settlement infobox. Both degree fields
// must parse; unparsable minutes or seconds count as zero.
func ParseSettlementCoordinates(box wikitext.Infobox) (lat, lng float64, ok bool) {
	lat, ok = settlementAxis(box, "latd", "latm", "lats", "latNS", "S")
	if !ok {
		return 0, 0, false
	}
	lng, ok = settlementAxis(box, "longd", "longm", "longs", "longEW", "W")
	if !ok {
		return 0, 0, false
	}
	return lat, lng, true
}

func settlementAxis(box wikitext.Infobox, degKey, minKey, secKey, hemiKey, negative string) (float64, bool) {
	raw, present := box.Get(degKey)
	if !present {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	if m, present := box.Get(minKey); present {
		if f, err := strconv.ParseFloat(m, 64); err == nil {
			v += f / 60
		}
	}
	if s, present := box.Get(secKey); present {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			v += f / 3600
		}
	}
	if hemi, present := box.Get(hemiKey); present && strings.EqualFold(hemi, negative) {
		v = -v
	}
	return v, true
}

// ParseCoordTemplate reads a Coord template span in either decimal form
// ({{Coord|43.65|-79.38}}) or positional degree/minute/second form
// ({{Coord|43|39|N|79|23|W}}).
func ParseCoordTemplate(span string) (lat, lng float64, ok bool) {
	span = strings.TrimSuffix(strings.TrimSpace(span), "}}")
	if span == "" {
		return 0, 0, false
	}
	args := strings.Split(span, "|")
	for i := range args {
		args[i] = strings.TrimSpace(args[i])
	}

	latEnd := max(slices.Index(args, "N"), slices.Index(args, "S"))
	lngEnd := max(slices.Index(args, "E"), slices.Index(args, "W"))

	if latEnd < 0 && lngEnd < 0 {
		if len(args) < 3 {
			return 0, 0, false
		}
		lat, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return 0, 0, false
		}
		lng, err := strconv.ParseFloat(args[2], 64)
		if err != nil {
			return 0, 0, false
		}
		return lat, lng, true
	}
	if latEnd < 1 || lngEnd <= latEnd {
		return 0, 0, false
	}

	lat, ok = sumDMS(args[1:latEnd])
	if !ok {
		return 0, 0, false
	}
	if args[latEnd] == "S" {
		lat = -lat
	}
	lng, ok = sumDMS(args[latEnd+1 : lngEnd])
	if !ok {
		return 0, 0, false
	}
	if args[lngEnd] == "W" {
		lng = -lng
	}
	return lat, lng, true
}

// sumDMS adds positional components, each worth a sixtieth of the previous.
// Empty components count as zero.
func sumDMS(parts []string) (float64, bool) {
	if len(parts) == 0 {
		return 0, false
	}
	var total float64
	for depth, p := range parts {
		if p == "" {
			continue
		}
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return 0, false
		}
		total += v / math.Pow(60, float64(depth))
	}
	return total, true
}
