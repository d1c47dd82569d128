// Package domain extracts monthly climate normals from Wikipedia articles.
//
// # Data Source
//
// Articles are fetched as raw wikitext through a [PageFetcher]. Climate data
// lives in the "Weather box" template, either inline on the article or in a
// separately maintained template transcluded as "{{<Place> weatherbox}}"
// (also "/cached" and "|collapsed=Y" variants), which is then fetched from the
// "Template:" namespace.
//
// # Weather Box Conventions
//
// Monthly fields are named "<Mon> <category>":
//
//	|Jan high C = −0.7
//	|Feb record low F = -25
//	|Mar precipitation inch = 2.3
//	|Apr d sun = 6.4
//	|May percentsun = 48
//
// The three-letter month prefix selects the slot; the remainder is the
// category. Categories outside the fixed [Schema] are converted when their
// trailing unit has a registered conversion ("record low F" becomes
// "record low C"). Daily sunshine ("d sun") is multiplied by the days in the
// month of a non-leap year. Percent of possible sunshine ("percentsun") is
// turned into hours with the day length of the place, supplied by an
// [Astronomer], but only while no direct "sun" value has been seen.
//
// Values use "−" or "&minus;" as minus signs, "-" for no data and "trace"
// for negligible amounts. Months are expected in calendar order; a series
// that does not reach twelve entries is discarded.
//
// # Coordinates
//
// Positions come from the "Infobox settlement" degree fields
// (latd/latm/lats/latNS, longd/longm/longs/longEW) or, when those yield
// nothing, from a "Coord" template in decimal ({{Coord|43.65|-79.38}}) or
// positional ({{Coord|43|39|N|79|23|W}}) form. Elevation comes from
// elevation_m, elevation_max_m or elevation_min_m, first present wins.
//
// # Queries
//
// A [Resolver] turns free text such as "toronto march high" into a [Query].
// Unclassified words are stitched into place names by testing candidate
// titles against the extractor, so "hamilton new zealand" resolves to
// "Hamilton, New Zealand" when that article has climate data.
package domain
