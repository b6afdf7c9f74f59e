package report

import "strings"

// DefaultLabels are the German headers of the daily report.
var DefaultLabels = map[string]string{
	"wz__pat": "EL Nr.",
	"wz_name": "Name",
	"wz__dat": "Datum",
	"wz_time": "Zeit",
	"wz__geb": "Geburtstag",
	"wz__sys": "System",
	"wz__gnr": "GNR",
	"wz_term": "Termin",
	"wz___bg": "BG Fall",
	"wz__bem": "Bemerkung",
	"wz_ziel": "Ziel",
	"wz__vpk": "Unbekannt",
	"wz_kknr": "Krankenkassennummer",
	"wz_ktgr": "Kostenträgergruppe",
	"wz__hvm": "Unbekannt",
	"wz_prxg": "Praxisgebühr",
	"wz_gone": "Verlassen",
	"mandant": "Mandant",
}

// Label returns the header for a column: an override, a default label, or
// the column name itself.
func Label(column string, overrides map[string]string) string {
	key := strings.ToLower(column)
	if l, ok := overrides[key]; ok && l != "" {
		return l
	}
	if l, ok := DefaultLabels[key]; ok {
		return l
	}
	return column
}
