package regno

import "strings"

// districtCodes maps district names to their short codes. Lookups are
// case-insensitive exact matches; unknown districts fall back to the first
// three letters of the name, uppercased.
var districtCodes = map[string]string{
	"colombo":      "COL",
	"gampaha":      "GAM",
	"kalutara":     "KAL",
	"kandy":        "KAN",
	"matale":       "MAT",
	"nuwara eliya": "NUW",
	"galle":        "GAL",
	"matara":       "MTR",
	"hambantota":   "HAM",
	"jaffna":       "JAF",
	"kilinochchi":  "KIL",
	"mannar":       "MAN",
	"vavuniya":     "VAV",
	"mullaitivu":   "MUL",
	"batticaloa":   "BAT",
	"ampara":       "AMP",
	"trincomalee":  "TRI",
	"kurunegala":   "KUR",
	"puttalam":     "PUT",
	"anuradhapura": "ANU",
	"polonnaruwa":  "POL",
	"badulla":      "BAD",
	"monaragala":   "MON",
	"ratnapura":    "RAT",
	"kegalle":      "KEG",
}

type courseCode struct {
	keyword string
	code    string
}

// courseCodes maps course-name keywords to short codes. Lookups are
// case-insensitive substring matches against the course name, so
// "Advanced Welding Techniques" resolves through the "welding" entry.
// Kept as an ordered slice so earlier, more specific keywords win.
var courseCodes = []courseCode{
	{"information technology", "ICT"},
	{"computer", "ICT"},
	{"air conditioning", "REF"},
	{"refrigeration", "REF"},
	{"motor mechanic", "AUT"},
	{"automobile", "AUT"},
	{"electronics", "ELX"},
	{"electrical", "ELE"},
	{"welding", "WEL"},
	{"plumbing", "PLU"},
	{"carpentry", "CAR"},
	{"masonry", "MAS"},
	{"tailoring", "TAI"},
	{"dressmaking", "TAI"},
	{"beauty", "BEA"},
	{"hairdressing", "HAI"},
	{"cookery", "COO"},
	{"baking", "BAK"},
	{"agriculture", "AGR"},
	{"aquaculture", "AQU"},
	{"machining", "MCH"},
	{"graphic design", "GRD"},
	{"quantity surveying", "QSV"},
	{"landscaping", "LND"},
}

// DistrictCode resolves a district name to its registration segment.
func DistrictCode(district string) string {
	name := strings.TrimSpace(district)
	if code, ok := districtCodes[strings.ToLower(name)]; ok {
		return code
	}
	return fallbackCode(name)
}

// CourseCode resolves a course to its registration segment. courseName is
// matched against the keyword table; shortCode is the course's own code
// used as a fallback. A student without a course gets the literal "GEN".
func CourseCode(courseName, shortCode string) string {
	if courseName == "" && shortCode == "" {
		return "GEN"
	}
	lower := strings.ToLower(courseName)
	for _, entry := range courseCodes {
		if strings.Contains(lower, entry.keyword) {
			return entry.code
		}
	}
	if shortCode != "" {
		return fallbackCode(shortCode)
	}
	return fallbackCode(courseName)
}

func fallbackCode(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "GEN"
	}
	runes := []rune(s)
	if len(runes) > 3 {
		runes = runes[:3]
	}
	return strings.ToUpper(string(runes))
}
