// Package jurisdiction holds the closed set of GST jurisdictions used to
// decide intra- vs inter-state taxation. The table is immutable reference
// data, built once at process start.
package jurisdiction

import "strings"

// Jurisdiction is one state or union territory with its GST state code.
type Jurisdiction struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// CodeUnknown is the reserved code used when a buyer address cannot be
// resolved to a known state. It always taxes as inter-state.
const CodeUnknown = "96"

// Unknown is returned whenever a lookup fails.
var Unknown = Jurisdiction{Code: CodeUnknown, Name: "Foreign Country"}

var all = []Jurisdiction{
	{Code: "01", Name: "Jammu and Kashmir"},
	{Code: "02", Name: "Himachal Pradesh"},
	{Code: "03", Name: "Punjab"},
	{Code: "04", Name: "Chandigarh"},
	{Code: "05", Name: "Uttarakhand"},
	{Code: "06", Name: "Haryana"},
	{Code: "07", Name: "Delhi"},
	{Code: "08", Name: "Rajasthan"},
	{Code: "09", Name: "Uttar Pradesh"},
	{Code: "10", Name: "Bihar"},
	{Code: "11", Name: "Sikkim"},
	{Code: "12", Name: "Arunachal Pradesh"},
	{Code: "13", Name: "Nagaland"},
	{Code: "14", Name: "Manipur"},
	{Code: "15", Name: "Mizoram"},
	{Code: "16", Name: "Tripura"},
	{Code: "17", Name: "Meghalaya"},
	{Code: "18", Name: "Assam"},
	{Code: "19", Name: "West Bengal"},
	{Code: "20", Name: "Jharkhand"},
	{Code: "21", Name: "Odisha"},
	{Code: "22", Name: "Chhattisgarh"},
	{Code: "23", Name: "Madhya Pradesh"},
	{Code: "24", Name: "Gujarat"},
	{Code: "26", Name: "Dadra and Nagar Haveli and Daman and Diu"},
	{Code: "27", Name: "Maharashtra"},
	{Code: "29", Name: "Karnataka"},
	{Code: "30", Name: "Goa"},
	{Code: "31", Name: "Lakshadweep"},
	{Code: "32", Name: "Kerala"},
	{Code: "33", Name: "Tamil Nadu"},
	{Code: "34", Name: "Puducherry"},
	{Code: "35", Name: "Andaman and Nicobar Islands"},
	{Code: "36", Name: "Telangana"},
	{Code: "37", Name: "Andhra Pradesh"},
	{Code: "38", Name: "Ladakh"},
	{Code: "97", Name: "Other Territory"},
	{Code: CodeUnknown, Name: "Foreign Country"},
}

var (
	byCode = make(map[string]Jurisdiction, len(all))
	byName = make(map[string]Jurisdiction, len(all))
)

func init() {
	for _, j := range all {
		byCode[j.Code] = j
		byName[strings.ToLower(j.Name)] = j
	}
}

// All returns the full jurisdiction table in code order.
func All() []Jurisdiction {
	out := make([]Jurisdiction, len(all))
	copy(out, all)
	return out
}

// ByCode looks up a jurisdiction by its 2-character GST state code.
func ByCode(code string) (Jurisdiction, bool) {
	j, ok := byCode[strings.TrimSpace(code)]
	return j, ok
}

// Resolve maps free-form input (a state code or state name, as found on an
// order address) to a jurisdiction. Anything unrecognised resolves to
// Unknown rather than failing; missing buyer states must never be treated
// as intra-state.
func Resolve(value string) Jurisdiction {
	value = strings.TrimSpace(value)
	if value == "" {
		return Unknown
	}
	if j, ok := byCode[value]; ok {
		return j
	}
	if j, ok := byName[strings.ToLower(value)]; ok {
		return j
	}
	return Unknown
}

// IsKnown reports whether value resolves to a real state or territory,
// not the reserved unknown code.
func IsKnown(value string) bool {
	return Resolve(value).Code != CodeUnknown
}
