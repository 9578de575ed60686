package markup

import (
	"fmt"
	"regexp"
	"strconv"
)

var iconKeyRE = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ValidIconKey reports whether key can be used in an icon-group marker.
func ValidIconKey(key string) bool {
	return iconKeyRE.MatchString(key)
}

// ListTables returns the table numbers in document order.
func ListTables(text string) []int {
	var nums []int
	for _, k := range markerKeys(text, tableStartRE) {
		if n, err := strconv.Atoi(k); err == nil {
			nums = append(nums, n)
		}
	}
	return nums
}

// GetTable returns the raw markup wrapped by table n's markers.
func GetTable(text string, n int) (string, bool) {
	s, e, ok := regionBounds(text, tableStartRE, tableEndRE, strconv.Itoa(n))
	if !ok {
		return "", false
	}
	return text[s:e], true
}

// SetTable replaces the markup wrapped by table n's markers. The markup is
// not validated.
func SetTable(text string, n int, fragment string) (string, bool) {
	s, e, ok := regionBounds(text, tableStartRE, tableEndRE, strconv.Itoa(n))
	if !ok {
		return text, false
	}
	return text[:s] + fragment + text[e:], true
}

// ListIconGroups returns the icon-group keys in document order.
func ListIconGroups(text string) []string {
	return markerKeys(text, iconStartRE)
}

// GetIconGroup returns the raw markup of the icon group with the given key.
func GetIconGroup(text, key string) (string, bool) {
	s, e, ok := regionBounds(text, iconStartRE, iconEndRE, key)
	if !ok {
		return "", false
	}
	return text[s:e], true
}

// SetIconGroup replaces the raw markup of the icon group with the given key.
func SetIconGroup(text, key, fragment string) (string, bool) {
	s, e, ok := regionBounds(text, iconStartRE, iconEndRE, key)
	if !ok {
		return text, false
	}
	return text[:s] + fragment + text[e:], true
}

// RenumberRegions prepares a copied page for insertion next to its original:
// its tables are renumbered from nextTable upwards and its icon groups get
// keys not present in used (which is updated), so table numbers and icon keys
// stay unique across the document.
func RenumberRegions(page string, nextTable int, used map[string]bool) string {
	tables := make(map[string]string)
	for _, k := range markerKeys(page, tableStartRE) {
		tables[k] = strconv.Itoa(nextTable)
		nextTable++
	}
	page = replaceMarkerKeys(page, tableStartRE, tables, func(k string) string {
		n, _ := strconv.Atoi(k)
		return tableStartMarker(n)
	})
	page = replaceMarkerKeys(page, tableEndRE, tables, func(k string) string {
		n, _ := strconv.Atoi(k)
		return tableEndMarker(n)
	})

	icons := make(map[string]string)
	for _, k := range markerKeys(page, iconStartRE) {
		nk := uniqueKey(k, used)
		used[nk] = true
		icons[k] = nk
	}
	page = replaceMarkerKeys(page, iconStartRE, icons, iconStartMarker)
	return replaceMarkerKeys(page, iconEndRE, icons, iconEndMarker)
}

func replaceMarkerKeys(text string, re *regexp.Regexp, mapping map[string]string, marker func(string) string) string {
	if len(mapping) == 0 {
		return text
	}
	return re.ReplaceAllStringFunc(text, func(m string) string {
		key := re.FindStringSubmatch(m)[1]
		if nk, ok := mapping[key]; ok {
			return marker(nk)
		}
		return m
	})
}

func uniqueKey(key string, used map[string]bool) string {
	if !used[key] {
		return key
	}
	for i := 2; ; i++ {
		k := fmt.Sprintf("%s-%d", key, i)
		if !used[k] {
			return k
		}
	}
}
