// Package validation checks user supplied entry identifiers, deep links and
// endpoint URLs before they reach the network.
package validation

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var (
	// Classic four character codes: a digit 1-9 followed by three alphanumerics.
	classicID = regexp.MustCompile(`^[1-9][A-Z0-9]{3}$`)
	// Extended codes reserved for when the classic space runs out.
	extendedID = regexp.MustCompile(`^PDB_[0-9]{4}[1-9][A-Z0-9]{3}$`)
)

// NormalizeEntryID upper-cases and validates a PDB entry identifier.
func NormalizeEntryID(id string) (string, error) {
	id = strings.ToUpper(strings.TrimSpace(id))
	if id == "" {
		return "", fmt.Errorf("entry id cannot be empty")
	}
	if !classicID.MatchString(id) && !extendedID.MatchString(id) {
		return "", fmt.Errorf("invalid entry id %q", id)
	}
	return id, nil
}

// IsEntryID reports whether s looks like a PDB entry identifier.
func IsEntryID(s string) bool {
	_, err := NormalizeEntryID(s)
	return err == nil
}

// DeepLink pre-seeds the initial selection.
type DeepLink struct {
	ID    string
	Title string
}

// ParseDeepLink reads the pdb and title parameters from a link such as
// "?pdb=4HHB&title=HEMOGLOBIN", a full URL carrying them, or a bare
// query string. A link without pdb returns ok false.
func ParseDeepLink(link string) (DeepLink, bool, error) {
	link = strings.TrimSpace(link)
	if link == "" {
		return DeepLink{}, false, nil
	}

	raw := link
	if i := strings.IndexByte(link, '?'); i >= 0 {
		raw = link[i+1:]
	}
	values, err := url.ParseQuery(raw)
	if err != nil {
		return DeepLink{}, false, fmt.Errorf("parsing deep link: %w", err)
	}
	return NewDeepLink(values.Get("pdb"), values.Get("title"))
}

// NewDeepLink validates an id/title pair given separately, e.g. from flags.
func NewDeepLink(id, title string) (DeepLink, bool, error) {
	if strings.TrimSpace(id) == "" {
		return DeepLink{}, false, nil
	}
	norm, err := NormalizeEntryID(id)
	if err != nil {
		return DeepLink{}, false, err
	}
	title = strings.TrimSpace(title)
	if strings.ContainsAny(title, "\x00\r\n") {
		return DeepLink{}, false, fmt.Errorf("title contains control characters")
	}
	return DeepLink{ID: norm, Title: title}, true, nil
}

// Query renders the link back to its query string form.
func (d DeepLink) Query() string {
	v := url.Values{}
	v.Set("pdb", d.ID)
	if d.Title != "" {
		v.Set("title", d.Title)
	}
	return "?" + v.Encode()
}
