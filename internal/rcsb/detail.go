package rcsb

import (
	"sort"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// NotAvailable is shown in place of an absent value.
const NotAvailable = "N/A"

// OtherMethod groups entries without an experimental method.
const OtherMethod = "Other"

var numbers = message.NewPrinter(language.English)

// FormatResolution renders a resolution in ångström, or N/A.
func FormatResolution(r Nullable[float64]) string {
	if v, ok := r.Get(); ok {
		return numbers.Sprintf("%.2f Å", v)
	}
	return NotAvailable
}

// FormatWeight renders a molecular weight in kDa with digit grouping, or N/A.
func FormatWeight(w Nullable[float64]) string {
	if v, ok := w.Get(); ok {
		return numbers.Sprintf("%.2f kDa", v)
	}
	return NotAvailable
}

// Meta is the one-line summary under an entry: method, then resolution and
// weight when known.
func (d EntryDetail) Meta() string {
	s := d.ExperimentalMethod.Or(NotAvailable)
	if d.Resolution.Valid {
		s += " · " + FormatResolution(d.Resolution)
	}
	if d.MolecularWeight.Valid {
		s += " · " + FormatWeight(d.MolecularWeight)
	}
	return s
}

// Plottable reports whether both resolution and weight are known.
func (d EntryDetail) Plottable() bool {
	return d.Resolution.Valid && d.MolecularWeight.Valid
}

// MethodGroup is the plottable entries sharing an experimental method.
type MethodGroup struct {
	Method  string
	Entries []EntryDetail
}

// GroupByMethod buckets the plottable entries by experimental method,
// largest group first.
func GroupByMethod(entries []EntryDetail) []MethodGroup {
	index := map[string]int{}
	var groups []MethodGroup
	for _, e := range entries {
		if !e.Plottable() {
			continue
		}
		method := e.ExperimentalMethod.Or(OtherMethod)
		i, ok := index[method]
		if !ok {
			i = len(groups)
			index[method] = i
			groups = append(groups, MethodGroup{Method: method})
		}
		groups[i].Entries = append(groups[i].Entries, e)
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return len(groups[i].Entries) > len(groups[j].Entries)
	})
	return groups
}
