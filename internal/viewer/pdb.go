package viewer

import (
	"bufio"
	"bytes"
	"sort"
	"strconv"
	"strings"

	"github.com/pders01/pdbscope/internal/rcsb"
)

// Chain summarizes one chain of the first model.
type Chain struct {
	ID       string
	Residues int
	Atoms    int
}

// Header is what the PDB-format file says about itself.
type Header struct {
	Classification string
	Deposited      string
	IDCode         string
	Title          string
	Method         string
	Resolution     rcsb.Nullable[float64]
	Models         int
	Atoms          int
	HetAtoms       int
	Waters         int
	Chains         []Chain
	Ligands        []string
}

func field(line string, from, to int) string {
	if from >= len(line) {
		return ""
	}
	if to > len(line) {
		to = len(line)
	}
	return strings.TrimSpace(line[from:to])
}

// ParsePDB reads the header records and counts the coordinates of the first
// model. Malformed lines are skipped.
func ParsePDB(data []byte) Header {
	var h Header
	var title []string
	chains := map[string]*Chain{}
	residues := map[string]bool{}
	ligands := map[string]bool{}
	inFirstModel := true

	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 1024), 1<<20)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		record := field(line, 0, 6)

		switch record {
		case "HEADER":
			h.Classification = field(line, 10, 50)
			h.Deposited = field(line, 50, 59)
			h.IDCode = field(line, 62, 66)
		case "TITLE":
			title = append(title, field(line, 10, 80))
		case "EXPDTA":
			h.Method = field(line, 10, 79)
		case "REMARK":
			if field(line, 6, 10) == "2" && !h.Resolution.Valid {
				h.Resolution = parseResolution(line)
			}
		case "MODEL":
			h.Models++
			if h.Models > 1 {
				inFirstModel = false
			}
		case "ENDMDL":
			inFirstModel = false
		case "ATOM", "HETATM":
			if !inFirstModel {
				continue
			}
			resName := field(line, 17, 20)
			chainID := field(line, 21, 22)
			resSeq := field(line, 22, 27)
			if resName == "" {
				continue
			}
			if chainID == "" {
				chainID = "_"
			}

			if record == "HETATM" {
				if resName == "HOH" || resName == "WAT" {
					h.Waters++
					continue
				}
				h.HetAtoms++
				ligands[resName] = true
			}

			h.Atoms++
			c, ok := chains[chainID]
			if !ok {
				c = &Chain{ID: chainID}
				chains[chainID] = c
			}
			c.Atoms++
			key := chainID + "/" + resSeq + "/" + resName
			if !residues[key] {
				residues[key] = true
				c.Residues++
			}
		}
	}

	if h.Models == 0 && h.Atoms > 0 {
		h.Models = 1
	}
	h.Title = joinTitle(title)

	for _, c := range chains {
		h.Chains = append(h.Chains, *c)
	}
	sort.Slice(h.Chains, func(i, j int) bool { return h.Chains[i].ID < h.Chains[j].ID })
	for name := range ligands {
		h.Ligands = append(h.Ligands, name)
	}
	sort.Strings(h.Ligands)
	return h
}

// parseResolution reads "REMARK   2 RESOLUTION.    1.74 ANGSTROMS."
// It is absent for "NOT APPLICABLE" and any other line.
func parseResolution(line string) rcsb.Nullable[float64] {
	rest := field(line, 10, 80)
	if !strings.HasPrefix(rest, "RESOLUTION.") {
		return rcsb.None[float64]()
	}
	for _, tok := range strings.Fields(strings.TrimPrefix(rest, "RESOLUTION.")) {
		if v, err := strconv.ParseFloat(tok, 64); err == nil {
			return rcsb.Some(v)
		}
	}
	return rcsb.None[float64]()
}

// joinTitle glues TITLE continuation lines, which carry a continuation
// number in columns 9-10 that field() has already dropped.
func joinTitle(parts []string) string {
	var b strings.Builder
	for _, p := range parts {
		if p == "" {
			continue
		}
		if b.Len() > 0 && !strings.HasSuffix(b.String(), "-") {
			b.WriteByte(' ')
		}
		b.WriteString(p)
	}
	return b.String()
}
