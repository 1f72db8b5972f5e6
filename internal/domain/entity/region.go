package entity

import (
	"errors"
	"fmt"
	"strings"
)

// RegionCode identifica uma das regiões fixas de atendimento.
// O valor zero representa um registro sem região atribuída.
type RegionCode string

const (
	RegionNone      RegionCode = ""
	RegionBordo     RegionCode = "BORDO"
	RegionPopayan   RegionCode = "POPAYAN"
	RegionSantander RegionCode = "SANTANDER"
	RegionAmbienta  RegionCode = "AMBIENTA"
	RegionValle     RegionCode = "VALLE"
	RegionPasto     RegionCode = "PASTO"
	RegionTuquerres RegionCode = "TUQUERRES"
	RegionPitalito  RegionCode = "PITALITO"
)

var (
	ErrOverlappingCodes = errors.New("cost-center code assigned to more than one region")
	ErrUnknownRegion    = errors.New("unknown region")
	ErrEmptyRegion      = errors.New("region declared without cost-center codes")
)

// Assigned informa se o registro caiu em alguma região.
func (r RegionCode) Assigned() bool {
	return r != RegionNone
}

// Valid reports whether r belongs to the closed region set.
func (r RegionCode) Valid() bool {
	switch r {
	case RegionBordo, RegionPopayan, RegionSantander, RegionAmbienta,
		RegionValle, RegionPasto, RegionTuquerres, RegionPitalito:
		return true
	}
	return false
}

// RegionCodes declares which cost-center codes belong to a region.
type RegionCodes struct {
	Region RegionCode
	Codes  []string
}

// RegionTable é a tabela imutável código de centro de custo → região.
// A ordem de declaração é preservada para iteração determinística.
type RegionTable struct {
	declared []RegionCodes
	index    map[string]RegionCode
}

// NewRegionTable builds the lookup index and rejects any code that appears
// under more than one region. Codes are matched exactly after trimming.
func NewRegionTable(decl []RegionCodes) (*RegionTable, error) {
	t := &RegionTable{
		declared: make([]RegionCodes, 0, len(decl)),
		index:    make(map[string]RegionCode),
	}

	for _, d := range decl {
		if !d.Region.Valid() {
			return nil, fmt.Errorf("%w: %q", ErrUnknownRegion, d.Region)
		}
		if len(d.Codes) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrEmptyRegion, d.Region)
		}

		codes := make([]string, 0, len(d.Codes))
		for _, code := range d.Codes {
			code = strings.TrimSpace(code)
			if owner, ok := t.index[code]; ok {
				return nil, fmt.Errorf("%w: %s in %s and %s", ErrOverlappingCodes, code, owner, d.Region)
			}
			t.index[code] = d.Region
			codes = append(codes, code)
		}
		t.declared = append(t.declared, RegionCodes{Region: d.Region, Codes: codes})
	}

	return t, nil
}

// Lookup devolve a região do código informado, ou RegionNone.
func (t *RegionTable) Lookup(code string) RegionCode {
	return t.index[strings.TrimSpace(code)]
}

// Regions returns the regions in declaration order.
func (t *RegionTable) Regions() []RegionCode {
	regions := make([]RegionCode, len(t.declared))
	for i, d := range t.declared {
		regions[i] = d.Region
	}
	return regions
}

// Codes returns a copy of the codes declared for region.
func (t *RegionTable) Codes(region RegionCode) []string {
	for _, d := range t.declared {
		if d.Region == region {
			return append([]string(nil), d.Codes...)
		}
	}
	return nil
}

// FirstCode é usado na convenção de nome dos arquivos gerados.
func (t *RegionTable) FirstCode(region RegionCode) string {
	codes := t.Codes(region)
	if len(codes) == 0 {
		return ""
	}
	return codes[0]
}

// defaultRegionCodes é a tabela de negócio fechada; "103" é comparado por
// igualdade exata, não como prefixo.
var defaultRegionCodes = []RegionCodes{
	{Region: RegionBordo, Codes: []string{"10201", "10204"}},
	{Region: RegionPopayan, Codes: []string{"10101"}},
	{Region: RegionSantander, Codes: []string{"103", "10301"}},
	{Region: RegionAmbienta, Codes: []string{"10401"}},
	{Region: RegionValle, Codes: []string{"20101"}},
	{Region: RegionPasto, Codes: []string{"30101"}},
	{Region: RegionTuquerres, Codes: []string{"30301"}},
	{Region: RegionPitalito, Codes: []string{"70101", "70102", "70104"}},
}

var defaultRegionTable = mustRegionTable(defaultRegionCodes)

func mustRegionTable(decl []RegionCodes) *RegionTable {
	t, err := NewRegionTable(decl)
	if err != nil {
		panic(err)
	}
	return t
}

// DefaultRegionTable returns the built-in region membership table.
func DefaultRegionTable() *RegionTable {
	return defaultRegionTable
}
