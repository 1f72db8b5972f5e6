package entity

import (
	"strconv"
	"strings"
	"time"
)

// Nomes das colunas derivadas calculadas antes da projeção.
const (
	FieldToday       = "HOY"
	FieldElapsedDays = "DIAS"
	FieldAbandonment = "CARTA ABANDONO"
)

// Cabeçalhos usados pela formatação do semáforo.
const (
	HeaderElapsedDays = "DIAS"
	HeaderAbandonment = "CARTA ABANDONO"
)

// Rótulos da flag de carta de abandono.
const (
	AbandonmentYes = "Si"
	AbandonmentNo  = "No"
)

// XLSXMimeType is the content type of every region workbook.
const XLSXMimeType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ReportColumn maps an output header to the field it is sourced from.
type ReportColumn struct {
	Name   string
	Source string
}

var reportColumns = []ReportColumn{
	{Name: "REGION", Source: ColRegion},
	{Name: "C DE COSTO", Source: ColCostCenter},
	{Name: "O. DE SERVICIO", Source: ColOrderNumber},
	{Name: "DIAS", Source: FieldElapsedDays},
	{Name: "CARTA ABANDONO", Source: FieldAbandonment},
	{Name: "HOY", Source: FieldToday},
	{Name: "FECHA INGRESO", Source: ColIngestDate},
	{Name: "NOMBRE", Source: ColClient},
	{Name: "CEDULA", Source: ColIDNumber},
	{Name: "OBSERVACION", Source: ColDetail},
	{Name: "ARTICULO", Source: ColProduct},
	{Name: "ESTADO", Source: ColStateDesc},
	{Name: "SERIE", Source: ColSerial},
	{Name: "FALLA", Source: ColFaultCode},
}

// ReportColumns returns a copy of the fixed output column mapping.
func ReportColumns() []ReportColumn {
	return append([]ReportColumn(nil), reportColumns...)
}

// ReportHeaders returns the output header names in order.
func ReportHeaders() []string {
	headers := make([]string, len(reportColumns))
	for i, c := range reportColumns {
		headers[i] = c.Name
	}
	return headers
}

// ReportRow is one projected output row. A nil value is a null cell;
// non-nil values are string, int or time.Time.
type ReportRow struct {
	Values []any
}

// Value returns the value under header, or nil.
func (r ReportRow) Value(header string) any {
	for i, c := range reportColumns {
		if c.Name == header && i < len(r.Values) {
			return r.Values[i]
		}
	}
	return nil
}

// Band classifies the row for the traffic light from its DIAS and
// CARTA ABANDONO values.
func (r ReportRow) Band() ColorBand {
	return ClassifyBand(FormatValue(r.Value(HeaderAbandonment)), FormatValue(r.Value(HeaderElapsedDays)))
}

// DateLayout é o formato de exibição de HOY e FECHA INGRESO.
const DateLayout = "2006-01-02"

// FormatValue renders a cell value the way it is shown in exports.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case int:
		return strconv.Itoa(val)
	case time.Time:
		return val.Format(DateLayout)
	default:
		return ""
	}
}

// RegionReport agrupa as linhas projetadas de uma região.
type RegionReport struct {
	Region    RegionCode
	FirstCode string
	RunID     string
	Rows      []ReportRow
}

// ColorBand classifica o valor de DIAS para o semáforo.
type ColorBand int

const (
	BandNone ColorBand = iota
	BandOrange
	BandGreen
	BandYellow
	BandRed
	BandGray
)

var bandColors = map[ColorBand]string{
	BandOrange: "F4B084",
	BandGreen:  "00BB2D",
	BandYellow: "BFFF00",
	BandRed:    "FF0000",
	BandGray:   "D9D9D9",
}

var bandNames = map[ColorBand]string{
	BandNone:   "NONE",
	BandOrange: "ORANGE",
	BandGreen:  "GREEN",
	BandYellow: "YELLOW",
	BandRed:    "RED",
	BandGray:   "GRAY",
}

// Color returns the hex RGB fill of the band, empty for BandNone.
func (b ColorBand) Color() string {
	return bandColors[b]
}

func (b ColorBand) String() string {
	return bandNames[b]
}

// RGB splits the band color into components, for renderers that need them.
func (b ColorBand) RGB() (r, g, bl int, ok bool) {
	hex := b.Color()
	if len(hex) != 6 {
		return 0, 0, 0, false
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, 0, 0, false
	}
	return int(v >> 16 & 0xFF), int(v >> 8 & 0xFF), int(v & 0xFF), true
}

// ClassifyBand applies the traffic-light rule to the displayed values of
// the abandonment and elapsed-days cells. The abandonment flag wins over
// any day count.
func ClassifyBand(abandonment, elapsedDays string) ColorBand {
	if strings.ToLower(strings.TrimSpace(abandonment)) == "si" {
		return BandOrange
	}

	days, err := strconv.Atoi(strings.TrimSpace(elapsedDays))
	if err != nil {
		return BandNone
	}

	switch {
	case days >= 1 && days <= 10:
		return BandGreen
	case days >= 11 && days <= 20:
		return BandYellow
	case days >= 21 && days <= 31:
		return BandRed
	case days >= 32:
		return BandGray
	}
	return BandNone
}
