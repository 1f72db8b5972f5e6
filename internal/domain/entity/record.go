package entity

import "strings"

// Colunas obrigatórias e opcionais da exportação de ordens de serviço,
// já normalizadas (trim + maiúsculas).
const (
	ColCostCenter  = "CCOSER"
	ColStatus      = "ESTADONOMB"
	ColRegion      = "REGION"
	ColOrderNumber = "NUM_OS"
	ColIngestDate  = "FECHA"
	ColClient      = "CLIENTE"
	ColIDNumber    = "CEDULA"
	ColDetail      = "DETALLE_AC"
	ColProduct     = "PRODUCTO"
	ColStateDesc   = "DETALLE"
	ColSerial      = "SERIE"
	ColFaultCode   = "CONCEPTO_E"
)

// StatusPending is the only status kept by the classifier.
const StatusPending = "PENDIENTE"

// NormalizeColumn trims and uppercases a header name.
func NormalizeColumn(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}

// RawRecord é uma linha do arquivo carregado, indexada pelo nome
// normalizado da coluna. Células vazias não são armazenadas.
type RawRecord struct {
	Fields map[string]string
}

// NewRawRecord builds a record from parallel header/value slices.
// Headers must already be normalized.
func NewRawRecord(headers, values []string) RawRecord {
	fields := make(map[string]string, len(headers))
	for i, h := range headers {
		if h == "" || i >= len(values) {
			continue
		}
		if values[i] == "" {
			continue
		}
		fields[h] = values[i]
	}
	return RawRecord{Fields: fields}
}

// Get returns the value of column and whether it is non-null.
func (r RawRecord) Get(column string) (string, bool) {
	v, ok := r.Fields[column]
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// With returns a copy of r with column set to value.
func (r RawRecord) With(column, value string) RawRecord {
	fields := make(map[string]string, len(r.Fields)+1)
	for k, v := range r.Fields {
		fields[k] = v
	}
	if value == "" {
		delete(fields, column)
	} else {
		fields[column] = value
	}
	return RawRecord{Fields: fields}
}

// Dataset is the decoded upload: ordered columns plus rows.
type Dataset struct {
	Columns []string
	Records []RawRecord
}

// HasColumn reports whether the normalized column is present.
func (d Dataset) HasColumn(column string) bool {
	for _, c := range d.Columns {
		if c == column {
			return true
		}
	}
	return false
}

// ClassifiedRecord é um RawRecord pendente com a região atribuída.
type ClassifiedRecord struct {
	RawRecord
	Region RegionCode
}
