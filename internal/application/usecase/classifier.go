package usecase

import (
	"strings"

	"github.com/diillson/ticket-region-reports/internal/domain/entity"
	"github.com/diillson/ticket-region-reports/internal/shared/types"
)

// ClassifyAndFilter validates the required columns, assigns each record to
// its region and keeps only records whose status is PENDIENTE. Records
// without a region are kept; no region partition will select them.
func ClassifyAndFilter(ds entity.Dataset, table *entity.RegionTable) ([]entity.ClassifiedRecord, error) {
	ds = NormalizeColumns(ds)

	var missing []string
	for _, col := range []string{entity.ColCostCenter, entity.ColStatus} {
		if !ds.HasColumn(col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, &types.SchemaError{Missing: missing}
	}

	pending := make([]entity.ClassifiedRecord, 0, len(ds.Records))
	for _, rec := range ds.Records {
		code, _ := rec.Get(entity.ColCostCenter)
		code = strings.TrimSpace(code)
		rec = rec.With(entity.ColCostCenter, code)

		region := table.Lookup(code)

		status, _ := rec.Get(entity.ColStatus)
		if strings.ToUpper(strings.TrimSpace(status)) != entity.StatusPending {
			continue
		}

		pending = append(pending, entity.ClassifiedRecord{RawRecord: rec, Region: region})
	}

	return pending, nil
}

// NormalizeColumns devolve uma cópia do dataset com cabeçalhos e chaves
// dos registros normalizados (trim + maiúsculas).
func NormalizeColumns(ds entity.Dataset) entity.Dataset {
	out := entity.Dataset{
		Columns: make([]string, len(ds.Columns)),
		Records: make([]entity.RawRecord, len(ds.Records)),
	}
	for i, c := range ds.Columns {
		out.Columns[i] = entity.NormalizeColumn(c)
	}
	for i, rec := range ds.Records {
		fields := make(map[string]string, len(rec.Fields))
		for k, v := range rec.Fields {
			fields[entity.NormalizeColumn(k)] = v
		}
		out.Records[i] = entity.RawRecord{Fields: fields}
	}
	return out
}

// PartitionByRegion groups classified records by region, dropping the
// unassigned ones. Record order inside each region is preserved.
func PartitionByRegion(records []entity.ClassifiedRecord) map[entity.RegionCode][]entity.ClassifiedRecord {
	parts := make(map[entity.RegionCode][]entity.ClassifiedRecord)
	for _, rec := range records {
		if !rec.Region.Assigned() {
			continue
		}
		parts[rec.Region] = append(parts[rec.Region], rec)
	}
	return parts
}
