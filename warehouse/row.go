package warehouse

import (
	"github.com/bytedance/sonic"

	"events-pipeline/domain"
)

// Row projects an enriched event onto the schema's field set. Anything the
// payload carries beyond the schema (internal routing metadata included)
// is stripped, so the written row matches the table definition exactly.
func Row(ev *domain.EnrichedEvent, schema TableSchema) (map[string]any, error) {
	data, err := sonic.ConfigStd.Marshal(ev)
	if err != nil {
		return nil, err
	}
	var fields map[string]any
	if err := sonic.ConfigStd.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	row := make(map[string]any, len(schema.Fields))
	for _, f := range schema.Fields {
		if v, ok := fields[f.Name]; ok {
			row[f.Name] = v
		}
	}
	return row, nil
}
