package tabular

import (
	"fmt"

	"github.com/tidwall/gjson"
)

// readJSON reads an array of flat records. Headers follow the order in which
// keys first appear; nested values are kept as raw JSON text.
func readJSON(data []byte) ([][]string, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("invalid JSON")
	}
	root := gjson.ParseBytes(data)
	if !root.IsArray() {
		return nil, fmt.Errorf("expected an array of records")
	}

	var headers []string
	index := make(map[string]int)
	var records []map[string]string

	var badRecord error
	root.ForEach(func(_, record gjson.Result) bool {
		if !record.IsObject() {
			badRecord = fmt.Errorf("record %d is not an object", len(records))
			return false
		}
		row := make(map[string]string)
		record.ForEach(func(key, value gjson.Result) bool {
			name := key.String()
			if _, ok := index[name]; !ok {
				index[name] = len(headers)
				headers = append(headers, name)
			}
			row[name] = cellText(value)
			return true
		})
		records = append(records, row)
		return true
	})
	if badRecord != nil {
		return nil, badRecord
	}

	rows := make([][]string, 0, len(records)+1)
	rows = append(rows, headers)
	for _, record := range records {
		line := make([]string, len(headers))
		for i, h := range headers {
			line[i] = record[h]
		}
		rows = append(rows, line)
	}
	return rows, nil
}

func cellText(value gjson.Result) string {
	switch value.Type {
	case gjson.Null:
		return ""
	case gjson.String, gjson.Number, gjson.True, gjson.False:
		return value.String()
	default:
		return value.Raw
	}
}
