package main

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/malzahar-project/heapfiledb/record"
)

// parseSchema parses a comma-separated column spec such as
// "id:int,gpa:float,name:varchar:16" into a record.Schema.
func parseSchema(spec string) (record.Schema, error) {
	if spec == "" {
		return record.Schema{}, errors.New("schema must not be empty")
	}
	var cols []record.Column
	for _, field := range strings.Split(spec, ",") {
		parts := strings.Split(strings.TrimSpace(field), ":")
		if len(parts) < 2 {
			return record.Schema{}, errors.Errorf("invalid column spec %q", field)
		}
		name := parts[0]
		kind := strings.ToLower(parts[1])
		col := record.Column{Name: name}
		switch kind {
		case "int":
			col.Kind = record.Int
		case "float":
			col.Kind = record.Float
		case "char":
			if len(parts) != 3 {
				return record.Schema{}, errors.Errorf("char column %q needs a size", name)
			}
			size, err := strconv.Atoi(parts[2])
			if err != nil {
				return record.Schema{}, errors.Wrapf(err, "column %s size", name)
			}
			col.Kind = record.Char
			col.Size = size
		case "varchar":
			if len(parts) != 3 {
				return record.Schema{}, errors.Errorf("varchar column %q needs a size", name)
			}
			size, err := strconv.Atoi(parts[2])
			if err != nil {
				return record.Schema{}, errors.Wrapf(err, "column %s size", name)
			}
			col.Kind = record.Varchar
			col.Size = size
		default:
			return record.Schema{}, errors.Errorf("unknown column kind %q", kind)
		}
		cols = append(cols, col)
	}
	return record.NewSchema(cols...), nil
}
