package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/malzahar-project/heapfiledb/heapfile"
	"github.com/malzahar-project/heapfiledb/record"
)

func newCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create <file>",
		Short: "create a new heap file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return heapfile.Create(the.dm, the.bm, args[0])
		},
	}
}

func newDestroyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "destroy <file>",
		Short: "remove a heap file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return heapfile.Destroy(the.dm, args[0])
		},
	}
}

func newInsertCmd() *cobra.Command {
	var schemaSpec string
	cmd := &cobra.Command{
		Use:   "insert <file> <value,value,...>",
		Short: "append one record, encoded by --schema",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			schema, err := parseSchema(schemaSpec)
			if err != nil {
				return err
			}
			buf, err := schema.Encode(strings.Split(args[1], ","))
			if err != nil {
				return err
			}

			hf, err := heapfile.Open(the.dm, the.bm, args[0])
			if err != nil {
				return err
			}
			defer hf.Close()

			rid, err := heapfile.NewInsert(hf).InsertRecord(buf)
			if err != nil {
				return err
			}
			fmt.Printf("inserted at (%d,%d)\n", rid.PageNo, rid.SlotNo)
			return nil
		},
	}
	cmd.Flags().StringVar(&schemaSpec, "schema", "", "column spec, e.g. id:int,gpa:float,name:varchar:16")
	return cmd
}

func parseRID(s string) (heapfile.RID, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return heapfile.NULL_RID, fmt.Errorf("rid must be page:slot, got %q", s)
	}
	page, err := strconv.ParseInt(parts[0], 10, 32)
	if err != nil {
		return heapfile.NULL_RID, err
	}
	slot, err := strconv.ParseInt(parts[1], 10, 16)
	if err != nil {
		return heapfile.NULL_RID, err
	}
	return heapfile.RID{PageNo: int32(page), SlotNo: int16(slot)}, nil
}

func newGetCmd() *cobra.Command {
	var schemaSpec string
	cmd := &cobra.Command{
		Use:   "get <file> <page:slot>",
		Short: "look up one record by rid, decoded by --schema",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rid, err := parseRID(args[1])
			if err != nil {
				return err
			}
			schema, err := parseSchema(schemaSpec)
			if err != nil {
				return err
			}

			hf, err := heapfile.Open(the.dm, the.bm, args[0])
			if err != nil {
				return err
			}
			defer hf.Close()

			raw, err := hf.GetRecord(rid)
			if err != nil {
				return err
			}
			values, err := schema.Decode(raw)
			if err != nil {
				return err
			}
			fmt.Println(strings.Join(values, ","))
			return nil
		},
	}
	cmd.Flags().StringVar(&schemaSpec, "schema", "", "column spec")
	return cmd
}

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <file> <page:slot>",
		Short: "delete one record by rid",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rid, err := parseRID(args[1])
			if err != nil {
				return err
			}

			hf, err := heapfile.Open(the.dm, the.bm, args[0])
			if err != nil {
				return err
			}
			defer hf.Close()

			scan := heapfile.NewScan(hf)
			defer scan.EndScan()
			for {
				candidate, err := scan.ScanNext()
				if err == heapfile.ErrFileEOF {
					return fmt.Errorf("rid %+v not found", rid)
				}
				if err != nil {
					return err
				}
				if candidate == rid {
					return scan.DeleteRecord()
				}
			}
		},
	}
}

func newScanCmd() *cobra.Command {
	var (
		schemaSpec string
		offset     int
		length     int
		fieldType  string
		op         string
		value      string
	)
	cmd := &cobra.Command{
		Use:   "scan <file>",
		Short: "scan every record, optionally filtered",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			schema, err := parseSchema(schemaSpec)
			if err != nil {
				return err
			}

			hf, err := heapfile.Open(the.dm, the.bm, args[0])
			if err != nil {
				return err
			}
			defer hf.Close()

			scan := heapfile.NewScan(hf)
			defer scan.EndScan()

			if value != "" {
				ft, cop, filter, err := buildFilter(fieldType, op, value)
				if err != nil {
					return err
				}
				if err := scan.StartScan(offset, length, ft, filter, cop); err != nil {
					return err
				}
			}

			for {
				_, err := scan.ScanNext()
				if err == heapfile.ErrFileEOF {
					return nil
				}
				if err != nil {
					return err
				}
				raw, err := scan.GetRecord()
				if err != nil {
					return err
				}
				values, err := schema.Decode(raw)
				if err != nil {
					return err
				}
				fmt.Println(strings.Join(values, ","))
			}
		},
	}
	cmd.Flags().StringVar(&schemaSpec, "schema", "", "column spec")
	cmd.Flags().IntVar(&offset, "offset", 0, "byte offset of the filtered field")
	cmd.Flags().IntVar(&length, "length", 4, "byte length of the filtered field")
	cmd.Flags().StringVar(&fieldType, "type", "int", "int|float|string")
	cmd.Flags().StringVar(&op, "op", "eq", "lt|lte|eq|gte|gt|ne")
	cmd.Flags().StringVar(&value, "value", "", "filter value; empty means unfiltered")
	return cmd
}

func buildFilter(fieldType, op, value string) (heapfile.FieldType, heapfile.CompareOp, []byte, error) {
	var ft heapfile.FieldType
	switch strings.ToLower(fieldType) {
	case "int":
		ft = heapfile.Int
	case "float":
		ft = heapfile.Float
	case "string":
		ft = heapfile.String
	default:
		return 0, 0, nil, fmt.Errorf("unknown field type %q", fieldType)
	}

	var cop heapfile.CompareOp
	switch strings.ToLower(op) {
	case "lt":
		cop = heapfile.LT
	case "lte":
		cop = heapfile.LTE
	case "eq":
		cop = heapfile.EQ
	case "gte":
		cop = heapfile.GTE
	case "gt":
		cop = heapfile.GT
	case "ne":
		cop = heapfile.NE
	default:
		return 0, 0, nil, fmt.Errorf("unknown operator %q", op)
	}

	switch ft {
	case heapfile.Int:
		v, err := strconv.ParseInt(value, 10, 32)
		if err != nil {
			return 0, 0, nil, err
		}
		return ft, cop, encodeLE32(uint32(int32(v))), nil
	case heapfile.Float:
		col := record.NewSchema(record.Column{Name: "v", Kind: record.Float})
		buf, err := col.Encode([]string{value})
		if err != nil {
			return 0, 0, nil, err
		}
		return ft, cop, buf, nil
	default:
		return ft, cop, []byte(value), nil
	}
}

func encodeLE32(v uint32) []byte {
	return []byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)}
}
