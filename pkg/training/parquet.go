package training

import (
	"fmt"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/reader"
	"github.com/xitongsys/parquet-go/writer"

	"github.com/maadabrandon/divvy-trip-predictor/pkg/frame"
)

// Training tables are entirely numeric once feature engineering has run, so
// they cache as parquet files of DOUBLE columns, one per table column.

func writeTrainingParquet(path string, table *frame.Table) error {
	columns := table.Columns()

	metadata := make([]string, len(columns))
	for i, name := range columns {
		metadata[i] = fmt.Sprintf("name=%s, type=DOUBLE", name)
	}

	fileWriter, err := local.NewLocalFileWriter(path)
	if err != nil {
		return fmt.Errorf("create parquet file: %w", err)
	}
	defer fileWriter.Close()

	parquetWriter, err := writer.NewCSVWriter(metadata, fileWriter, 4)
	if err != nil {
		return fmt.Errorf("create parquet writer: %w", err)
	}

	for row := 0; row < table.Len(); row++ {
		record := make([]interface{}, len(columns))
		for i, name := range columns {
			value, ok := table.Float(name, row)
			if !ok {
				return fmt.Errorf("column %s row %d is not numeric", name, row)
			}
			record[i] = value
		}

		if err := parquetWriter.Write(record); err != nil {
			return fmt.Errorf("write parquet row: %w", err)
		}
	}

	if err := parquetWriter.WriteStop(); err != nil {
		return fmt.Errorf("finish parquet file: %w", err)
	}

	return nil
}

// readTrainingParquet rebuilds a table from a cached parquet file. Column
// names are recovered from the deterministic order writeTrainingParquet laid
// them out in.
func readTrainingParquet(path string, columns []string) (*frame.Table, error) {
	fileReader, err := local.NewLocalFileReader(path)
	if err != nil {
		return nil, fmt.Errorf("open parquet file: %w", err)
	}
	defer fileReader.Close()

	parquetReader, err := reader.NewParquetColumnReader(fileReader, 4)
	if err != nil {
		return nil, fmt.Errorf("create parquet reader: %w", err)
	}
	defer parquetReader.ReadStop()

	rows := parquetReader.GetNumRows()
	table := frame.New()

	for i, name := range columns {
		values, _, _, err := parquetReader.ReadColumnByIndex(int64(i), rows)
		if err != nil {
			return nil, fmt.Errorf("read parquet column %s: %w", name, err)
		}

		cells := make([]any, len(values))
		for j, value := range values {
			number, ok := value.(float64)
			if !ok {
				return nil, fmt.Errorf("column %s row %d is not a DOUBLE", name, j)
			}
			cells[j] = number
		}

		if err := table.AddColumn(name, cells); err != nil {
			return nil, err
		}
	}

	return table, nil
}
