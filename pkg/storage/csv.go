package storage

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"feedharvest/pkg/models"
)

var csvHeader = []string{
	"display_name",
	"handle",
	"text",
	"timestamp",
	"permalink",
	"replies",
	"retweets",
	"likes",
}

// EncodeCSV writes records as UTF-8 CSV with a header row. Absent
// timestamps and permalinks become empty cells.
func EncodeCSV(w io.Writer, records []models.Record) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, r := range records {
		row := []string{
			r.DisplayName,
			r.Handle,
			r.Text,
			r.TimestampString(),
			r.PermalinkString(),
			strconv.Itoa(r.Replies),
			strconv.Itoa(r.Retweets),
			strconv.Itoa(r.Likes),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}
