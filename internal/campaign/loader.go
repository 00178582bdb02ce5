// Package campaign loads the tabular campaigns source. Columns are resolved
// by header name; spend/revenue columns carry a currency suffix such as
// spend_BRL, so those two are matched by prefix.
package campaign

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"adsight/internal/domain"
)

// ErrMissingColumn is returned when the header lacks a required column.
var ErrMissingColumn = errors.New("missing column")

const dateLayout = "2006-01-02"

type columns struct {
	date, channel, spend, revenue, impressions, clicks, conversions int
}

// Load reads campaign records from a CSV file.
func Load(path string) ([]domain.CampaignRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	records, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}

// Read parses campaign records from CSV data. Numeric fields are coerced to
// float64 up front so string-encoded numbers are accepted; anything that
// fails to parse is a load-time error, not a deferred one.
func Read(r io.Reader) ([]domain.CampaignRecord, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	cols, err := resolveColumns(header)
	if err != nil {
		return nil, err
	}

	var out []domain.CampaignRecord
	line := 1
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		line++
		rec, err := parseRow(row, cols)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

func resolveColumns(header []string) (columns, error) {
	cols := columns{date: -1, channel: -1, spend: -1, revenue: -1, impressions: -1, clicks: -1, conversions: -1}
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(name))
		switch {
		case name == "date":
			cols.date = i
		case name == "channel":
			cols.channel = i
		case strings.HasPrefix(name, "spend"):
			cols.spend = i
		case strings.HasPrefix(name, "revenue"):
			cols.revenue = i
		case name == "impressions":
			cols.impressions = i
		case name == "clicks":
			cols.clicks = i
		case name == "conversions":
			cols.conversions = i
		}
	}
	for name, idx := range map[string]int{
		"date": cols.date, "channel": cols.channel, "spend": cols.spend, "revenue": cols.revenue,
		"impressions": cols.impressions, "clicks": cols.clicks, "conversions": cols.conversions,
	} {
		if idx < 0 {
			return cols, fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
	}
	return cols, nil
}

func parseRow(row []string, cols columns) (domain.CampaignRecord, error) {
	var rec domain.CampaignRecord
	date, err := time.Parse(dateLayout, strings.TrimSpace(row[cols.date]))
	if err != nil {
		return rec, fmt.Errorf("bad date: %w", err)
	}
	rec.Date = date
	rec.Channel = strings.TrimSpace(row[cols.channel])
	for _, f := range []struct {
		name string
		idx  int
		dst  *float64
	}{
		{"spend", cols.spend, &rec.Spend},
		{"revenue", cols.revenue, &rec.Revenue},
		{"impressions", cols.impressions, &rec.Impressions},
		{"clicks", cols.clicks, &rec.Clicks},
		{"conversions", cols.conversions, &rec.Conversions},
	} {
		v, err := strconv.ParseFloat(strings.TrimSpace(row[f.idx]), 64)
		if err != nil {
			return rec, fmt.Errorf("bad %s value %q", f.name, row[f.idx])
		}
		if v < 0 {
			v = 0
		}
		*f.dst = v
	}
	return rec, nil
}
