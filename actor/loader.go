package actor

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/flowprobe/flowprobe/core"
	"github.com/flowprobe/flowprobe/internal/util"
	"github.com/flowprobe/flowprobe/logging"
)

// Column aliases a data file may use for the two fields we care about.
// Matching is exact against the header cell after trimming.
var (
	phoneColumns = []string{
		"Employee Phone", "employee_phone", "Phone", "phone",
		"Mobile", "mobile", "PhoneNumber", "phone_number",
		"Contact", "contact", "Number", "number",
	}
	nameColumns = []string{
		"Employee Name", "employee_name", "Name", "name",
		"FullName", "full_name", "FirstName", "first_name",
		"LastName", "last_name", "DisplayName", "display_name",
	}
)

// DefaultActors is the fallback list used when no data file is available.
func DefaultActors() []core.Actor {
	return []core.Actor{{Phone: "919705184409", Name: "Nikhil", Raw: map[string]string{}}}
}

// Loader reads actor rows from CSV data files.
type Loader struct {
	logger logging.Logger
}

// NewLoader constructs a Loader. A nil logger is replaced with a no-op one.
func NewLoader(logger logging.Logger) *Loader {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &Loader{logger: logger}
}

// Load reads up to count actors from the CSV file at path. A missing or
// unreadable file falls back to the default actor list rather than failing
// the run; rows without a usable phone number are skipped, and rows without
// a name get a generated "Employee N" one.
func (l *Loader) Load(path string, count int) []core.Actor {
	if count < 1 {
		count = 1
	}

	f, err := os.Open(path)
	if err != nil {
		l.logger.Warn("actor data file unavailable, using defaults", "path", path, "error", err.Error())
		return DefaultActors()
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	rows, err := r.ReadAll()
	if err != nil {
		l.logger.Warn("actor data file unreadable, using defaults", "path", path, "error", err.Error())
		return DefaultActors()
	}
	if len(rows) < 2 {
		l.logger.Warn("actor data file has no rows, using defaults", "path", path)
		return DefaultActors()
	}

	header := rows[0]
	phoneIdx := columnIndex(header, phoneColumns)
	nameIdx := columnIndex(header, nameColumns)
	if phoneIdx < 0 {
		l.logger.Warn("actor data file has no phone column, using defaults", "path", path)
		return DefaultActors()
	}

	var actors []core.Actor
	for i, row := range rows[1:] {
		if len(actors) >= count {
			break
		}

		phone := cell(row, phoneIdx)
		normalized, ok := util.NormalizePhone(phone)
		if !ok {
			l.logger.Warn("row skipped: invalid phone", "row", i+1, "phone", phone)
			continue
		}

		name := cell(row, nameIdx)
		if name == "" {
			name = fmt.Sprintf("Employee %d", i+1)
		}

		raw := map[string]string{}
		for j, h := range header {
			raw[strings.TrimSpace(h)] = cell(row, j)
		}

		actors = append(actors, core.Actor{Phone: normalized, Name: name, Raw: raw})
	}

	if len(actors) == 0 {
		l.logger.Warn("no usable rows in actor data file, using defaults", "path", path)
		return DefaultActors()
	}

	l.logger.Info("actors loaded", "path", path, "count", len(actors))
	return actors
}

func columnIndex(header []string, candidates []string) int {
	for _, want := range candidates {
		for i, h := range header {
			if strings.TrimSpace(h) == want {
				return i
			}
		}
	}
	return -1
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
