// Package input loads the seed domain list.
package input

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/amosWeiskopf/linksieve/pkg/utils"
)

// ErrNoDomains is returned when the source holds no usable domain.
var ErrNoDomains = errors.New("no domains found")

// LoadDomains reads the domain file at path. See ReadDomains.
func LoadDomains(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open domains file: %w", err)
	}
	defer f.Close()

	domains, err := ReadDomains(f)
	if err != nil {
		return nil, fmt.Errorf("read domains file %s: %w", path, err)
	}
	return domains, nil
}

// ReadDomains reads one domain per record from delimited text, taking the
// first column. Blank values are skipped and repeats dropped, keeping the
// first occurrence.
func ReadDomains(r io.Reader) ([]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = true

	var domains []string
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(record) == 0 {
			continue
		}
		if d := strings.TrimSpace(record[0]); d != "" {
			domains = append(domains, d)
		}
	}

	domains = utils.UniqueStrings(domains)
	if len(domains) == 0 {
		return nil, ErrNoDomains
	}
	return domains, nil
}
