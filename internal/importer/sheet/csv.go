package sheet

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"

	enc "github.com/MrJamesThe3rd/procura/internal/encoding"
)

// CSV parses semicolon or comma separated exports in any supported encoding.
type CSV struct{}

func NewCSV() *CSV {
	return &CSV{}
}

func (p *CSV) Parse(r io.Reader) (*Result, error) {
	utf8r, err := enc.NewUTF8Reader(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	br := bufio.NewReader(utf8r)

	head, _ := br.Peek(2048)

	reader := csv.NewReader(br)
	reader.Comma = delimiter(head)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	return parseTable(rows)
}

// delimiter picks ';' unless the first lines have more commas, or tabs.
func delimiter(head []byte) rune {
	best, n := ';', bytes.Count(head, []byte{';'})

	for _, r := range []rune{'\t', ','} {
		if c := bytes.Count(head, []byte{byte(r)}); c > n {
			best, n = r, c
		}
	}

	return best
}
