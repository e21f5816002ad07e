package features

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ComplexityTable maps a problem id to its difficulty rank.
type ComplexityTable map[int]int

// LoadComplexityTable reads whitespace-separated "id rank" pairs, one
// per line. Blank lines are skipped.
func LoadComplexityTable(r io.Reader) (ComplexityTable, error) {
	table := ComplexityTable{}
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) < 2 {
			return nil, fmt.Errorf("complexity table line %d: want id and rank, got %q", lineNo, scanner.Text())
		}
		id, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, fmt.Errorf("complexity table line %d: bad problem id %q", lineNo, fields[0])
		}
		rank, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, fmt.Errorf("complexity table line %d: bad rank %q", lineNo, fields[1])
		}
		table[id] = rank
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return table, nil
}

// LoadComplexityFile reads a complexity table from disk.
func LoadComplexityFile(path string) (ComplexityTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadComplexityTable(f)
}
