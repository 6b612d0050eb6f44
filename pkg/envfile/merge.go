package envfile

import "fmt"

// Default is one desired entry: a key that must be assigned, and the value
// to assign when it is not. Generate, when set, produces the value lazily
// so secrets are only minted for keys that are actually absent.
type Default struct {
	Key      string
	Value    string
	Generate func() (string, error)
}

// Table is an ordered desired-defaults table. Order controls output
// readability only.
type Table []Default

// Change records the outcome for one desired key.
type Change struct {
	Key   string
	Value string
	Added bool
}

// Report is the per-key outcome of a merge pass.
type Report []Change

// Added returns the number of keys appended by the pass.
func (r Report) Added() int {
	n := 0
	for _, c := range r {
		if c.Added {
			n++
		}
	}
	return n
}

// Merge reconciles the file against the table in memory. A key already
// assigned keeps its value untouched, pre-existing duplicates included.
// Absent keys are appended in table order under a header comment. Running
// the same merge twice is a no-op the second time.
//
// The caller persists the result with WriteAtomic; Merge itself never
// touches the filesystem.
func Merge(f *File, table Table, header string) (Report, error) {
	report := make(Report, 0, len(table))
	wroteHeader := false

	for _, d := range table {
		if f.ContainsKey(d.Key) {
			report = append(report, Change{Key: d.Key})
			continue
		}

		value := d.Value
		if d.Generate != nil {
			v, err := d.Generate()
			if err != nil {
				return nil, fmt.Errorf("generate value for %s: %w", d.Key, err)
			}
			value = v
		}

		if header != "" && !wroteHeader {
			f.AppendComment(header)
			wroteHeader = true
		}
		f.Append(d.Key, value)
		report = append(report, Change{Key: d.Key, Value: value, Added: true})
	}

	return report, nil
}
