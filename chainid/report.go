package chainid

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Report is what we write out so a user can find which chain in the
// new file came from which chain in the old one.
type Report struct {
	Source  string   `yaml:"source,omitempty"`
	Output  string   `yaml:"output,omitempty"`
	Chains  []Rename `yaml:"chains"`
	NRename int      `yaml:"n_renamed"`
}

// NewReport fills out a report from a rename map.
func NewReport(src, out string, m RenameMap) *Report {
	return &Report{
		Source:  src,
		Output:  out,
		Chains:  m.Entries(),
		NRename: len(m.Renamed()),
	}
}

// WriteReport writes the report as yaml.
func WriteReport(w io.Writer, r *Report) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("writing chain report: %w", err)
	}
	return enc.Close()
}

// ReadReport reads back what WriteReport wrote and returns the map.
func ReadReport(r io.Reader) (*Report, RenameMap, error) {
	var rep Report
	if err := yaml.NewDecoder(r).Decode(&rep); err != nil {
		return nil, nil, fmt.Errorf("reading chain report: %w", err)
	}
	m, err := rep.Map()
	if err != nil {
		return nil, nil, err
	}
	return &rep, m, nil
}

// Map turns the chain list of a report back into a RenameMap.
func (rep *Report) Map() (RenameMap, error) {
	m := make(RenameMap, len(rep.Chains))
	for _, c := range rep.Chains {
		if _, dup := m[c.New]; dup {
			return nil, fmt.Errorf("chain report has %q twice", c.New)
		}
		m[c.New] = c.Old
	}
	return m, nil
}

// ReportStream puts many reports in one yaml file, one document each.
// It is not safe for concurrent use.
type ReportStream struct {
	enc *yaml.Encoder
}

func NewReportStream(w io.Writer) *ReportStream {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	return &ReportStream{enc: enc}
}

func (rs *ReportStream) Write(r *Report) error {
	if err := rs.enc.Encode(r); err != nil {
		return fmt.Errorf("writing chain report: %w", err)
	}
	return nil
}

// Close flushes the stream. It does not close the underlying writer.
func (rs *ReportStream) Close() error { return rs.enc.Close() }

// ReadReports reads every document of a stream.
func ReadReports(r io.Reader) ([]*Report, error) {
	var ret []*Report
	dec := yaml.NewDecoder(r)
	for {
		var rep Report
		err := dec.Decode(&rep)
		if errors.Is(err, io.EOF) {
			return ret, nil
		}
		if err != nil {
			return nil, fmt.Errorf("reading chain report %d: %w", len(ret)+1, err)
		}
		if _, err := rep.Map(); err != nil {
			return nil, err
		}
		ret = append(ret, &rep)
	}
}
