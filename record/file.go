package record

import (
	"context"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/Devenc042/MyZeDeDup/lang"
	"github.com/Devenc042/MyZeDeDup/pkg"
)

// Pair is a master record and a candidate record to merge into it.
type Pair struct {
	Master    *Patient
	Candidate *Patient
}

// document is the on-disk layout of a record file:
//
//	pairs:
//	  - master:
//	      firstName: Devendra
//	      lastName: Choudhary
//	      address: A119, IIT Kanpur
//	      lastUpdateDate: 17-07-2017
//	    candidate:
//	      ...
type document struct {
	Pairs []pairDoc `yaml:"pairs"`
}

type pairDoc struct {
	Master    *patientDoc `yaml:"master"`
	Candidate *patientDoc `yaml:"candidate"`
}

type patientDoc struct {
	FirstName      string `yaml:"firstName"`
	LastName       string `yaml:"lastName"`
	Address        string `yaml:"address"`
	LastUpdateDate string `yaml:"lastUpdateDate,omitempty"`
}

func (d *patientDoc) patient() (*Patient, error) {
	p := &Patient{FirstName: d.FirstName, LastName: d.LastName, Address: d.Address}

	if d.LastUpdateDate != "" {
		t, err := lang.ParseDate(d.LastUpdateDate, "")
		if err != nil {
			return nil, pkg.ErrInvalidDate.Wrapf("%s %q", LastUpdateDate, d.LastUpdateDate)
		}

		p.LastUpdateDate = t
	}

	return p, nil
}

func docOf(p *Patient) patientDoc {
	d := patientDoc{FirstName: p.FirstName, LastName: p.LastName, Address: p.Address}
	if !p.LastUpdateDate.IsZero() {
		d.LastUpdateDate = p.LastUpdateDate.Format(lang.DateLayout)
	}

	return d
}

// Decode reads record pairs from YAML. Unknown fields are rejected, and
// dates use [lang.DateLayout].
func Decode(ctx context.Context, r io.Reader) ([]Pair, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, pkg.ErrReadInput.Wrap(err)
	}

	var doc document

	err = yaml.UnmarshalContext(ctx, data, &doc, yaml.DisallowUnknownField())
	if err != nil {
		return nil, pkg.ErrYAMLUnmarshal.Wrap(err)
	}

	pairs := make([]Pair, 0, len(doc.Pairs))

	for i, pd := range doc.Pairs {
		if pd.Master == nil || pd.Candidate == nil {
			return nil, pkg.ErrInvalidRecord.Wrapf("pair %d: master and candidate are required", i)
		}

		master, err := pd.Master.patient()
		if err != nil {
			return nil, pkg.ErrInvalidRecord.Wrapf("pair %d master", i).Wrap(err)
		}

		candidate, err := pd.Candidate.patient()
		if err != nil {
			return nil, pkg.ErrInvalidRecord.Wrapf("pair %d candidate", i).Wrap(err)
		}

		pairs = append(pairs, Pair{Master: master, Candidate: candidate})
	}

	return pairs, nil
}

// Load reads record pairs from the YAML file at path.
func Load(ctx context.Context, path string) ([]Pair, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, pkg.ErrReadInput.Wrap(err)
	}
	defer f.Close()

	return Decode(ctx, f)
}

// Encode writes patients to w as a YAML sequence.
func Encode(ctx context.Context, w io.Writer, patients ...*Patient) error {
	docs := make([]patientDoc, len(patients))
	for i, p := range patients {
		docs[i] = docOf(p)
	}

	data, err := yaml.MarshalContext(ctx, docs, yaml.Indent(2))
	if err != nil {
		return pkg.ErrYAMLMarshal.Wrap(err)
	}

	_, err = w.Write(data)

	return err
}

// Demo returns the record pair merged by the original demonstration: a
// master record from July 2017 and a newer candidate with a new address.
func Demo() Pair {
	date := func(s string) time.Time {
		t, err := lang.ParseDate(s, "")
		if err != nil {
			panic("record: invalid demo date " + strconv.Quote(s))
		}

		return t
	}

	return Pair{
		Master: New("Devendra", "Choudhary", "A119,IIT Kanpur",
			date("17-07-2017")),
		Candidate: New("Deven", "Choudhary", "plot 237, Prashanit Hill, Hyderabad",
			date("16-11-2017")),
	}
}
