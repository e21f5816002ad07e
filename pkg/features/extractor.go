package features

import (
	"time"

	"github.com/leowmjw/go-tutor-featex/pkg/submission"
)

// ARFF attribute types shared by the extractors.
const (
	TypeNumeric = "numeric"
	TypeBoolean = "{True, False}"
)

// Extractor consumes submissions in order, one call per surviving
// submission, and grows a column of values in lockstep.
type Extractor interface {
	Name() string
	ARFFType() string
	Consume(sub *submission.Submission)
	Values() []Value
}

// CumulativeExtractor additionally maintains running max, min, mean and
// stdev columns over its raw values. UseRawValues reports whether the
// raw column is itself part of the output next to the statistics.
type CumulativeExtractor interface {
	Extractor
	MaxValues() []Value
	MinValues() []Value
	MeanValues() []Value
	StdevValues() []Value
	UseRawValues() bool
}

// pairState tracks the current and immediately preceding submission, the
// bookkeeping most extractors share.
type pairState struct {
	last, cur *submission.Submission
}

func (p *pairState) advance(sub *submission.Submission) {
	p.last = p.cur
	p.cur = sub
}

// column is a growing value slice with the trim hook every extractor
// needs.
type column struct {
	vals []Value
}

func (c *column) push(v Value)    { c.vals = append(c.vals, v) }
func (c *column) Values() []Value { return c.vals }

func (c *column) dropRow(i int) {
	c.vals = append(c.vals[:i], c.vals[i+1:]...)
}

// intPtrEq treats two nils as equal, matching how an unset problem id
// compares.
func intPtrEq(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func seconds(later, earlier *time.Time) (float64, bool) {
	if later == nil || earlier == nil {
		return 0, false
	}
	return later.Sub(*earlier).Seconds(), true
}

// stats holds the four running statistics columns of a cumulative
// extractor. observe is called once per consumed submission, after the
// raw value has been pushed; raw feeds the mean and stdev accumulators
// only when the extractor says so, while max and min always rescan the
// whole raw column for non-missing values.
type stats struct {
	meanSrc  []float64
	stdevSrc []float64

	maxCol   column
	minCol   column
	meanCol  column
	stdevCol column
}

func (s *stats) observe(raw []Value, clearSession, addMean, addStdev bool) {
	if clearSession {
		s.meanSrc = nil
		s.stdevSrc = nil
	}
	last := raw[len(raw)-1]
	if addMean {
		if f, ok := last.Float(); ok {
			s.meanSrc = append(s.meanSrc, f)
		}
	}
	if len(s.meanSrc) > 0 {
		s.meanCol.push(Number(mean(s.meanSrc)))
	} else {
		s.meanCol.push(Null())
	}
	if addStdev {
		if f, ok := last.Float(); ok {
			s.stdevSrc = append(s.stdevSrc, f)
		}
	}
	if len(s.stdevSrc) > 1 {
		s.stdevCol.push(Number(sampleStdev(s.stdevSrc)))
	} else {
		s.stdevCol.push(Null())
	}

	maxV, minV := Null(), Null()
	first := true
	for _, v := range raw {
		f, ok := v.Float()
		if !ok {
			continue
		}
		if first {
			maxV, minV = Number(f), Number(f)
			first = false
			continue
		}
		if cur, _ := maxV.Float(); f > cur {
			maxV = Number(f)
		}
		if cur, _ := minV.Float(); f < cur {
			minV = Number(f)
		}
	}
	s.maxCol.push(maxV)
	s.minCol.push(minV)
}

func (s *stats) MaxValues() []Value   { return s.maxCol.Values() }
func (s *stats) MinValues() []Value   { return s.minCol.Values() }
func (s *stats) MeanValues() []Value  { return s.meanCol.Values() }
func (s *stats) StdevValues() []Value { return s.stdevCol.Values() }

// cumulativeColumn bundles a raw column with its running statistics so
// row deletion stays in lockstep across all five columns.
type cumulativeColumn struct {
	column
	stats
}

func (c *cumulativeColumn) dropRow(i int) {
	c.column.dropRow(i)
	c.stats.maxCol.dropRow(i)
	c.stats.minCol.dropRow(i)
	c.stats.meanCol.dropRow(i)
	c.stats.stdevCol.dropRow(i)
}

// prevProblemState buckets submissions by problem so aggregates over the
// previous problem's attempts can be computed. An unset bucket id and a
// missing problem id are indistinguishable, so a submission without a
// problem id never rotates the buckets.
type prevProblemState struct {
	pairState
	prevSubs []*submission.Submission
	curSubs  []*submission.Submission
	curID    *int
}

func (p *prevProblemState) advanceProblem(sub *submission.Submission) {
	p.advance(sub)
	if p.curID == nil {
		p.curID = sub.ProblemID
	}
	if intPtrEq(p.curID, sub.ProblemID) {
		p.curSubs = append(p.curSubs, sub)
		return
	}
	p.prevSubs = p.curSubs
	p.curID = sub.ProblemID
	p.curSubs = []*submission.Submission{sub}
}

type rowDropper interface{ dropRow(int) }

// DropRows removes the given rows from every column the extractors
// carry, statistics included. Rows must be sorted highest first so
// earlier deletions do not shift later indices.
func DropRows(extractors []Extractor, rows []int) {
	for _, i := range rows {
		for _, ex := range extractors {
			if d, ok := ex.(rowDropper); ok {
				d.dropRow(i)
			}
		}
	}
}
