// Package extractor pulls metric observations out of restoration log lines.
//
// A line is classified by an ordered list of rules; the first rule whose
// pattern matches decides the line's Kind, even if its numbers then fail to
// parse. Recognized shapes with the default rules:
//
//	img_ind: 0, PSNR: 20.00, LPIPS: 0.1000   -> PerItem (PSNR and LPIPS)
//	Total Average PSNR: 21.00                -> SummaryPSNR
//	Total Average LPIPS: 0.1500              -> SummaryLPIPS
package extractor

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/tp-distribuidos-2c2025/streamagg/protocol/record"
)

// Kind tags what a line was recognized as.
type Kind int

const (
	Unrecognized Kind = iota
	PerItem
	SummaryPSNR
	SummaryLPIPS
)

func (k Kind) String() string {
	switch k {
	case Unrecognized:
		return "Unrecognized"
	case PerItem:
		return "PerItem"
	case SummaryPSNR:
		return "SummaryPSNR"
	case SummaryLPIPS:
		return "SummaryLPIPS"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

const (
	MetricPSNR  = "PSNR"
	MetricLPIPS = "LPIPS"

	// PerItemMarker identifies per-image evaluation lines.
	PerItemMarker = "img_ind"

	SummaryPSNRPrefix  = "Total Average PSNR:"
	SummaryLPIPSPrefix = "Total Average LPIPS:"
)

// Observation is one named metric value.
type Observation struct {
	Metric string
	Value  float64
}

// Result is the classification of a single line. Observations is empty for
// unrecognized lines and for recognized lines whose numbers did not parse.
type Result struct {
	Kind         Kind
	Observations []Observation
}

// MetricPattern finds "<Name>: <number>" anywhere in a line.
type MetricPattern struct {
	Name    string
	pattern *regexp.Regexp
}

// NewMetricPattern builds the pattern for a metric name.
func NewMetricPattern(name string) MetricPattern {
	return MetricPattern{
		Name:    name,
		pattern: regexp.MustCompile(regexp.QuoteMeta(name) + `:\s*([0-9]+\.?[0-9]*)`),
	}
}

// find returns the captured number text, if the metric occurs in line.
func (m MetricPattern) find(line string) (string, bool) {
	match := m.pattern.FindStringSubmatch(line)
	if match == nil {
		return "", false
	}
	return match[1], true
}

// Rule reports whether it matches a line and, if so, the observations it
// extracted. A match with nil observations means the line is dropped.
type Rule struct {
	Kind  Kind
	Match func(line string) (observations []Observation, matched bool)
}

// PerItemRule matches lines containing marker and every metric pattern,
// emitting one observation per metric in the given order.
func PerItemRule(kind Kind, marker string, metrics ...MetricPattern) Rule {
	return Rule{
		Kind: kind,
		Match: func(line string) ([]Observation, bool) {
			raw := make([]string, len(metrics))
			for i, m := range metrics {
				text, ok := m.find(line)
				if !ok {
					return nil, false
				}
				raw[i] = text
			}
			if !strings.Contains(line, marker) {
				return nil, false
			}

			observations := make([]Observation, 0, len(metrics))
			for i, m := range metrics {
				v, err := record.ParseFloat(raw[i])
				if err != nil {
					return nil, true
				}
				observations = append(observations, Observation{Metric: m.Name, Value: v})
			}
			return observations, true
		},
	}
}

// SummaryRule matches lines starting with prefix and parses everything after
// the first colon as the metric's value.
func SummaryRule(kind Kind, prefix, metric string) Rule {
	return Rule{
		Kind: kind,
		Match: func(line string) ([]Observation, bool) {
			if !strings.HasPrefix(line, prefix) {
				return nil, false
			}
			_, rest, _ := strings.Cut(line, ":")
			v, err := record.ParseFloat(strings.TrimSpace(rest))
			if err != nil {
				return nil, true
			}
			return []Observation{{Metric: metric, Value: v}}, true
		},
	}
}

// Extractor applies rules in priority order.
type Extractor struct {
	rules []Rule
}

// New creates an Extractor with the given rules, highest priority first.
func New(rules ...Rule) *Extractor {
	return &Extractor{rules: rules}
}

// Default returns the PSNR/LPIPS extractor for restoration logs.
func Default() *Extractor {
	return New(
		PerItemRule(PerItem, PerItemMarker, NewMetricPattern(MetricPSNR), NewMetricPattern(MetricLPIPS)),
		SummaryRule(SummaryPSNR, SummaryPSNRPrefix, MetricPSNR),
		SummaryRule(SummaryLPIPS, SummaryLPIPSPrefix, MetricLPIPS),
	)
}

// Classify trims the line and returns the result of the first matching rule.
func (e *Extractor) Classify(line string) Result {
	line = strings.TrimSpace(line)
	if line == "" {
		return Result{Kind: Unrecognized}
	}

	for _, rule := range e.rules {
		observations, matched := rule.Match(line)
		if matched {
			return Result{Kind: rule.Kind, Observations: observations}
		}
	}
	return Result{Kind: Unrecognized}
}
