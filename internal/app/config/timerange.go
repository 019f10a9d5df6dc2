package config

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// TimeRange is a closed window in seconds. Either bound may be nil.
type TimeRange struct {
	Start *float64
	End   *float64
}

// ParseTimeRange parses "start,end" where either side may be empty.
func ParseTimeRange(value string) (*TimeRange, error) {
	parts := strings.Split(value, ",")
	if len(parts) != 2 {
		return nil, fmt.Errorf("time range must be start,end")
	}
	var tr TimeRange
	var err error
	if tr.Start, err = parseBound(parts[0]); err != nil {
		return nil, fmt.Errorf("time range start: %w", err)
	}
	if tr.End, err = parseBound(parts[1]); err != nil {
		return nil, fmt.Errorf("time range end: %w", err)
	}
	if err := tr.validate(); err != nil {
		return nil, err
	}
	return &tr, nil
}

func parseBound(s string) (*float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (tr *TimeRange) validate() error {
	if tr.Start != nil && tr.End != nil && *tr.End < *tr.Start {
		return fmt.Errorf("time range end must be >= start")
	}
	return nil
}

func (tr *TimeRange) String() string {
	if tr == nil {
		return ""
	}
	return formatBound(tr.Start) + "," + formatBound(tr.End)
}

func formatBound(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'g', -1, 64)
}

// UnmarshalYAML accepts the same "start,end" string as the command line.
func (tr *TimeRange) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	parsed, err := ParseTimeRange(s)
	if err != nil {
		return err
	}
	*tr = *parsed
	return nil
}
