package audit

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/frahmantamala/backoffice/internal"
)

// FlexInt accepts 5, "5", 5.0 or null. Fractions and anything unparsable decode as zero
// so the default applies; values beyond the int range saturate.
type FlexInt int

func (f *FlexInt) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	*f = 0
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}

	var raw string
	var n json.Number
	if err := json.Unmarshal(b, &n); err == nil {
		raw = string(n)
	} else if err := json.Unmarshal(b, &raw); err != nil {
		return nil
	}

	if v, ok := parseWhole(raw); ok {
		*f = FlexInt(v)
	}
	return nil
}

func parseWhole(s string) (int, bool) {
	s = strings.TrimSpace(s)
	v, err := strconv.ParseInt(s, 10, strconv.IntSize)
	if err == nil || errors.Is(err, strconv.ErrRange) {
		return int(v), true
	}

	fv, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(fv) || fv != math.Trunc(fv) {
		return 0, false
	}
	switch {
	case fv >= math.MaxInt:
		return math.MaxInt, true
	case fv <= math.MinInt:
		return math.MinInt, true
	}
	return int(fv), true
}

// ListRequestDTO is the body of POST /auditlogs.
type ListRequestDTO struct {
	Page      FlexInt `json:"page"`
	Limit     FlexInt `json:"limit"`
	BeginDate string  `json:"begin_date"`
	EndDate   string  `json:"end_date"`
	Action    string  `json:"action"`
	Resource  string  `json:"resource"`
	Email     string  `json:"email"`
}

var dateLayouts = []string{"2006-01-02", time.RFC3339Nano, time.RFC3339}

func parseDate(field, value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return &t, nil
		}
	}
	return nil, internal.NewValidationFieldError(field, internal.MsgFieldMustBeType,
		field+" must be a date", internal.ErrCodeInvalidDate, field, "YYYY-MM-DD")
}

func (d ListRequestDTO) ToQuery() (Query, error) {
	begin, err := parseDate("begin_date", d.BeginDate)
	if err != nil {
		return Query{}, err
	}
	end, err := parseDate("end_date", d.EndDate)
	if err != nil {
		return Query{}, err
	}
	return Query{
		Page:      int(d.Page),
		Limit:     int(d.Limit),
		BeginDate: begin,
		EndDate:   end,
		Action:    d.Action,
		Resource:  d.Resource,
		Email:     d.Email,
	}, nil
}

type Pagination struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"totalPages"`
}

type ListResponse struct {
	Data       []Entry    `json:"data"`
	Pagination Pagination `json:"pagination"`
}

func (p *Page) ToResponse() ListResponse {
	entries := p.Entries
	if entries == nil {
		entries = []Entry{}
	}
	return ListResponse{
		Data: entries,
		Pagination: Pagination{
			Total:      p.Total,
			Page:       p.Page,
			Limit:      p.Limit,
			TotalPages: p.TotalPages,
		},
	}
}
