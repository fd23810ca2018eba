package repository

import (
	"errors"
	"testing"
)

func TestCandidateFilterValidate(t *testing.T) {
	cases := []struct {
		name    string
		filter  CandidateFilter
		wantErr bool
	}{
		{name: "zero value", filter: CandidateFilter{}},
		{
			name:   "all fields set",
			filter: CandidateFilter{Skills: []string{"Python"}, Location: "Berlin", MinRating: 4, Languages: []string{"German"}},
		},
		{name: "min rating at upper bound", filter: CandidateFilter{MinRating: 5}},
		{name: "negative rating", filter: CandidateFilter{MinRating: -0.1}, wantErr: true},
		{name: "rating above scale", filter: CandidateFilter{MinRating: 5.1}, wantErr: true},
		{name: "blank skill entry", filter: CandidateFilter{Skills: []string{"Go", "  "}}, wantErr: true},
		{name: "blank language entry", filter: CandidateFilter{Languages: []string{""}}, wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.filter.Validate()
			if tc.wantErr {
				if !errors.Is(err, ErrInvalidFilter) {
					t.Fatalf("expected ErrInvalidFilter, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected err: %v", err)
			}
		})
	}
}
