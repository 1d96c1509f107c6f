package formatting_test

import (
	"errors"
	"testing"

	"github.com/sifterhq/sifter/pkg/formatting"
)

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    payload
		wantErr bool
	}{
		{
			"direct json",
			`{"name": "widget", "count": 3}`,
			payload{Name: "widget", Count: 3},
			false,
		},
		{
			"json fence",
			"```json\n{\"name\": \"widget\", \"count\": 3}\n```",
			payload{Name: "widget", Count: 3},
			false,
		},
		{
			"bare fence",
			"```\n{\"name\": \"widget\"}\n```",
			payload{Name: "widget"},
			false,
		},
		{
			"fence with surrounding prose",
			"Here is the result:\n```json\n{\"count\": 7}\n```\nLet me know!",
			payload{Count: 7},
			false,
		},
		{
			"leading whitespace",
			"\n\n  {\"count\": 1}  ",
			payload{Count: 1},
			false,
		},
		{
			"not json",
			"the file looks like inventory data",
			payload{},
			true,
		},
		{
			"fenced non-json",
			"```\nnot json either\n```",
			payload{},
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := formatting.Parse[payload](tt.content)
			if tt.wantErr {
				if !errors.Is(err, formatting.ErrParseFailed) {
					t.Errorf("got %v, want ErrParseFailed", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}
