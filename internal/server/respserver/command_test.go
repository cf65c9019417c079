package respserver

import (
	"errors"
	"reflect"
	"testing"

	"github.com/yndnr/respkv/internal/core/domain"
)

func TestBuild(t *testing.T) {
	tests := []struct {
		name    string
		tokens  []Token
		want    Command
		wantErr error
	}{
		{
			name:   "name only",
			tokens: []Token{Bulk("PING")},
			want:   Command{Name: "PING", Args: []string{}},
		},
		{
			name:   "name and args",
			tokens: []Token{Bulk("set"), Bulk("k"), Bulk("v")},
			want:   Command{Name: "set", Args: []string{"k", "v"}},
		},
		{
			name:   "empty argument",
			tokens: []Token{Bulk("ECHO"), Bulk("")},
			want:   Command{Name: "ECHO", Args: []string{""}},
		},
		{
			name:    "no tokens",
			tokens:  []Token{},
			wantErr: domain.ErrNullCommandName,
		},
		{
			name:    "null name",
			tokens:  []Token{NullToken(), Bulk("k")},
			wantErr: domain.ErrNullCommandName,
		},
		{
			name:    "null argument",
			tokens:  []Token{Bulk("GET"), NullToken()},
			wantErr: domain.ErrNullArgument,
		},
		{
			name:    "null argument after valid ones",
			tokens:  []Token{Bulk("SET"), Bulk("k"), Bulk("v"), NullToken()},
			wantErr: domain.ErrNullArgument,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Build(Array{Tokens: tt.tokens})
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Build() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Build() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Build() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestCommand_Upper(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"get", "GET"},
		{"GET", "GET"},
		{"GeT", "GET"},
		{"ping", "PING"},
		{"", ""},
		{"tm.get", "TM.GET"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := (Command{Name: tt.name}).Upper(); got != tt.want {
				t.Errorf("Upper() = %q, want %q", got, tt.want)
			}
		})
	}
}
