package main

import "github.com/alfredjeanlab/rowkit/internal/row"

// Band is one catalog entry. The name is the primary key; the stored schema
// is derived from Fields, so field order is load-bearing.
type Band struct {
	Name    string   `json:"name"`
	Genre   string   `json:"genre"`
	Formed  int64    `json:"formed"`
	Defunct bool     `json:"defunct"`
	Members []string `json:"members"`
}

// NewBand returns a blank catalog entry for reconstruction.
func NewBand() *Band { return &Band{} }

func (b *Band) Table() string { return "bands" }

func (b *Band) Fields() []row.Field {
	return []row.Field{
		row.Text("name", &b.Name),
		row.Text("genre", &b.Genre),
		row.Int64("formed", &b.Formed),
		row.Bool("defunct", &b.Defunct),
		row.List("members", &b.Members),
	}
}
