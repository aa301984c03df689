package sanitize_test

import (
	"testing"

	"github.com/vektorlab/chwire/sanitize"
)

func TestSQL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"spec scenario", "SELECT * FROM users WHERE name = 'Alice' AND age = 30", "SELECT * FROM users WHERE name = ? AND age = ?"},
		{"escaped quote", "WHERE name = 'it''s'", "WHERE name = ?"},
		{"float literal", "WHERE score > 3.14", "WHERE score > ?"},
		{"in list", "WHERE id IN (1, 2, 3)", "WHERE id IN (?, ?, ?)"},
		{"whitespace collapse", "SELECT  id\n\tFROM  users", "SELECT id FROM users"},
		{"leading trailing space", "  SELECT 1  ", "SELECT ?"},
		{"no replace in identifier", "SELECT t1.id FROM t1", "SELECT t1.id FROM t1"},
		{"negative number", "WHERE x = -5", "WHERE x = -?"},
		{"multiple string literals", "INSERT INTO t (a, b) VALUES ('x', 'y')", "INSERT INTO t (a, b) VALUES (?, ?)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := sanitize.SQL(tt.in)
			if got != tt.want {
				t.Errorf("SQL(%q)\n got  %q\n want %q", tt.in, got, tt.want)
			}
		})
	}
}
