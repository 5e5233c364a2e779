package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSchema(t *testing.T) {
	tests := []struct {
		name    string
		columns []string
		wantErr string
	}{
		{name: "valid", columns: []string{ColEntityID, ColReferencePeriod, ColVersion}},
		{name: "empty table", columns: nil},
		{name: "empty name", columns: []string{ColEntityID, ""}, wantErr: "column 1 has an empty name"},
		{name: "duplicate", columns: []string{ColEntityID, ColEntityID}, wantErr: `duplicate column "CNPJ_Fundo_Classe"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewSchema(tt.columns)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantErr, err.Error())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, len(tt.columns), s.Len())
		})
	}
}

func TestSchema_ColumnsIsACopy(t *testing.T) {
	s, err := NewSchema([]string{"a", "b"})
	require.NoError(t, err)

	cols := s.Columns()
	cols[0] = "z"

	assert.Equal(t, []string{"a", "b"}, s.Columns())
	assert.True(t, s.Has("a"))
	assert.False(t, s.Has("z"))
}

func TestNewTable_RowWidth(t *testing.T) {
	s, err := NewSchema([]string{"a", "b"})
	require.NoError(t, err)

	_, err = NewTable("t", s, [][]Value{{String("1"), String("2")}, {String("1")}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 1 has 1 cells")

	_, err = NewTable("t", nil, nil)
	assert.Error(t, err)
}

func TestTable_Cell(t *testing.T) {
	s, err := NewSchema([]string{"a", "b"})
	require.NoError(t, err)
	table, err := NewTable("t", s, [][]Value{{String("x"), Absent()}})
	require.NoError(t, err)

	assert.Equal(t, 1, table.Len())
	assert.Equal(t, "x", table.Cell(0, "a").Text())
	assert.True(t, table.Cell(0, "b").IsAbsent())
	assert.True(t, table.Cell(0, "missing").IsAbsent())
}

func TestRecord_Get(t *testing.T) {
	s, err := NewSchema([]string{ColEntityID, "Nome"})
	require.NoError(t, err)

	key := Key{EntityID: "a", ReferencePeriod: time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)}
	rec := NewRecord(key, Absent(), s, []Value{String("a"), String("Fundo Alfa")})

	assert.Equal(t, "a@2024-01-31", rec.Key.String())
	assert.Equal(t, "Fundo Alfa", rec.Get("Nome").Text())
	assert.True(t, rec.Get("missing").IsAbsent())
	assert.True(t, rec.Has("Nome"))
	assert.False(t, rec.Has("missing"))
	assert.Equal(t, []string{"a", "Fundo Alfa"}, rec.Strings())

	var empty Record
	assert.True(t, empty.Get("Nome").IsAbsent())
	assert.False(t, empty.Has("Nome"))
}
