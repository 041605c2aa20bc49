package main

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

func TestParseCatalogSemicolonWithHeader(t *testing.T) {
	in := "categoria;nombre;descripcion;precio;cantidad\n" +
		"Frutas;Maçã Gala;kg;5,50;50\n" +
		"Padaria;Pão Francês;;0.8;\n"
	rows, err := parseCatalog(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Maçã Gala", rows[0].Name)
	assert.Equal(t, "5.5", rows[0].Price.String())
	assert.Equal(t, 50, rows[0].Quantity)
	assert.Equal(t, 0, rows[1].Quantity)
}

func TestParseCatalogLatin1(t *testing.T) {
	utf8 := "Laticínios,Leite Integral 1L,,4.20,30\n"
	encoded, err := charmap.ISO8859_1.NewEncoder().String(utf8)
	require.NoError(t, err)

	rows, err := parseCatalog(transform.NewReader(strings.NewReader(encoded), charmap.ISO8859_1.NewDecoder()))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Laticínios", rows[0].Category)
}

func TestParseCatalogRejectsBadRows(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"precio inválido", "A,B,C,1\nA,B,C,x\n"},
		{"precio negativo", "A,B,C,-1\n"},
		{"nombre vacío", "A,,C,1\n"},
		{"cantidad negativa", "A,B,C,1,-3\n"},
		{"pocas columnas", "A,B\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseCatalog(strings.NewReader(tt.in))
			assert.Error(t, err)
		})
	}
}

func TestWriteSeed(t *testing.T) {
	rows := []catalogRow{
		{Category: "Frutas", Name: "Maçã d'Água", Quantity: 3},
		{Category: "Frutas", Name: "Banana"},
		{Name: "Sin categoría"},
	}
	n := 0
	ids := func() string { n++; return fmt.Sprintf("00000000-0000-0000-0000-%012d", n) }

	var buf bytes.Buffer
	categories, err := writeSeed(&buf, rows, ids)
	require.NoError(t, err)
	assert.Equal(t, 1, categories)

	sql := buf.String()
	assert.Equal(t, 1, strings.Count(sql, "INSERT INTO categories"))
	assert.Equal(t, 3, strings.Count(sql, "INSERT INTO products"))
	assert.Equal(t, 3, strings.Count(sql, "INSERT INTO stock"))
	assert.Contains(t, sql, "'Maçã d''Água'")
	assert.Contains(t, sql, "0.00, 'active', '00000000-0000-0000-0000-000000000001'")
	assert.Contains(t, sql, "'active', NULL)")
}
