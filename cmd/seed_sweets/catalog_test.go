package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

func TestParseCatalog_UTF8(t *testing.T) {
	csv := "name,category,price,quantity\nChocolate Bar,Chocolate,2.50,100\n\"Crème, Brûlée\",Dessert,\"4,00\",3\n"

	rows, err := parseCatalog([]byte(csv))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Chocolate Bar", rows[0].Name)
	assert.Equal(t, "2.50", rows[0].Price.StringFixed(2))
	assert.Equal(t, 100, rows[0].Quantity)
	assert.Equal(t, "Crème, Brûlée", rows[1].Name)
	assert.Equal(t, "4.00", rows[1].Price.StringFixed(2))
}

func TestParseCatalog_Windows1252(t *testing.T) {
	utf := "name,category,price,quantity\nTurrón,Dulces típicos,3.10,12\n"
	encoded, err := charmap.Windows1252.NewEncoder().String(utf)
	require.NoError(t, err)

	rows, err := parseCatalog([]byte(encoded))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Turrón", rows[0].Name)
	assert.Equal(t, "Dulces típicos", rows[0].Category)
}

func TestParseCatalog_Errores(t *testing.T) {
	_, err := parseCatalog([]byte("nombre,cat,precio,cantidad\n"))
	assert.Error(t, err)

	_, err = parseCatalog([]byte("name,category,price,quantity\nA,B,0,1\n"))
	assert.ErrorContains(t, err, "línea 2")

	_, err = parseCatalog([]byte("name,category,price,quantity\nA,B,1,-1\n"))
	assert.Error(t, err)
}

func TestWriteSQL_EscapaEIdempotente(t *testing.T) {
	rows, err := parseCatalog([]byte("name,category,price,quantity\nO'Henry,Chocolate,1.5,10\n"))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, writeSQL(&buf, "sweets.csv", rows))
	sql := buf.String()
	assert.True(t, strings.HasPrefix(sql, "-- +goose Up\n"))
	assert.Contains(t, sql, "SELECT 'O''Henry', 'Chocolate', 1.50, 10")
	assert.Contains(t, sql, "WHERE NOT EXISTS (SELECT 1 FROM sweets WHERE name = 'O''Henry' AND category = 'Chocolate');")
}
