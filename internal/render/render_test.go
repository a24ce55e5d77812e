package render

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tilbudsavis/internal/domain/models"
)

func sampleOffers() []models.Offer {
	return []models.Offer{
		{
			ID: "a1", Name: "Kyllingebryst", Dealer: "Netto",
			Price: 45, CostPerUnit: 45, Unit: "kg", MinSize: 1, MaxSize: 1,
			MinAmount: 1, MaxAmount: 1,
			RunFrom: models.NewDate(2024, time.May, 1), RunTill: models.NewDate(2024, time.May, 7),
		},
		{
			ID: "b2", Name: "Mælk", Dealer: "Rema 1000",
			Price: 12.5, CostPerUnit: 12.5, Unit: "l", MinSize: 1, MaxSize: 1,
			MinAmount: 1, MaxAmount: 1,
			RunFrom: models.NewDate(2024, time.May, 2), RunTill: models.NewDate(2024, time.May, 8),
		},
	}
}

func TestTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Table(&buf, sampleOffers()))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "PERIOD"))
	assert.Contains(t, lines[1], "01/05 - 07/05")
	assert.Contains(t, lines[1], "45.00 kr.")
	assert.Contains(t, lines[2], "12.50 kr/l")
}

func TestLines(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Lines(&buf, sampleOffers()[1:]))
	assert.Equal(t, "02/05 - 08/05: Rema 1000 - Mælk: 12.50 kr. - 12.50 kr/l\n", buf.String())
}

func TestJSONEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, nil, "json"))
	assert.Equal(t, "[]\n", buf.String())
}

func TestJSONRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleOffers(), "JSON"))

	var got []models.Offer
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, sampleOffers(), got)
}

func TestUnknownFormat(t *testing.T) {
	assert.Error(t, Write(&bytes.Buffer{}, nil, "xml"))
}

func TestMoney(t *testing.T) {
	assert.Equal(t, "12.50", Money(12.5))
	assert.Equal(t, "0.00", Money(0))
	assert.Equal(t, "3.33", Money(10.0/3))
}
